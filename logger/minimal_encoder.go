package logger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

type palette struct {
	time      string
	component string
	key       string
	value     string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Everforest Dark: natural forest greens
var everforest = palette{
	time:      "\x1b[38;5;107m",
	component: "\x1b[38;5;208m",
	key:       "\x1b[38;5;65m",
	value:     "\x1b[38;5;223m",
	number:    "\x1b[38;5;108m",
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

// Gruvbox Dark: warm, muted
var gruvbox = palette{
	time:      "\x1b[38;5;108m",
	component: "\x1b[38;5;214m",
	key:       "\x1b[38;5;109m",
	value:     "\x1b[38;5;223m",
	number:    "\x1b[38;5;175m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for log output
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

// leadingFields are rendered first, in this order; remaining fields follow
// in the order they were logged. No field is ever dropped.
var leadingFields = []string{
	FieldCode,
	FieldInterface,
	FieldEvent,
	FieldUnit,
	FieldFile,
	FieldCount,
	FieldEmitted,
	FieldRejected,
	FieldFailed,
	FieldDurationMS,
	FieldReason,
	FieldError,
}

// minimalEncoder implements a calm, compact console encoder with theme support
// Format: "13:04:35  s.driver  Unit emitted  interface=ui.Button file=ButtonExtensions.g.go"
type minimalEncoder struct {
	zapcore.Encoder // Embed a base encoder for field serialization
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{
		Encoder: zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
	}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	return &minimalEncoder{Encoder: enc.Encoder.Clone()}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level: only show for WARN/ERROR with bold + background
	if ent.Level >= zapcore.WarnLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level, c))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(c.component)
		final.AppendString(abbreviateName(ent.LoggerName))
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(ent.Message)

	if rendered := renderFields(fields, c); rendered != "" {
		final.AppendString("  ")
		final.AppendString(rendered)
	}

	final.AppendString("\n")
	return final, nil
}

func levelColorString(level zapcore.Level, c palette) string {
	switch level {
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// abbreviateName shortens component names: streamgen.driver -> s.driver
func abbreviateName(name string) string {
	parts := strings.Split(name, ".")
	if len(parts) > 1 && parts[0] != "" {
		return string(parts[0][0]) + "." + strings.Join(parts[1:], ".")
	}
	return name
}

// getFieldValue extracts the value from a zap field, handling different field types
func getFieldValue(field zapcore.Field) (string, bool) {
	switch field.Type {
	case zapcore.StringType:
		return field.String, false
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
		zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
		return fmt.Sprintf("%d", field.Integer), true
	case zapcore.BoolType:
		return fmt.Sprintf("%t", field.Integer == 1), false
	case zapcore.Float64Type:
		return fmt.Sprintf("%g", math.Float64frombits(uint64(field.Integer))), true
	case zapcore.Float32Type:
		return fmt.Sprintf("%g", math.Float32frombits(uint32(field.Integer))), true
	case zapcore.DurationType:
		return time.Duration(field.Integer).String(), true
	case zapcore.ErrorType:
		if err, ok := field.Interface.(error); ok {
			return err.Error(), false
		}
	}
	if field.Interface != nil {
		return fmt.Sprintf("%v", field.Interface), false
	}
	return "", false
}

// renderFields renders every field as key=value, leading fields first
func renderFields(fields []zapcore.Field, c palette) string {
	rank := make(map[string]int, len(leadingFields))
	for i, key := range leadingFields {
		rank[key] = i
	}

	ordered := make([]zapcore.Field, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		ri, iLead := rank[ordered[i].Key]
		rj, jLead := rank[ordered[j].Key]
		switch {
		case iLead && jLead:
			return ri < rj
		default:
			return iLead && !jLead
		}
	})

	var parts []string
	for _, f := range ordered {
		val, numeric := getFieldValue(f)
		if val == "" {
			continue
		}
		color := c.value
		if numeric {
			color = c.number
		}
		parts = append(parts, c.key+f.Key+"="+colorReset+color+val+colorReset)
	}
	return strings.Join(parts, " ")
}
