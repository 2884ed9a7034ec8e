package golang

import (
	"go/format"
	"go/parser"
	"go/scanner"
	"go/token"

	"github.com/teranos/streamgen/errors"
	"github.com/teranos/streamgen/streamgen"
)

// Validate parses src as a standalone Go file. On success it returns src in
// gofmt layout; otherwise a *streamgen.Rejection carrying the first syntax
// error.
func (g *Generator) Validate(filename string, src []byte) ([]byte, error) {
	fset := token.NewFileSet()
	if _, err := parser.ParseFile(fset, filename, src, parser.AllErrors|parser.ParseComments); err != nil {
		return nil, rejection(filename, err)
	}

	out, err := format.Source(src)
	if err != nil {
		return nil, rejection(filename, err)
	}
	return out, nil
}

func rejection(filename string, err error) *streamgen.Rejection {
	var list scanner.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		return &streamgen.Rejection{
			Filename: filename,
			Line:     first.Pos.Line,
			Column:   first.Pos.Column,
			Reason:   first.Msg,
			Count:    len(list),
		}
	}
	return &streamgen.Rejection{Filename: filename, Reason: err.Error(), Count: 1}
}
