package streamgen

// Target renders adapters for one output language.
// The Go target lives in streamgen/golang.
type Target interface {
	// Language returns the target name, e.g. "go"
	Language() string

	// FileExtension returns the extension of generated units, e.g. "go"
	FileExtension() string

	// Baseline returns the packages every unit imports
	Baseline() []Package

	// Locals returns the identifiers generated adapters declare themselves.
	// They are never used as import names.
	Locals() []string

	// Escape rewrites name so it is a usable identifier that does not collide
	// with a reserved word, a generator local or a name in taken. Escape is
	// idempotent.
	Escape(name string, taken map[string]bool) string

	// Wrapper synthesizes the adapter of one event
	Wrapper(req WrapperRequest) (WrapperSpec, error)

	// RenderUnit renders a whole unit
	RenderUnit(src UnitSource) ([]byte, error)

	// Validate parses a rendered unit standalone. It returns the unit in
	// canonical formatting, or a *Rejection for the first syntax error.
	Validate(filename string, src []byte) ([]byte, error)
}

// WrapperRequest carries everything a Target needs to synthesize an adapter.
type WrapperRequest struct {
	// Container is the type name of the unit the adapter is declared on
	Container string

	// ShortName is the owner's name without the interface marker
	ShortName string

	Owner     Interface
	Event     Event
	Shape     Shape
	Qualifier Qualifier
}
