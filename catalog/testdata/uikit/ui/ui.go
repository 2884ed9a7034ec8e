package ui

type Point struct {
	X, Y int
}

type PressedHandler func(code int)

func NewPressedHandler(f func(code int)) PressedHandler {
	return PressedHandler(f)
}

type MovedHandler func(from, to Point)

type Action func()

type Validator func(s string) error

type IButton interface {
	AddPressed(h PressedHandler)
	RemovePressed(h PressedHandler)

	AddMoved(h MovedHandler)
	RemoveMoved(h MovedHandler)

	AddClicked(h Action)

	AddItem(p Point)
	RemoveItem(p Point)

	AddValidate(v Validator)
	RemoveValidate(v Validator)

	Label() string
}

type ITimer interface {
	AddTimeout(h func())
	RemoveTimeout(h func())
}

type IToggle interface {
	IButton
	AddToggled(h func(on bool))
	RemoveToggled(h func(on bool))
}

type List[T any] interface {
	AddChanged(h func(item T))
	RemoveChanged(h func(item T))
}

type button struct{}

func (button) Label() string { return "" }
