package legacy

type IClock interface {
	AddTick(h func(n int))
	RemoveTick(h func(n int))
}
