package subject

// Project returns a Subject that follows key(src value) and only emits when
// that key differs from the last emitted one. The returned dispose function
// detaches the projection from src.
func Project[T any, K comparable](src *Subject[T], key func(T) K) (*Subject[K], func()) {
	dst := NewUnique(key(src.Value()))
	dispose := src.Subscribe(func(value T) {
		dst.Set(key(value))
	})

	return dst, dispose
}

// Combine keeps dst equal to fn(a, b) for the latest values of both sources.
// It returns a function detaching dst from both sources.
func Combine[A, B, R any](a *Subject[A], b *Subject[B], dst *Subject[R], fn func(A, B) R) func() {
	disposeA := a.Subscribe(func(value A) {
		dst.Set(fn(value, b.Value()))
	})
	disposeB := b.Subscribe(func(value B) {
		dst.Set(fn(a.Value(), value))
	})

	return func() {
		disposeA()
		disposeB()
	}
}

// Disposer collects dispose functions so a service can release all its
// subscriptions at once
type Disposer struct {
	fns []func()
}

// Add registers dispose functions
func (d *Disposer) Add(fns ...func()) {
	d.fns = append(d.fns, fns...)
}

// Dispose calls every registered function in reverse order
func (d *Disposer) Dispose() {
	for i := len(d.fns) - 1; i >= 0; i-- {
		d.fns[i]()
	}
	d.fns = nil
}
