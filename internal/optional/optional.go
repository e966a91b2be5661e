package optional

type Value[T any] struct {
	v  T
	ok bool
}

func Some[T any](v T) Value[T] {
	return Value[T]{v: v, ok: true}
}

func None[T any]() Value[T] {
	return Value[T]{}
}

func (o Value[T]) Get() (T, bool) {
	return o.v, o.ok
}

func (o Value[T]) IsSome() bool {
	return o.ok
}

// Ptr returns nil for None, which lets encoding/json render absence as null.
func (o Value[T]) Ptr() *T {
	if !o.ok {
		return nil
	}

	v := o.v

	return &v
}
