package cache

type Nop[T any] struct{}

func NewNop[T any]() Nop[T] { return Nop[T]{} }

func (Nop[T]) Get(string) (out T, ok bool) { return out, false }
func (Nop[T]) Put(string, T)               {}
func (Nop[T]) Delete(string)               {}
func (Nop[T]) Len() int                    { return 0 }

var _ Cache[any] = Nop[any]{}
