package kpcs

type Stack[T any] struct {
	items []T
}

func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

func (s *Stack[T]) Push(e T) {
	s.items = append(s.items, e)
}

func (s *Stack[T]) Pop() T {
	var zero T
	if len(s.items) == 0 {
		return zero
	}
	last := len(s.items) - 1
	e := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return e
}

func (s *Stack[T]) Size() int {
	return len(s.items)
}
