package idallocator

import "errors"

var (
	// ErrAllocate возвращается, когда счётчик не смог выдать номер
	ErrAllocate = errors.New("idallocator: failed to allocate booking id")
)
