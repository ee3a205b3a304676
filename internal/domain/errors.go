package domain

import "errors"

// Категории ошибок ядра бронирования.
// Ошибки пакетов оборачивают одну из категорий через %w, чтобы транспорт мог
// сопоставить ответ по категории, не зная конкретного пакета.
var (
	// ErrValidation некорректные или отсутствующие входные данные
	ErrValidation = errors.New("validation error")

	// ErrNotFound слот или бронирование не найдены
	ErrNotFound = errors.New("not found")

	// ErrState операция недопустима в текущем статусе бронирования (в том числе поздняя отмена)
	ErrState = errors.New("invalid state")

	// ErrConflict конкурентная запись успела изменить версию слота
	ErrConflict = errors.New("conflict")

	// ErrCapacity в слоте не осталось мест
	ErrCapacity = errors.New("capacity exhausted")
)
