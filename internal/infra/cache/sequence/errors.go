package sequence

import "errors"

var (
	// ErrSeed возвращается, когда не удалось получить стартовое значение счётчика
	ErrSeed = errors.New("sequence.cache: failed to seed counter")

	// ErrRedis возвращается при ошибке команды Redis
	ErrRedis = errors.New("sequence.cache: redis command failed")
)
