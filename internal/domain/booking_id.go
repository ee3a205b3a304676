package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrInvalidBookingID возвращается, когда строка не является номером бронирования
	ErrInvalidBookingID = fmt.Errorf("invalid booking id: %w", ErrValidation)

	// ErrSequenceExhausted возвращается, когда дневная последовательность вышла за 4 разряда
	ErrSequenceExhausted = errors.New("daily booking sequence exhausted")
)

// FormatBookingID собирает номер бронирования из даты и порядкового номера за день
func FormatBookingID(day time.Time, seq int) (string, error) {
	if seq < 1 || seq > MaxDailySequence {
		return "", fmt.Errorf("%w: seq=%d", ErrSequenceExhausted, seq)
	}
	return fmt.Sprintf("%s%0*d", day.Format(BookingIDDateFormat), BookingIDSeqWidth, seq), nil
}

// ParseBookingID разбирает номер бронирования на дату (UTC) и порядковый номер
func ParseBookingID(id string) (time.Time, int, error) {
	if len(id) != BookingIDLength {
		return time.Time{}, 0, ErrInvalidBookingID
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return time.Time{}, 0, ErrInvalidBookingID
		}
	}

	day, err := time.Parse(BookingIDDateFormat, id[:len(BookingIDDateFormat)])
	if err != nil {
		return time.Time{}, 0, ErrInvalidBookingID
	}

	seq, err := strconv.Atoi(id[len(BookingIDDateFormat):])
	if err != nil || seq < 1 {
		return time.Time{}, 0, ErrInvalidBookingID
	}

	return day, seq, nil
}

// DayKey возвращает префикс номера бронирования для даты (YYYYMMDD)
func DayKey(day time.Time) string {
	return day.Format(BookingIDDateFormat)
}
