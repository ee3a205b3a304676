package domain

import "time"

// Default configuration values
const (
	DefaultMaxCapacity        = 20
	DefaultCancellationWindow = 2 * time.Hour
	DefaultAvailableSlotsDays = 7
)

// Business validation constants
const (
	MinCapacity           = 1
	MaxCapacity           = 500
	MaxAvailableSlotsDays = 30
	MaxCancelReasonLength = 500
	MaxIDLength           = 64
)

// Booking identifier layout: YYYYMMDD + NNNN
const (
	BookingIDDateFormat = "20060102"
	BookingIDSeqWidth   = 4
	BookingIDLength     = len(BookingIDDateFormat) + BookingIDSeqWidth
	MaxDailySequence    = 9999
)

// Time format constants
const (
	TimeFormat     = "15:04"            // HH:MM
	DateFormat     = "2006-01-02"       // YYYY-MM-DD
	DateTimeFormat = "2006-01-02 15:04" // YYYY-MM-DD HH:MM
)
