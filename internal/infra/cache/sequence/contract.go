package sequence

import "context"

// Seeder источник уже выданного максимума за день (обычно таблица bookings)
type Seeder interface {
	MaxSequence(ctx context.Context, day string) (int, error)
}
