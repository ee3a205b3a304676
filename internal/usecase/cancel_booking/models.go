package cancel_booking

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID string // Номер бронирования
	PatientID string // Пустой для доверенного вызова сотрудником клиники
	Reason    string // Причина отмены (опционально)
}

// Response модель ответа с отменённым бронированием
type Response struct {
	ID           string
	PatientID    string
	SlotID       int64
	ScheduledAt  time.Time
	Status       string
	CancelReason *string
	CancelledAt  time.Time
}
