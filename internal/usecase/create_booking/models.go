package create_booking

import (
	"time"
)

// Request модель запроса на создание бронирования
type Request struct {
	PatientID   string    // ID пациента (из заголовка шлюза)
	DoctorID    string    // ID врача
	SlotID      int64     // ID слота
	ScheduledAt time.Time // Время приёма внутри слота
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID          string
	PatientID   string
	DoctorID    string
	SlotID      int64
	ScheduledAt time.Time
	Status      string

	// Денормализованные данные
	PatientName    string
	DoctorName     string
	DepartmentName string

	CreatedAt time.Time
}
