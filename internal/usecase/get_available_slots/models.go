package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	DoctorID string    // ID врача
	From     time.Time // Начальная дата (без времени), нулевое значение означает сегодня
	Days     int       // Количество дней, 0 означает значение по умолчанию
}

// Response модель ответа со списком доступных слотов
type Response struct {
	DoctorID string    // ID врача
	From     time.Time // Первая дата периода
	To       time.Time // Последняя дата периода включительно
	Slots    []Slot    // Слоты со свободными местами, по дате и времени начала
}

// Slot модель слота с доступностью
type Slot struct {
	ID             int64
	WorkDate       time.Time
	StartTime      types.TimeString // Время начала слота (например, "10:00")
	EndTime        types.TimeString
	AvailableSpots int // Количество свободных мест
	TotalSpots     int // Общее количество мест
}
