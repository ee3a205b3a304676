package directory

// Patient модель пациента из справочника
type Patient struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

// Doctor модель врача из справочника
type Doctor struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name"`
}

// Names денормализованные имена для записи бронирования
// Пустые поля означают, что справочник не ответил
type Names struct {
	PatientName    string
	DoctorName     string
	DepartmentName string
}
