package domain

type Doctor struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	Specialization *string `db:"specialization" json:"specialization"`
	Contact        *string `db:"contact" json:"contact"`
	Email          *string `db:"email" json:"email"`
}

type Patient struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Age     *int64  `db:"age" json:"age"`
	Contact *string `db:"contact" json:"contact"`
	Address *string `db:"address" json:"address"`
}

type Consultation struct {
	ID        int64   `db:"id" json:"id"`
	DoctorID  int64   `db:"doctor_id" json:"doctorId"`
	PatientID int64   `db:"patient_id" json:"patientId"`
	Date      *string `db:"date" json:"date"`
	Diagnosis *string `db:"diagnosis" json:"diagnosis"`
}

type ConsultationDetail struct {
	ConsultationID int64   `db:"consultation_id" json:"consultationId"`
	Date           *string `db:"date" json:"date"`
	Diagnosis      *string `db:"diagnosis" json:"diagnosis"`
	DoctorID       int64   `db:"doctor_id" json:"doctorId"`
	DoctorName     string  `db:"doctor_name" json:"doctorName"`
	PatientID      int64   `db:"patient_id" json:"patientId"`
	PatientName    string  `db:"patient_name" json:"patientName"`
}
