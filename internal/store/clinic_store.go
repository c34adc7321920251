package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"medshop/m/domain"
)

// ClinicStore manages doctors, patients and the consultations linking them.
type ClinicStore struct {
	db sqlx.ExtContext
}

func NewClinicStore(db sqlx.ExtContext) *ClinicStore {
	return &ClinicStore{db: db}
}

func (s *ClinicStore) ListDoctors(ctx context.Context) ([]domain.Doctor, error) {
	doctors := []domain.Doctor{}
	if err := sqlx.SelectContext(ctx, s.db, &doctors, `SELECT id, name, specialization, contact, email FROM doctors ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (s *ClinicStore) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	doctor := &domain.Doctor{}
	found, err := getOne(ctx, s.db, doctor, `SELECT id, name, specialization, contact, email FROM doctors WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if !found {
		return nil, nil
	}
	return doctor, nil
}

func (s *ClinicStore) CreateDoctor(ctx context.Context, d *domain.Doctor) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO doctors (name, specialization, contact, email) VALUES (?, ?, ?, ?)`,
		d.Name, d.Specialization, d.Contact, d.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to create doctor: %w", err)
	}
	return id, nil
}

func (s *ClinicStore) UpdateDoctor(ctx context.Context, d *domain.Doctor) (int64, error) {
	n, err := execAffected(ctx, s.db, `UPDATE doctors SET name = ?, specialization = ?, contact = ?, email = ? WHERE id = ?`,
		d.Name, d.Specialization, d.Contact, d.Email, d.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update doctor: %w", err)
	}
	return n, nil
}

func (s *ClinicStore) DeleteDoctor(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `DELETE FROM doctors WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete doctor: %w", err)
	}
	return n, nil
}

func (s *ClinicStore) ListPatients(ctx context.Context) ([]domain.Patient, error) {
	patients := []domain.Patient{}
	if err := sqlx.SelectContext(ctx, s.db, &patients, `SELECT id, name, age, contact, address FROM patients ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *ClinicStore) GetPatient(ctx context.Context, id int64) (*domain.Patient, error) {
	patient := &domain.Patient{}
	found, err := getOne(ctx, s.db, patient, `SELECT id, name, age, contact, address FROM patients WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	if !found {
		return nil, nil
	}
	return patient, nil
}

func (s *ClinicStore) CreatePatient(ctx context.Context, p *domain.Patient) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO patients (name, age, contact, address) VALUES (?, ?, ?, ?)`,
		p.Name, p.Age, p.Contact, p.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to create patient: %w", err)
	}
	return id, nil
}

func (s *ClinicStore) UpdatePatient(ctx context.Context, p *domain.Patient) (int64, error) {
	n, err := execAffected(ctx, s.db, `UPDATE patients SET name = ?, age = ?, contact = ?, address = ? WHERE id = ?`,
		p.Name, p.Age, p.Contact, p.Address, p.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update patient: %w", err)
	}
	return n, nil
}

func (s *ClinicStore) DeletePatient(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `DELETE FROM patients WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete patient: %w", err)
	}
	return n, nil
}

// ListConsultations returns consultations with doctor and patient names, most
// recent date first and undated ones last on every dialect.
func (s *ClinicStore) ListConsultations(ctx context.Context) ([]domain.ConsultationDetail, error) {
	consultations := []domain.ConsultationDetail{}
	err := sqlx.SelectContext(ctx, s.db, &consultations, `
		SELECT c.id AS consultation_id, c.date, c.diagnosis,
		       d.id AS doctor_id, d.name AS doctor_name,
		       p.id AS patient_id, p.name AS patient_name
		FROM consultations c
		JOIN doctors d ON d.id = c.doctor_id
		JOIN patients p ON p.id = c.patient_id
		ORDER BY CASE WHEN c.date IS NULL THEN 1 ELSE 0 END, c.date DESC, c.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}

func (s *ClinicStore) CreateConsultation(ctx context.Context, c *domain.Consultation) (int64, error) {
	id, err := insertReturningID(ctx, s.db, `INSERT INTO consultations (doctor_id, patient_id, date, diagnosis) VALUES (?, ?, ?, ?)`,
		c.DoctorID, c.PatientID, c.Date, c.Diagnosis)
	if err != nil {
		return 0, fmt.Errorf("failed to create consultation: %w", err)
	}
	return id, nil
}

func (s *ClinicStore) UpdateConsultation(ctx context.Context, c *domain.Consultation) (int64, error) {
	n, err := execAffected(ctx, s.db, `UPDATE consultations SET doctor_id = ?, patient_id = ?, date = ?, diagnosis = ? WHERE id = ?`,
		c.DoctorID, c.PatientID, c.Date, c.Diagnosis, c.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to update consultation: %w", err)
	}
	return n, nil
}

func (s *ClinicStore) DeleteConsultation(ctx context.Context, id int64) (int64, error) {
	n, err := execAffected(ctx, s.db, `DELETE FROM consultations WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete consultation: %w", err)
	}
	return n, nil
}
