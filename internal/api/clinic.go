package api

import (
	"net/http"
	"strings"

	"medshop/m/domain"
	"medshop/m/internal/service"
)

type doctorRequest struct {
	Name           string  `json:"name"`
	Specialization *string `json:"specialization"`
	Contact        *string `json:"contact"`
	Email          *string `json:"email"`
}

func (req doctorRequest) toDoctor(id int64) (*domain.Doctor, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, service.Invalid("name required")
	}
	return &domain.Doctor{
		ID:             id,
		Name:           name,
		Specialization: nullIfEmpty(req.Specialization),
		Contact:        nullIfEmpty(req.Contact),
		Email:          nullIfEmpty(req.Email),
	}, nil
}

type patientRequest struct {
	Name    string  `json:"name"`
	Age     *int64  `json:"age"`
	Contact *string `json:"contact"`
	Address *string `json:"address"`
}

func (req patientRequest) toPatient(id int64) (*domain.Patient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, service.Invalid("name required")
	}
	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		return nil, service.Invalid("age must be between 0 and 150")
	}
	return &domain.Patient{
		ID:      id,
		Name:    name,
		Age:     req.Age,
		Contact: nullIfEmpty(req.Contact),
		Address: nullIfEmpty(req.Address),
	}, nil
}

type consultationRequest struct {
	DoctorID  int64   `json:"doctorId"`
	PatientID int64   `json:"patientId"`
	Date      *string `json:"date"`
	Diagnosis *string `json:"diagnosis"`
}

func (req consultationRequest) toConsultation(id int64) (*domain.Consultation, error) {
	if req.DoctorID <= 0 || req.PatientID <= 0 {
		return nil, service.Invalid("doctorId and patientId required")
	}
	c := &domain.Consultation{
		ID:        id,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      nullIfEmpty(req.Date),
		Diagnosis: nullIfEmpty(req.Diagnosis),
	}
	if c.Date != nil && !validDate(*c.Date) {
		return nil, service.Invalid("date must be YYYY-MM-DD")
	}
	return c, nil
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.clinic.ListDoctors(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, doctors)
}

func (h *Handler) createDoctor(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	doctor, err := req.toDoctor(0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.clinic.CreateDoctor(r.Context(), doctor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Doctor added", ID: id})
}

func (h *Handler) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req doctorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	doctor, err := req.toDoctor(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.UpdateDoctor(r.Context(), doctor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Doctor updated", "Doctor")
}

func (h *Handler) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.DeleteDoctor(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Doctor deleted", "Doctor")
}

func (h *Handler) listPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.clinic.ListPatients(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, patients)
}

func (h *Handler) createPatient(w http.ResponseWriter, r *http.Request) {
	var req patientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patient, err := req.toPatient(0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.clinic.CreatePatient(r.Context(), patient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Patient added", ID: id})
}

func (h *Handler) updatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req patientRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	patient, err := req.toPatient(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.UpdatePatient(r.Context(), patient)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Patient updated", "Patient")
}

func (h *Handler) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.DeletePatient(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Patient deleted", "Patient")
}

func (h *Handler) listConsultations(w http.ResponseWriter, r *http.Request) {
	consultations, err := h.clinic.ListConsultations(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, consultations)
}

// checkConsultationRefs answers 404 when the doctor or patient is unknown.
func (h *Handler) checkConsultationRefs(r *http.Request, c *domain.Consultation) error {
	doctor, err := h.clinic.GetDoctor(r.Context(), c.DoctorID)
	if err != nil {
		return err
	}
	if doctor == nil {
		return service.NotFound("Doctor")
	}
	patient, err := h.clinic.GetPatient(r.Context(), c.PatientID)
	if err != nil {
		return err
	}
	if patient == nil {
		return service.NotFound("Patient")
	}
	return nil
}

func (h *Handler) createConsultation(w http.ResponseWriter, r *http.Request) {
	var req consultationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := req.toConsultation(0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.checkConsultationRefs(r, c); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.clinic.CreateConsultation(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createdResponse{Message: "Consultation added", ID: id})
}

func (h *Handler) updateConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req consultationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := req.toConsultation(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.checkConsultationRefs(r, c); err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.UpdateConsultation(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Consultation updated", "Consultation")
}

func (h *Handler) deleteConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	n, err := h.clinic.DeleteConsultation(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondAffected(w, r, n, "Consultation deleted", "Consultation")
}
