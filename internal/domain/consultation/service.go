package consultation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/platform/auth"
)

var (
	ErrNotFound       = errors.New("consultation not found")
	ErrUnknownPatient = errors.New("patient not found")
	ErrNoPrescription = errors.New("consultation has no prescription")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateConsultation records a visit outcome. The doctor is always the
// acting session's user; only doctors write consultations.
func (s *Service) CreateConsultation(ctx context.Context, sess auth.Session, req CreateRequest) (*Consultation, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient is required")
	}
	if req.Diagnosis == "" {
		return nil, fmt.Errorf("diagnosis is required")
	}
	if req.Symptoms == "" {
		return nil, fmt.Errorf("symptoms are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id")
	}

	cons := &Consultation{
		PatientID:    patientID,
		DoctorID:     sess.UserID,
		Diagnosis:    req.Diagnosis,
		Symptoms:     req.Symptoms,
		Prescription: req.Prescription,
		Notes:        req.Notes,
	}
	if err := s.repo.Create(ctx, cons); err != nil {
		return nil, err
	}
	return cons, nil
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPrescription builds the printable prescription view for a consultation.
func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	cons, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ref, err := s.repo.GetPatientRef(ctx, cons.PatientID)
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		ID:           cons.ID,
		Diagnosis:    cons.Diagnosis,
		Symptoms:     cons.Symptoms,
		Prescription: cons.Prescription,
		Notes:        cons.Notes,
		CreatedAt:    cons.CreatedAt,
	}
	p.Patient.FirstName = ref.FirstName
	p.Patient.LastName = ref.LastName
	p.Patient.DateOfBirth = ref.DateOfBirth
	return p, nil
}

// ListConsultations returns the clinic's consultations, newest first.
// Doctors see only their own.
func (s *Service) ListConsultations(ctx context.Context, sess auth.Session, limit, offset int) ([]*Consultation, int, error) {
	if sess.Role == auth.RoleDoctor {
		return s.repo.ListByDoctor(ctx, sess.UserID, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
