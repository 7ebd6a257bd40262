package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/platform/auth"
)

var (
	ErrNotFound       = errors.New("appointment not found")
	ErrUnknownPatient = errors.New("patient not found")
	ErrSlotTaken      = errors.New("an appointment already exists for this date and time")
	ErrFinalized      = errors.New("appointment is already in a final state")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

const dateLayout = "2006-01-02"

// CreateAppointment books a slot. Required fields are checked in a fixed
// order so the caller always sees the first missing one: patient, date,
// time, then date parseability. When the actor is a doctor the appointment
// is booked under their own identity regardless of the payload.
func (s *Service) CreateAppointment(ctx context.Context, sess auth.Session, req CreateRequest) (*Appointment, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("patient is required")
	}
	if req.Date == "" {
		return nil, fmt.Errorf("date is required")
	}
	if req.Time == "" {
		return nil, fmt.Errorf("time is required")
	}
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %s", req.Date)
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("invalid patient id")
	}

	var doctorID uuid.UUID
	if sess.Role == auth.RoleDoctor {
		doctorID = sess.UserID
	} else {
		if req.DoctorID == "" {
			return nil, fmt.Errorf("doctor is required")
		}
		doctorID, err = uuid.Parse(req.DoctorID)
		if err != nil {
			return nil, fmt.Errorf("invalid doctor id")
		}
	}

	apptType := req.Type
	if apptType == "" {
		apptType = DefaultType
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      date,
		Time:      req.Time,
		Type:      apptType,
		Reason:    req.Reason,
		Status:    StatusScheduled,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves an appointment out of SCHEDULED. Terminal states are
// frozen; re-finalizing fails with ErrFinalized.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	if !terminalStatuses[status] {
		return fmt.Errorf("appointments can only transition to a final state, got: %s", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// ListAppointments returns the clinic's appointments, newest date first.
// Doctors see only their own.
func (s *Service) ListAppointments(ctx context.Context, sess auth.Session, limit, offset int) ([]*Appointment, int, error) {
	if sess.Role == auth.RoleDoctor {
		return s.repo.ListByDoctor(ctx, sess.UserID, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
