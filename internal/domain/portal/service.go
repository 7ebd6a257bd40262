package portal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/auth"
)

// ErrNoPatientRecord means the user's email matches no patient record in the
// clinic. The portal treats this as "nothing to show", not a failure.
var ErrNoPatientRecord = errors.New("no patient record for user")

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// resolvePatient maps the logged-in user to the clinic's patient record by
// email. The zero UUID with a nil error means the user has no record yet.
func (s *Service) resolvePatient(ctx context.Context) (uuid.UUID, error) {
	sess := auth.SessionFromContext(ctx)
	if sess == nil {
		return uuid.Nil, errors.New("no session in context")
	}
	if sess.TenantID == "" {
		return uuid.Nil, nil
	}
	email, err := s.repo.UserEmail(ctx, sess.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := s.repo.PatientIDByEmail(ctx, email)
	if errors.Is(err, ErrNoPatientRecord) {
		s.logger.Debug().Str("email", email).Msg("portal user has no patient record")
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *Service) MyAppointments(ctx context.Context) ([]*Appointment, error) {
	patientID, err := s.resolvePatient(ctx)
	if err != nil {
		return nil, err
	}
	if patientID == uuid.Nil {
		return []*Appointment{}, nil
	}
	appts, err := s.repo.ListAppointments(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	return appts, nil
}

func (s *Service) MyInvoices(ctx context.Context) ([]*Invoice, error) {
	patientID, err := s.resolvePatient(ctx)
	if err != nil {
		return nil, err
	}
	if patientID == uuid.Nil {
		return []*Invoice{}, nil
	}
	invoices, err := s.repo.ListInvoices(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if invoices == nil {
		invoices = []*Invoice{}
	}
	return invoices, nil
}

func (s *Service) MyStats(ctx context.Context) (*Stats, error) {
	patientID, err := s.resolvePatient(ctx)
	if err != nil {
		return nil, err
	}
	stats := &Stats{}
	if patientID == uuid.Nil {
		return stats, nil
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if stats.UpcomingAppointments, err = s.repo.CountUpcomingAppointments(ctx, patientID, today); err != nil {
		return nil, err
	}
	if stats.TotalConsultations, err = s.repo.CountConsultations(ctx, patientID); err != nil {
		return nil, err
	}
	if stats.PendingInvoices, err = s.repo.CountPendingInvoices(ctx, patientID); err != nil {
		return nil, err
	}
	return stats, nil
}
