package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/domain/scheduling"
)

type Service struct {
	repo Repository
	// now is swapped out in tests.
	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// ClinicStats computes the four counters on the clinic home screen: total
// patients, today's appointments, invoices still pending, and revenue from
// invoices settled this calendar month.
func (s *Service) ClinicStats(ctx context.Context) (*ClinicStats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats := &ClinicStats{}
	var err error

	if stats.TotalPatients, err = s.repo.CountPatients(ctx); err != nil {
		return nil, err
	}
	if stats.TodayAppointments, err = s.repo.CountAppointmentsOn(ctx, today); err != nil {
		return nil, err
	}
	if stats.PendingInvoices, err = s.repo.CountPendingInvoices(ctx); err != nil {
		return nil, err
	}
	if stats.MonthlyRevenue, err = s.repo.SumPaidInvoicesSince(ctx, monthStart); err != nil {
		return nil, err
	}
	return stats, nil
}

// DoctorStats computes one doctor's workload counters.
func (s *Service) DoctorStats(ctx context.Context, doctorID uuid.UUID) (*DoctorStats, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats := &DoctorStats{}
	var err error

	if stats.TodayAppointments, err = s.repo.CountDoctorAppointmentsOn(ctx, doctorID, today); err != nil {
		return nil, err
	}
	if stats.TotalPatients, err = s.repo.CountDoctorPatients(ctx, doctorID); err != nil {
		return nil, err
	}
	if stats.ScheduledPending, err = s.repo.CountDoctorByStatus(ctx, doctorID, scheduling.StatusScheduled); err != nil {
		return nil, err
	}
	if stats.CompletedToday, err = s.repo.CountDoctorCompletedOn(ctx, doctorID, today); err != nil {
		return nil, err
	}
	return stats, nil
}
