package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/domain/scheduling"
)

type mockRepo struct {
	patients        int
	pendingInvoices int
	revenue         float64

	// keyed by date (YYYY-MM-DD)
	appointmentsByDay map[string]int

	doctorAppointments map[string]int
	doctorPatients     int
	doctorByStatus     map[string]int
	doctorCompleted    map[string]int

	revenueSince time.Time
}

func (m *mockRepo) CountPatients(ctx context.Context) (int, error) { return m.patients, nil }

func (m *mockRepo) CountAppointmentsOn(ctx context.Context, day time.Time) (int, error) {
	return m.appointmentsByDay[day.Format("2006-01-02")], nil
}

func (m *mockRepo) CountPendingInvoices(ctx context.Context) (int, error) {
	return m.pendingInvoices, nil
}

func (m *mockRepo) SumPaidInvoicesSince(ctx context.Context, since time.Time) (float64, error) {
	m.revenueSince = since
	return m.revenue, nil
}

func (m *mockRepo) CountDoctorAppointmentsOn(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error) {
	return m.doctorAppointments[day.Format("2006-01-02")], nil
}

func (m *mockRepo) CountDoctorPatients(ctx context.Context, doctorID uuid.UUID) (int, error) {
	return m.doctorPatients, nil
}

func (m *mockRepo) CountDoctorByStatus(ctx context.Context, doctorID uuid.UUID, status string) (int, error) {
	return m.doctorByStatus[status], nil
}

func (m *mockRepo) CountDoctorCompletedOn(ctx context.Context, doctorID uuid.UUID, day time.Time) (int, error) {
	return m.doctorCompleted[day.Format("2006-01-02")], nil
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 18, 14, 30, 0, 0, time.UTC)
}

func TestClinicStats(t *testing.T) {
	repo := &mockRepo{
		patients:          42,
		pendingInvoices:   3,
		revenue:           1250.5,
		appointmentsByDay: map[string]int{"2025-03-18": 7},
	}
	svc := NewService(repo)
	svc.now = fixedNow

	stats, err := svc.ClinicStats(context.Background())
	if err != nil {
		t.Fatalf("ClinicStats: %v", err)
	}
	if stats.TotalPatients != 42 {
		t.Errorf("totalPatients = %d, want 42", stats.TotalPatients)
	}
	if stats.TodayAppointments != 7 {
		t.Errorf("todayAppointments = %d, want 7", stats.TodayAppointments)
	}
	if stats.PendingInvoices != 3 {
		t.Errorf("pendingInvoices = %d, want 3", stats.PendingInvoices)
	}
	if stats.MonthlyRevenue != 1250.5 {
		t.Errorf("monthlyRevenue = %v, want 1250.5", stats.MonthlyRevenue)
	}
}

func TestClinicStats_MonthWindow(t *testing.T) {
	repo := &mockRepo{appointmentsByDay: map[string]int{}}
	svc := NewService(repo)
	svc.now = fixedNow

	if _, err := svc.ClinicStats(context.Background()); err != nil {
		t.Fatalf("ClinicStats: %v", err)
	}
	want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !repo.revenueSince.Equal(want) {
		t.Errorf("revenue window starts at %v, want %v", repo.revenueSince, want)
	}
}

func TestDoctorStats(t *testing.T) {
	repo := &mockRepo{
		doctorAppointments: map[string]int{"2025-03-18": 4},
		doctorPatients:     19,
		doctorByStatus:     map[string]int{scheduling.StatusScheduled: 6},
		doctorCompleted:    map[string]int{"2025-03-18": 2},
	}
	svc := NewService(repo)
	svc.now = fixedNow

	stats, err := svc.DoctorStats(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("DoctorStats: %v", err)
	}
	if stats.TodayAppointments != 4 {
		t.Errorf("todayAppointments = %d, want 4", stats.TodayAppointments)
	}
	if stats.TotalPatients != 19 {
		t.Errorf("totalPatients = %d, want 19", stats.TotalPatients)
	}
	if stats.ScheduledPending != 6 {
		t.Errorf("scheduledPending = %d, want 6", stats.ScheduledPending)
	}
	if stats.CompletedToday != 2 {
		t.Errorf("completedToday = %d, want 2", stats.CompletedToday)
	}
}
