package scheduling

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinova/clinova/internal/platform/auth"
)

// -- Mock Repository --

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
	knownPatient map[uuid.UUID]bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		appointments: make(map[uuid.UUID]*Appointment),
		knownPatient: make(map[uuid.UUID]bool),
	}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	if len(m.knownPatient) > 0 && !m.knownPatient[a.PatientID] {
		return ErrUnknownPatient
	}
	for _, existing := range m.appointments {
		if existing.DoctorID == a.DoctorID && existing.Date.Equal(a.Date) && existing.Time == a.Time {
			return ErrSlotTaken
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = time.Now()
	m.appointments[a.ID] = a
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	a, ok := m.appointments[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusScheduled {
		return ErrFinalized
	}
	a.Status = status
	return nil
}

func (m *mockRepo) sorted() []*Appointment {
	var out []*Appointment
	for _, a := range m.appointments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Appointment, int, error) {
	all := m.sorted()
	return all, len(all), nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.sorted() {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.sorted() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func doctorSession() auth.Session {
	return auth.Session{UserID: uuid.New(), Role: auth.RoleDoctor, TenantID: "clinic_1"}
}

func validBooking() CreateRequest {
	return CreateRequest{
		PatientID: uuid.New().String(),
		Date:      "2025-03-10",
		Time:      "09:00",
		Type:      "CHECKUP",
	}
}

func TestCreateAppointment_DoctorBoundToSession(t *testing.T) {
	svc := NewService(newMockRepo())
	sess := doctorSession()

	req := validBooking()
	req.DoctorID = uuid.New().String() // must be ignored for doctor actors
	a, err := svc.CreateAppointment(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if a.DoctorID != sess.UserID {
		t.Errorf("doctorId = %s, want session user %s", a.DoctorID, sess.UserID)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want SCHEDULED", a.Status)
	}
	if a.Type != "CHECKUP" {
		t.Errorf("type = %q", a.Type)
	}
}

func TestCreateAppointment_TypeDefaults(t *testing.T) {
	svc := NewService(newMockRepo())

	req := validBooking()
	req.Type = ""
	a, err := svc.CreateAppointment(context.Background(), doctorSession(), req)
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if a.Type != DefaultType {
		t.Errorf("type = %q, want %q", a.Type, DefaultType)
	}
}

func TestCreateAppointment_ValidationOrder(t *testing.T) {
	svc := NewService(newMockRepo())
	sess := doctorSession()

	// Everything missing: the patient check comes first.
	_, err := svc.CreateAppointment(context.Background(), sess, CreateRequest{})
	if err == nil || !strings.Contains(err.Error(), "patient") {
		t.Errorf("empty request error = %v, want patient message", err)
	}

	// Patient present, date and time missing: date next.
	_, err = svc.CreateAppointment(context.Background(), sess, CreateRequest{PatientID: uuid.New().String()})
	if err == nil || !strings.Contains(err.Error(), "date") {
		t.Errorf("missing date error = %v, want date message", err)
	}

	// Time missing.
	_, err = svc.CreateAppointment(context.Background(), sess, CreateRequest{
		PatientID: uuid.New().String(), Date: "2025-03-10",
	})
	if err == nil || !strings.Contains(err.Error(), "time") {
		t.Errorf("missing time error = %v, want time message", err)
	}

	// All present but date unparseable.
	_, err = svc.CreateAppointment(context.Background(), sess, CreateRequest{
		PatientID: uuid.New().String(), Date: "10/03/2025", Time: "09:00",
	})
	if err == nil || !strings.Contains(err.Error(), "date format") {
		t.Errorf("bad date error = %v, want format message", err)
	}
}

func TestCreateAppointment_NonDoctorNeedsDoctorID(t *testing.T) {
	svc := NewService(newMockRepo())
	sess := auth.Session{UserID: uuid.New(), Role: auth.RoleReceptionist, TenantID: "clinic_1"}

	req := validBooking()
	if _, err := svc.CreateAppointment(context.Background(), sess, req); err == nil {
		t.Fatal("expected error when receptionist books without a doctor")
	}

	docID := uuid.New()
	req.DoctorID = docID.String()
	a, err := svc.CreateAppointment(context.Background(), sess, req)
	if err != nil {
		t.Fatalf("CreateAppointment() error = %v", err)
	}
	if a.DoctorID != docID {
		t.Errorf("doctorId = %s, want %s", a.DoctorID, docID)
	}
}

func TestCreateAppointment_UnknownPatient(t *testing.T) {
	repo := newMockRepo()
	repo.knownPatient[uuid.New()] = true // arm the FK check
	svc := NewService(repo)

	_, err := svc.CreateAppointment(context.Background(), doctorSession(), validBooking())
	if !errors.Is(err, ErrUnknownPatient) {
		t.Fatalf("error = %v, want ErrUnknownPatient", err)
	}
}

func TestCreateAppointment_SlotTaken(t *testing.T) {
	svc := NewService(newMockRepo())
	sess := doctorSession()

	req := validBooking()
	if _, err := svc.CreateAppointment(context.Background(), sess, req); err != nil {
		t.Fatalf("first booking error = %v", err)
	}

	req.PatientID = uuid.New().String()
	_, err := svc.CreateAppointment(context.Background(), sess, req)
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("error = %v, want ErrSlotTaken", err)
	}
}

func TestUpdateStatus_TerminalOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	a, err := svc.CreateAppointment(context.Background(), doctorSession(), validBooking())
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.UpdateStatus(context.Background(), a.ID, StatusScheduled); err == nil {
		t.Error("transitioning back to SCHEDULED must be rejected")
	}
	if err := svc.UpdateStatus(context.Background(), a.ID, "POSTPONED"); err == nil {
		t.Error("unknown status must be rejected")
	}

	if err := svc.UpdateStatus(context.Background(), a.ID, StatusCompleted); err != nil {
		t.Fatalf("UpdateStatus(COMPLETED) error = %v", err)
	}

	// Terminal states are frozen.
	err = svc.UpdateStatus(context.Background(), a.ID, StatusCancelled)
	if !errors.Is(err, ErrFinalized) {
		t.Fatalf("error = %v, want ErrFinalized", err)
	}
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	err := svc.UpdateStatus(context.Background(), uuid.New(), StatusCancelled)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListAppointments_DoctorScoped(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	docA := doctorSession()
	docB := doctorSession()
	if _, err := svc.CreateAppointment(context.Background(), docA, validBooking()); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateAppointment(context.Background(), docB, validBooking()); err != nil {
		t.Fatal(err)
	}

	own, total, err := svc.ListAppointments(context.Background(), docA, 50, 0)
	if err != nil {
		t.Fatalf("ListAppointments() error = %v", err)
	}
	if total != 1 || own[0].DoctorID != docA.UserID {
		t.Errorf("doctor list: got %d rows", total)
	}

	admin := auth.Session{UserID: uuid.New(), Role: auth.RoleAdmin, TenantID: "clinic_1"}
	_, total, err = svc.ListAppointments(context.Background(), admin, 50, 0)
	if err != nil {
		t.Fatalf("ListAppointments(admin) error = %v", err)
	}
	if total != 2 {
		t.Errorf("admin list: got %d rows, want 2", total)
	}
}
