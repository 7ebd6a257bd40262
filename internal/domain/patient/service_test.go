package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Patient, error) {
	for _, p := range m.patients {
		if p.Email != nil && *p.Email == email {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) sorted() []*Patient {
	var out []*Patient
	for _, p := range m.patients {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	all := m.sorted()
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	q := strings.ToLower(query)
	var matched []*Patient
	for _, p := range m.sorted() {
		if strings.Contains(strings.ToLower(p.FirstName), q) ||
			strings.Contains(strings.ToLower(p.LastName), q) ||
			strings.Contains(p.Phone, query) {
			matched = append(matched, p)
		}
	}
	return matched, len(matched), nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		FirstName:   "Jean",
		LastName:    "Dupont",
		Phone:       "+216 20 123 456",
		DateOfBirth: "1990-05-15",
		Gender:      "MALE",
	}
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p, err := svc.CreatePatient(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreatePatient() error = %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if p.DateOfBirth.Format("2006-01-02") != "1990-05-15" {
		t.Errorf("dateOfBirth = %v", p.DateOfBirth)
	}
}

func TestCreatePatient_MissingFields(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
		want   string
	}{
		{"first name", func(r *CreateRequest) { r.FirstName = "" }, "first name"},
		{"last name", func(r *CreateRequest) { r.LastName = "" }, "last name"},
		{"phone", func(r *CreateRequest) { r.Phone = "" }, "phone"},
		{"date of birth", func(r *CreateRequest) { r.DateOfBirth = "" }, "date of birth"},
		{"gender", func(r *CreateRequest) { r.Gender = "" }, "gender"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.CreatePatient(context.Background(), req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should name the missing field %q", err, tc.want)
			}
		})
	}
}

func TestCreatePatient_InvalidDate(t *testing.T) {
	svc := NewService(newMockRepo())

	req := validRequest()
	req.DateOfBirth = "15/05/1990"
	if _, err := svc.CreatePatient(context.Background(), req); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}

func TestUpdatePatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p, err := svc.CreatePatient(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("CreatePatient() error = %v", err)
	}

	req := validRequest()
	req.Phone = "+216 99 000 111"
	updated, err := svc.UpdatePatient(context.Background(), p.ID, req)
	if err != nil {
		t.Fatalf("UpdatePatient() error = %v", err)
	}
	if updated.Phone != "+216 99 000 111" {
		t.Errorf("phone = %q", updated.Phone)
	}
	if updated.ID != p.ID {
		t.Error("update must not change the ID")
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.UpdatePatient(context.Background(), uuid.New(), validRequest())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestListPatients_SearchRouting(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if _, err := svc.CreatePatient(context.Background(), validRequest()); err != nil {
		t.Fatal(err)
	}
	other := validRequest()
	other.FirstName = "Amira"
	other.LastName = "Ben Salah"
	if _, err := svc.CreatePatient(context.Background(), other); err != nil {
		t.Fatal(err)
	}

	all, total, err := svc.ListPatients(context.Background(), "", 50, 0)
	if err != nil {
		t.Fatalf("ListPatients() error = %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Errorf("list: got %d/%d, want 2/2", len(all), total)
	}

	matched, total, err := svc.ListPatients(context.Background(), "dupont", 50, 0)
	if err != nil {
		t.Fatalf("ListPatients(search) error = %v", err)
	}
	if total != 1 || matched[0].LastName != "Dupont" {
		t.Errorf("search: got %d results", total)
	}
}
