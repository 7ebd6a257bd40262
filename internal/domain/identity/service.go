package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinova/clinova/internal/platform/auth"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

type Service struct {
	repo        Repository
	issuer      *auth.TokenIssuer
	provisioner TenantProvisioner
	logger      zerolog.Logger
}

func NewService(repo Repository, issuer *auth.TokenIssuer, provisioner TenantProvisioner, logger zerolog.Logger) *Service {
	return &Service{repo: repo, issuer: issuer, provisioner: provisioner, logger: logger}
}

// Register creates a user account. Required fields depend on the role; the
// switch is exhaustive, so an unrecognized role is an error, not a
// fallthrough. Registering an ADMIN allocates a new clinic tenant and
// provisions its storage.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return nil, fmt.Errorf("email, password and role are required")
	}
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("first name and last name are required")
	}

	u := &User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	}

	switch req.Role {
	case auth.RoleAdmin:
		if req.ClinicName == "" {
			return nil, fmt.Errorf("clinic name is required for administrators")
		}
		tenantID := newTenantID()
		u.TenantID = &tenantID
		u.TenantName = &req.ClinicName

	case auth.RoleDoctor:
		if req.Specialization == "" || req.LicenseNumber == "" {
			return nil, fmt.Errorf("specialization and license number are required for doctors")
		}
		u.Specialization = &req.Specialization
		u.LicenseNumber = &req.LicenseNumber

	case auth.RoleReceptionist:
		// No extra profile; a receptionist joins a clinic after signup.

	case auth.RolePatient:
		if req.DateOfBirth == "" || req.Gender == "" {
			return nil, fmt.Errorf("date of birth and gender are required for patients")
		}
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date of birth: %s", req.DateOfBirth)
		}
		u.DateOfBirth = &dob
		u.Gender = &req.Gender
		u.Address = req.Address
		u.BloodType = req.BloodType

	default:
		return nil, fmt.Errorf("invalid role: %s", req.Role)
	}

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if u.TenantID != nil && s.provisioner != nil {
		if err := s.provisioner.Provision(ctx, *u.TenantID); err != nil {
			s.logger.Error().Err(err).Str("tenant_id", *u.TenantID).Msg("tenant provisioning failed")
			return nil, fmt.Errorf("provision clinic: %w", err)
		}
	}

	s.logger.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// Authenticate checks credentials and issues a session token. The error is
// identical for an unknown email and a wrong password so the endpoint cannot
// be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	sess := auth.Session{UserID: u.ID, Role: u.Role}
	if u.TenantID != nil {
		sess.TenantID = *u.TenantID
	}
	if u.TenantName != nil {
		sess.TenantName = *u.TenantName
	}

	token, err := s.issuer.Issue(sess)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// GetUser loads a user by ID.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func newTenantID() string {
	return fmt.Sprintf("clinic_%d", time.Now().UnixMilli())
}
