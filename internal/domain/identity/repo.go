package identity

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// TenantProvisioner creates the storage for a newly registered clinic.
type TenantProvisioner interface {
	Provision(ctx context.Context, tenantID string) error
}
