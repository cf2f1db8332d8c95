package user_models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexkart/marketplace/utils"
)

// User roles
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// User is the minimal account record this service reads. Account lifecycle
// (registration, login, sessions) lives in the identity service.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// GetUserByID fetches a user record.
func GetUserByID(ctx context.Context, db *pgxpool.Pool, userID uuid.UUID) (*User, error) {
	u := &User{}
	err := db.QueryRow(ctx,
		`SELECT id, email, name, role, created_at FROM users WHERE id = $1`,
		userID).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, utils.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return u, nil
}
