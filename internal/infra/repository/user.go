package repository

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const createUserSQL = `
INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, true, now(), now())`

func (r *UserRepository) Create(ctx context.Context, tx db.DBTX, id uuid.UUID, email, passwordHash, role string) error {
	_, err := tx.Exec(ctx, createUserSQL, pgconv.UUIDToPgtype(id), email, passwordHash, role)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("email already registered", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create user", err)
	}
	return nil
}

const updateLastLoginSQL = `UPDATE users SET last_login_at = now() WHERE id = $1`

func (r *UserRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error {
	if _, err := tx.Exec(ctx, updateLastLoginSQL, pgconv.UUIDToPgtype(userID)); err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}
