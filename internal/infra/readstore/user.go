package readstore

import (
	"context"

	"shuttle-service/internal/infra"
	"shuttle-service/internal/infra/db"
	"shuttle-service/internal/pkg/pgconv"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

const findUserByIDSQL = `
SELECT id, email, role, is_active
FROM users
WHERE id = $1`

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var (
		uid      pgtype.UUID
		email    string
		role     string
		isActive bool
	)
	err := s.db.QueryRow(ctx, findUserByIDSQL, pgconv.UUIDToPgtype(id)).Scan(&uid, &email, &role, &isActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}
	return &queries.AuthorizedUserView{
		ID:       uuid.UUID(uid.Bytes),
		Email:    email,
		Role:     role,
		IsActive: isActive,
	}, nil
}

const findUserByEmailSQL = `
SELECT id, email, password_hash, role, is_active
FROM users
WHERE email = $1`

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthenticatedUser, error) {
	var (
		uid          pgtype.UUID
		foundEmail   string
		passwordHash string
		role         string
		isActive     bool
	)
	err := s.db.QueryRow(ctx, findUserByEmailSQL, email).Scan(&uid, &foundEmail, &passwordHash, &role, &isActive)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return &queries.AuthenticatedUser{
		AuthorizedUserView: queries.AuthorizedUserView{
			ID:       uuid.UUID(uid.Bytes),
			Email:    foundEmail,
			Role:     role,
			IsActive: isActive,
		},
		PasswordHash: passwordHash,
	}, nil
}
