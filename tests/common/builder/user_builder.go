//go:build unit || e2e

package builder

import (
	"shuttle-service/internal/domain/user"
	"shuttle-service/internal/usecase/queries"

	"github.com/google/uuid"
)

type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	Password     string
	PasswordHash string
	Role         string
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:       uuid.New(),
		Email:    "rider@example.com",
		Password: "password123",
		// bcrypt hash of "password123"
		PasswordHash: "$2a$12$uhAjVE9f92IGYv3E25pJNetg.27lVt0p7jmLWjqjmhOg92ldPS0A.",
		Role:         "user",
		IsActive:     true,
	}
}

func (u *UserBuilder) BuildCredentials() (user.Credentials, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return user.Credentials{}, err
	}
	password, err := user.NewPassword(u.Password)
	if err != nil {
		return user.Credentials{}, err
	}
	return user.NewCredentials(email, password), nil
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     u.Role,
		IsActive: u.IsActive,
	}
}

func (u *UserBuilder) BuildAuthenticated() *queries.AuthenticatedUser {
	return &queries.AuthenticatedUser{
		AuthorizedUserView: *u.BuildReadModel(),
		PasswordHash:       u.PasswordHash,
	}
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role string) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) WithPassword(password string) *UserBuilder {
	u.Password = password
	return u
}

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}
