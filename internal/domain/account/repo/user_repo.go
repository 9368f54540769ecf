package repo

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/account/model"
	"github.com/google/uuid"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u model.User) (uuid.UUID, error)

	GetUserByID(ctx context.Context, id uuid.UUID) (model.User, error)

	GetUserByUsername(ctx context.Context, username string) (model.User, error)

	CountByUsername(ctx context.Context, username string) (int64, error)

	// CountByEmail ignores the row owned by excludeID; uuid.Nil excludes nothing.
	CountByEmail(ctx context.Context, email string, excludeID uuid.UUID) (int64, error)

	CountAnswer(ctx context.Context, username, question, answer string) (int64, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error

	// UpdateSelective writes only the non-empty profile fields of u.
	UpdateSelective(ctx context.Context, u model.User) error
}
