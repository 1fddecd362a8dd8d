package repository

import (
	"context"

	"breeze-chat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Update(ctx context.Context, u user.User) error

	IsFriend(ctx context.Context, userID, friendID uuid.UUID) (bool, error)
	AddFriend(ctx context.Context, userID, friendID uuid.UUID) error
	RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error

	ListExpressions(ctx context.Context, userID uuid.UUID) ([]string, error)
	AddExpression(ctx context.Context, userID uuid.UUID, src string) error
	RemoveExpression(ctx context.Context, userID uuid.UUID, src string) error
}

type GroupRepository interface {
	Create(ctx context.Context, g *user.Group) error
	GetDefault(ctx context.Context) (user.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
}
