package database

import (
	"context"
	"errors"
	"fmt"

	"breeze-chat/internal/domain/user"
	"breeze-chat/internal/repository"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/google/uuid"
)

const defaultGroupName = "breeze"

// EnsureDefaultGroup creates the group every new account is enrolled into,
// if it does not exist yet. Account registration hard-fails without it.
func EnsureDefaultGroup(ctx context.Context, groups repository.GroupRepository) error {
	_, err := groups.GetDefault(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, breeze_errors.ErrNoDefaultGroup) {
		return fmt.Errorf("look up default group: %w", err)
	}

	g := &user.Group{
		ID:        uuid.New(),
		Name:      defaultGroupName,
		IsDefault: true,
	}
	if err := groups.Create(ctx, g); err != nil && !errors.Is(err, breeze_errors.ErrAlreadyExists) {
		return fmt.Errorf("create default group: %w", err)
	}
	return nil
}
