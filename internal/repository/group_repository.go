package repository

import (
	"context"
	"errors"

	"breeze-chat/internal/domain/user"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresGroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &PostgresGroupRepository{db: db}
}

func (r *PostgresGroupRepository) Create(ctx context.Context, g *user.Group) error {
	res := r.db.WithContext(ctx).Create(g)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return breeze_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresGroupRepository) GetDefault(ctx context.Context) (user.Group, error) {
	var g user.Group
	err := r.db.WithContext(ctx).First(&g, "is_default = ?", true).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.Group{}, breeze_errors.ErrNoDefaultGroup
		}
		return user.Group{}, err
	}
	return g, nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO group_members (group_id, user_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		groupID, userID,
	).Error
}
