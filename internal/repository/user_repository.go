package repository

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"breeze-chat/internal/domain/user"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUsernameLength = 32

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	if err := validateUsername(u.Username); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return breeze_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, breeze_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).First(&u, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, breeze_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u user.User) error {
	res := r.db.WithContext(ctx).Save(&u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return breeze_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) IsFriend(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.Friendship{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresUserRepository) AddFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	res := r.db.WithContext(ctx).Create(&user.Friendship{UserID: userID, FriendID: friendID})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return breeze_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) RemoveFriend(ctx context.Context, userID, friendID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&user.Friendship{}, "user_id = ? AND friend_id = ?", userID, friendID).Error
}

func (r *PostgresUserRepository) ListExpressions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var srcs []string
	err := r.db.WithContext(ctx).
		Model(&user.Expression{}).
		Where("user_id = ?", userID).
		Order("created_at").
		Pluck("src", &srcs).Error
	if err != nil {
		return nil, err
	}
	return srcs, nil
}

func (r *PostgresUserRepository) AddExpression(ctx context.Context, userID uuid.UUID, src string) error {
	e := user.Expression{ID: uuid.New(), UserID: userID, Src: src}
	res := r.db.WithContext(ctx).Create(&e)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return breeze_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) RemoveExpression(ctx context.Context, userID uuid.UUID, src string) error {
	return r.db.WithContext(ctx).
		Delete(&user.Expression{}, "user_id = ? AND src = ?", userID, src).Error
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return breeze_errors.ErrValidation
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return breeze_errors.ErrValidation
	}
	if strings.ContainsAny(username, "\r\n\t") {
		return breeze_errors.ErrValidation
	}
	return nil
}
