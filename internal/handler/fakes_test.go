package handler

import (
	"context"
	"fmt"

	"breeze-chat/internal/domain/user"
	breeze_errors "breeze-chat/pkg/errors"

	"github.com/google/uuid"
)

type fakeUserRepo struct {
	users       map[uuid.UUID]user.User
	friends     map[uuid.UUID]map[uuid.UUID]bool
	expressions map[uuid.UUID][]string

	failCreate error
	failGet    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[uuid.UUID]user.User),
		friends:     make(map[uuid.UUID]map[uuid.UUID]bool),
		expressions: make(map[uuid.UUID][]string),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, u *user.User) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return breeze_errors.ErrAlreadyExists
		}
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	if r.failGet != nil {
		return user.User{}, r.failGet
	}
	u, ok := r.users[id]
	if !ok {
		return user.User{}, breeze_errors.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, breeze_errors.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u user.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return breeze_errors.ErrNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) IsFriend(_ context.Context, userID, friendID uuid.UUID) (bool, error) {
	return r.friends[userID][friendID], nil
}

func (r *fakeUserRepo) AddFriend(_ context.Context, userID, friendID uuid.UUID) error {
	if r.friends[userID] == nil {
		r.friends[userID] = make(map[uuid.UUID]bool)
	}
	if r.friends[userID][friendID] {
		return breeze_errors.ErrAlreadyExists
	}
	r.friends[userID][friendID] = true
	return nil
}

func (r *fakeUserRepo) RemoveFriend(_ context.Context, userID, friendID uuid.UUID) error {
	delete(r.friends[userID], friendID)
	return nil
}

func (r *fakeUserRepo) ListExpressions(_ context.Context, userID uuid.UUID) ([]string, error) {
	return append([]string(nil), r.expressions[userID]...), nil
}

func (r *fakeUserRepo) AddExpression(_ context.Context, userID uuid.UUID, src string) error {
	for _, existing := range r.expressions[userID] {
		if existing == src {
			return breeze_errors.ErrAlreadyExists
		}
	}
	r.expressions[userID] = append(r.expressions[userID], src)
	return nil
}

func (r *fakeUserRepo) RemoveExpression(_ context.Context, userID uuid.UUID, src string) error {
	list := r.expressions[userID]
	for i, existing := range list {
		if existing == src {
			r.expressions[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeUserRepo) friendCount(userID uuid.UUID) int {
	return len(r.friends[userID])
}

type fakeGroupRepo struct {
	defaultGroup *user.Group
	members      map[uuid.UUID][]uuid.UUID
	failAdd      error
}

func newFakeGroupRepo(withDefault bool) *fakeGroupRepo {
	r := &fakeGroupRepo{members: make(map[uuid.UUID][]uuid.UUID)}
	if withDefault {
		r.defaultGroup = &user.Group{ID: uuid.New(), Name: "breeze", IsDefault: true}
	}
	return r
}

func (r *fakeGroupRepo) Create(_ context.Context, g *user.Group) error {
	if g.IsDefault {
		r.defaultGroup = g
	}
	return nil
}

func (r *fakeGroupRepo) GetDefault(_ context.Context) (user.Group, error) {
	if r.defaultGroup == nil {
		return user.Group{}, breeze_errors.ErrNoDefaultGroup
	}
	return *r.defaultGroup, nil
}

func (r *fakeGroupRepo) AddMember(_ context.Context, groupID, userID uuid.UUID) error {
	if r.failAdd != nil {
		return r.failAdd
	}
	r.members[groupID] = append(r.members[groupID], userID)
	return nil
}

type fakeHasher struct{}

func (fakeHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

type fakeAvatar struct {
	savedNames []string
}

func (a *fakeAvatar) CreateDefault(_ context.Context, username, gender string) (string, error) {
	return fmt.Sprintf("https://cdn.test/default_%s_%s.png", username, gender), nil
}

func (a *fakeAvatar) SaveImage(_ context.Context, name string, _ []byte, _ string) (string, error) {
	a.savedNames = append(a.savedNames, name)
	return "https://cdn.test/" + name, nil
}
