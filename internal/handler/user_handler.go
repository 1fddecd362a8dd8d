package handler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"breeze-chat/internal/domain/user"
	"breeze-chat/internal/repository"
	"breeze-chat/internal/router"
	"breeze-chat/internal/services"
	breeze_errors "breeze-chat/pkg/errors"
	"breeze-chat/pkg/logger"

	"github.com/google/uuid"
)

// PasswordHasher derives the stored credential for a new account.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// AvatarMaker renders and stores avatar images, returning public URLs.
type AvatarMaker interface {
	CreateDefault(ctx context.Context, username, gender string) (string, error)
	SaveImage(ctx context.Context, name string, data []byte, subtype string) (string, error)
}

// UserHandler implements the /user routes.
type UserHandler struct {
	users  repository.UserRepository
	groups repository.GroupRepository
	hasher PasswordHasher
	avatar AvatarMaker
	log    *logger.Logger

	// overridable in tests
	now        func() time.Time
	pickGender func() string
}

func NewUserHandler(users repository.UserRepository, groups repository.GroupRepository, hasher PasswordHasher, avatar AvatarMaker, log *logger.Logger) *UserHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &UserHandler{
		users:      users,
		groups:     groups,
		hasher:     hasher,
		avatar:     avatar,
		log:        log,
		now:        time.Now,
		pickGender: func() string { return user.Genders[rand.Intn(len(user.Genders))] },
	}
}

// RegisterRoutes wires every /user binding. Literal segments win over
// parameter segments, so /user/me and /user/avatar coexist with /user/:id.
func (h *UserHandler) RegisterRoutes(r *router.Router) {
	r.Group("/user").
		GET("/:id", h.Fetch).
		GET("/me", h.Me).
		GET("/avatar", h.AvatarByUsername).
		POST("", h.Create).
		PUT("", h.UpdateProfile).
		PUT("/pluginData", h.UpdatePluginData).
		PUT("/avatar", h.UpdateAvatar).
		POST("/friend", h.AddFriend).
		DELETE("/friend", h.RemoveFriend).
		POST("/expression", h.AddExpression).
		DELETE("/expression", h.RemoveExpression)
}

// Fetch handles GET /user/:id.
func (h *UserHandler) Fetch(c *router.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Res(400, "userId is invalid")
	}

	u, err := h.users.GetByID(c.Context(), id)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(404, "user not exists")
		}
		return err
	}
	return c.Res(200, user.ToProfile(u))
}

type meResponse struct {
	user.Profile
	PluginData  string   `json:"pluginData"`
	Expressions []string `json:"expressions"`
}

// Me handles GET /user/me.
func (h *UserHandler) Me(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}

	u, err := h.users.GetByID(c.Context(), uid)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(404, "user not exists")
		}
		return err
	}
	expressions, err := h.users.ListExpressions(c.Context(), uid)
	if err != nil {
		return err
	}
	return c.Res(200, meResponse{
		Profile:     user.ToProfile(u),
		PluginData:  u.PluginData,
		Expressions: expressions,
	})
}

// Create handles POST /user: account registration.
func (h *UserHandler) Create(c *router.Context) error {
	username := c.Param("username")
	password := c.Param("password")
	if username == "" {
		return c.Res(400, "need username param but not exists")
	}
	if password == "" {
		return c.Res(400, "need password param but not exists")
	}

	_, err := h.users.GetByUsername(c.Context(), username)
	if err == nil {
		return c.Res(400, "username already exists")
	}
	if !errors.Is(err, breeze_errors.ErrNotFound) {
		return err
	}

	// A missing default group means the deployment is broken; creating an
	// account without its membership is worse than failing the request.
	defaultGroup, err := h.groups.GetDefault(c.Context())
	if err != nil {
		return err
	}

	hash, err := h.hasher.HashPassword(password)
	if err != nil {
		return err
	}

	gender := h.pickGender()
	avatarURL, err := h.avatar.CreateDefault(c.Context(), username, gender)
	if err != nil {
		return err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Gender:       gender,
		Avatar:       avatarURL,
		CreatedAt:    h.now(),
	}
	if err := h.users.Create(c.Context(), newUser); err != nil {
		switch {
		case errors.Is(err, breeze_errors.ErrValidation):
			return c.Res(400, "username invalid")
		case errors.Is(err, breeze_errors.ErrAlreadyExists):
			return c.Res(400, "username already exists")
		default:
			h.log.Errorf("create user %q: %v", username, err)
			return c.Res(500, "server error when save new user")
		}
	}
	if err := h.groups.AddMember(c.Context(), defaultGroup.ID, newUser.ID); err != nil {
		h.log.Errorf("add user %q to default group: %v", username, err)
		return c.Res(500, "server error when save new user")
	}

	return c.Res(201, user.ToProfile(*newUser))
}

var profileFields = []string{"gender", "birthday", "location", "website", "github", "qq"}

// UpdateProfile handles PUT /user.
func (h *UserHandler) UpdateProfile(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}

	for _, field := range profileFields {
		if !c.HasParam(field) {
			return c.Res(400, fmt.Sprintf("need %s param but not exists", field))
		}
	}

	gender := c.Param("gender")
	if gender != user.GenderMale && gender != user.GenderFemale {
		return c.Res(400, "gender is invalid")
	}
	birthday, err := parseBirthday(c.Param("birthday"))
	if err != nil {
		return c.Res(400, "birthday is invalid")
	}
	if now := h.now(); birthday.After(now) {
		birthday = now
	}

	u, err := h.users.GetByID(c.Context(), uid)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(404, "user not exists")
		}
		return err
	}

	u.Gender = gender
	u.Birthday = birthday
	u.Location = c.Param("location")
	u.Website = normalizeLink(c.Param("website"))
	u.Github = normalizeLink(c.Param("github"))
	u.QQ = c.Param("qq")
	if err := h.users.Update(c.Context(), u); err != nil {
		return err
	}

	return c.Res(200, map[string]any{
		"gender":   u.Gender,
		"birthday": u.Birthday,
		"location": u.Location,
		"website":  u.Website,
		"github":   u.Github,
		"qq":       u.QQ,
	})
}

// UpdatePluginData handles PUT /user/pluginData.
func (h *UserHandler) UpdatePluginData(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}
	if !c.HasParam("pluginData") {
		return c.Res(400, "need pluginData param but not exists")
	}

	u, err := h.users.GetByID(c.Context(), uid)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(404, "user not exists")
		}
		return err
	}
	u.PluginData = c.Param("pluginData")
	if err := h.users.Update(c.Context(), u); err != nil {
		return err
	}
	return c.Res(200, u.PluginData)
}

// AddFriend handles POST /user/friend. Target existence is verified before
// the idempotence short-circuit, so a bad id never silently no-ops.
func (h *UserHandler) AddFriend(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}

	raw := c.Param("userId")
	target, err := uuid.Parse(raw)
	if err != nil {
		return c.Res(400, fmt.Sprintf("userId:'%s' is invalid", raw))
	}
	if _, err := h.users.GetByID(c.Context(), target); err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(400, fmt.Sprintf("user:'%s' not exists", raw))
		}
		return err
	}

	// self-edges are excluded by the friend set's semantics
	if target == uid {
		return c.Res(204)
	}
	already, err := h.users.IsFriend(c.Context(), uid, target)
	if err != nil {
		return err
	}
	if already {
		return c.Res(204)
	}

	if err := h.users.AddFriend(c.Context(), uid, target); err != nil && !errors.Is(err, breeze_errors.ErrAlreadyExists) {
		return err
	}
	return c.Res(204)
}

// RemoveFriend handles DELETE /user/friend.
func (h *UserHandler) RemoveFriend(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}

	raw := c.Param("userId")
	target, err := uuid.Parse(raw)
	if err != nil {
		return c.Res(400, fmt.Sprintf("userId:'%s' is invalid", raw))
	}
	if _, err := h.users.GetByID(c.Context(), target); err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(400, fmt.Sprintf("user:'%s' not exists", raw))
		}
		return err
	}

	isFriend, err := h.users.IsFriend(c.Context(), uid, target)
	if err != nil {
		return err
	}
	if !isFriend {
		return c.Res(204)
	}
	if err := h.users.RemoveFriend(c.Context(), uid, target); err != nil {
		return err
	}
	return c.Res(204)
}

// AvatarByUsername handles GET /user/avatar. An unknown username is not an
// error; clients get an empty avatar instead.
func (h *UserHandler) AvatarByUsername(c *router.Context) error {
	username := c.Param("username")
	if username == "" {
		return c.Res(400, "need username param but not exists")
	}

	u, err := h.users.GetByUsername(c.Context(), username)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(200, map[string]string{"avatar": ""})
		}
		return err
	}
	return c.Res(200, map[string]string{"username": u.Username, "avatar": u.Avatar})
}

// UpdateAvatar handles PUT /user/avatar.
func (h *UserHandler) UpdateAvatar(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}

	raw := c.Param("avatar")
	if raw == "" {
		return c.Res(400, "need avatar param but not exists")
	}
	subtype, data, err := services.ParseImageDataURI(raw)
	if err != nil {
		return c.Res(400, "avatar is invalid")
	}

	u, err := h.users.GetByID(c.Context(), uid)
	if err != nil {
		if errors.Is(err, breeze_errors.ErrNotFound) {
			return c.Res(404, "user not exists")
		}
		return err
	}

	name := fmt.Sprintf("user_%s_%d.%s", uid, h.now().UnixMilli(), subtype)
	url, err := h.avatar.SaveImage(c.Context(), name, data, subtype)
	if err != nil {
		return err
	}

	u.Avatar = url
	if err := h.users.Update(c.Context(), u); err != nil {
		return err
	}
	return c.Res(200, user.ToProfile(u))
}

// AddExpression handles POST /user/expression.
func (h *UserHandler) AddExpression(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}
	src := c.Param("src")
	if src == "" {
		return c.Res(400, "need src param but not exists")
	}

	expressions, err := h.users.ListExpressions(c.Context(), uid)
	if err != nil {
		return err
	}
	if !containsString(expressions, src) {
		if err := h.users.AddExpression(c.Context(), uid, src); err != nil && !errors.Is(err, breeze_errors.ErrAlreadyExists) {
			return err
		}
		expressions = append(expressions, src)
	}
	return c.Res(201, expressions)
}

// RemoveExpression handles DELETE /user/expression.
func (h *UserHandler) RemoveExpression(c *router.Context) error {
	uid, ok := c.RequireUser()
	if !ok {
		return nil
	}
	src := c.Param("src")
	if src == "" {
		return c.Res(400, "need src param but not exists")
	}

	expressions, err := h.users.ListExpressions(c.Context(), uid)
	if err != nil {
		return err
	}
	if containsString(expressions, src) {
		if err := h.users.RemoveExpression(c.Context(), uid, src); err != nil {
			return err
		}
		expressions = removeString(expressions, src)
	}
	return c.Res(200, expressions)
}

// parseBirthday accepts the timestamp formats clients send.
func parseBirthday(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// normalizeLink prefixes bare hosts with http://. Empty values and values
// that already carry a scheme pass through unchanged.
func normalizeLink(value string) string {
	if value == "" || strings.HasPrefix(value, "http") {
		return value
	}
	return "http://" + value
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func removeString(list []string, value string) []string {
	out := list[:0]
	for _, v := range list {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
