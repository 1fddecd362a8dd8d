package user

import (
	"time"

	"github.com/google/uuid"
)

// Genders assignable at registration. The caller does not pick one; the
// register flow draws uniformly from this set.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

var Genders = []string{GenderMale, GenderFemale}

// User represents the users table. PasswordHash is a bcrypt digest, which
// carries its own salt; it must never reach a client-facing payload.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Gender       string
	Avatar       string
	Birthday     time.Time
	Location     string
	Website      string
	Github       string
	QQ           string
	PluginData   string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Groups      []Group      `gorm:"many2many:group_members"`
	Expressions []Expression `gorm:"constraint:OnDelete:CASCADE"`
}

// Group represents the groups table. Exactly one row carries IsDefault; new
// accounts are enrolled into it at creation.
type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null"`
	IsDefault bool      `gorm:"index"`
	CreatedAt time.Time

	Members []User `gorm:"many2many:group_members"`
}

// Friendship is one directed edge of a user's friend set. The unique pair
// index gives the set its no-duplicates semantics.
type Friendship struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	FriendID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// Expression is a saved sticker/emote source owned by a user.
type Expression struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_expr_user_src"`
	Src       string    `gorm:"uniqueIndex:idx_expr_user_src"`
	CreatedAt time.Time
}

// Profile is the client-facing projection of a User. Credential fields have
// no representation here at all.
type Profile struct {
	ID        string    `json:"id"`
	Avatar    string    `json:"avatar"`
	Username  string    `json:"username"`
	Gender    string    `json:"gender"`
	Birthday  time.Time `json:"birthday"`
	Location  string    `json:"location"`
	Website   string    `json:"website"`
	Github    string    `json:"github"`
	QQ        string    `json:"qq"`
	CreatedAt time.Time `json:"createTime"`
}

// ToProfile builds the whitelisted projection of u.
func ToProfile(u User) Profile {
	return Profile{
		ID:        u.ID.String(),
		Avatar:    u.Avatar,
		Username:  u.Username,
		Gender:    u.Gender,
		Birthday:  u.Birthday,
		Location:  u.Location,
		Website:   u.Website,
		Github:    u.Github,
		QQ:        u.QQ,
		CreatedAt: u.CreatedAt,
	}
}
