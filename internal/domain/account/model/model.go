package model

import (
	"time"

	"github.com/google/uuid"
)

type Role int

const (
	RoleCustomer Role = 0
	RoleAdmin    Role = 1
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// FieldKind names a column that registration keeps unique.
type FieldKind string

const (
	KindUsername FieldKind = "username"
	KindEmail    FieldKind = "email"
)

func (k FieldKind) Valid() bool {
	return k == KindUsername || k == KindEmail
}

type User struct {
	ID        uuid.UUID `json:"id"                 gorm:"type:uuid;primaryKey"`
	Username  string    `json:"username"           gorm:"size:50;not null;uniqueIndex"`
	Password  string    `json:"-"                  gorm:"size:255;not null"`
	Email     string    `json:"email"              gorm:"size:100;not null;uniqueIndex"`
	Phone     string    `json:"phone,omitempty"    gorm:"size:20"`
	Question  string    `json:"question,omitempty" gorm:"size:100"`
	Answer    string    `json:"answer,omitempty"   gorm:"size:100"`
	Role      Role      `json:"role"               gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// Sanitize returns a copy without the password hash and the recovery
// question/answer. Every user handed to a client or to the session cache
// goes through here.
func (u User) Sanitize() User {
	u.Password = ""
	u.Question = ""
	u.Answer = ""
	return u
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AnswerCheck is the outcome of a recovery answer check. A wrong answer is
// not an error: Matched is false and Token is empty.
type AnswerCheck struct {
	Matched bool
	Token   string
}
