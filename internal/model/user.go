package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the closed set of account roles. Keeping it a typed constant
// set (instead of free-form strings) makes illegal roles unrepresentable
// past the binding layer.
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleTA         Role = "ta"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleTA, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Staff reports whether the role belongs to teaching staff.
func (r Role) Staff() bool {
	return r == RoleInstructor || r == RoleTA || r == RoleAdmin
}

// CanCreateCourse reports whether the role may create and own courses.
func (r Role) CanCreateCourse() bool {
	return r == RoleInstructor || r == RoleAdmin
}

// CanGradeAnyCourse reports whether the role may grade regardless of
// course ownership. Instructors qualify through ownership instead.
func (r Role) CanGradeAnyCourse() bool {
	return r == RoleTA || r == RoleAdmin
}

type User struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email           string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"`
	FirstName       string     `gorm:"size:100;not null" json:"first_name"`
	LastName        string     `gorm:"size:100;not null" json:"last_name"`
	Role            Role       `gorm:"size:20;not null;default:student" json:"role"`
	StudentID       *string    `gorm:"size:50" json:"student_id,omitempty"`
	EmployeeID      *string    `gorm:"size:50" json:"employee_id,omitempty"`
	Phone           *string    `gorm:"size:30" json:"phone,omitempty"`
	Bio             *string    `gorm:"type:text" json:"bio,omitempty"`
	ProfileImageURL *string    `gorm:"type:text" json:"profile_image_url,omitempty"`
	IsActive        bool       `gorm:"default:true" json:"is_active"`
	IsSuspended     bool       `gorm:"default:false" json:"is_suspended"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Disabled reports whether the account must be rejected at the auth gate.
func (u *User) Disabled() bool {
	return !u.IsActive || u.IsSuspended
}
