package models

import (
	"time"

	"reviewhub/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID          string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string      `gorm:"size:150" json:"first_name"`
	LastName    string      `gorm:"size:150" json:"last_name"`
	Bio         string      `gorm:"size:200" json:"bio"`
	Role        policy.Role `gorm:"type:varchar(16);default:'user';not null;check:chk_users_role,role IN ('user', 'moderator', 'admin')" json:"role"`
	IsSuperuser bool        `gorm:"not null;default:false" json:"is_superuser"`
	// bcrypt hash of the last issued confirmation code, empty once consumed
	ConfirmationCode string    `gorm:"column:confirmation_code_hash;size:72" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID and default role before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = policy.RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// Actor returns the authenticated policy view of the user.
func (user *User) Actor() policy.Actor {
	return policy.Actor{
		Authenticated: true,
		UserID:        user.ID,
		Username:      user.Username,
		Role:          user.Role,
		IsSuperuser:   user.IsSuperuser,
	}
}
