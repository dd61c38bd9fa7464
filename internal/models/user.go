package models

import "time"

type UserRole string

const (
	RoleManager UserRole = "Gérant"
	RoleChef    UserRole = "Chef"
	RoleCommis  UserRole = "Commis"
)

type User struct {
	ID           string   `gorm:"primaryKey;size:50" json:"id"`
	Name         string   `gorm:"size:100;not null" json:"name"`
	Email        string   `gorm:"size:200;not null;unique" json:"email"`
	Role         UserRole `gorm:"size:20;not null" json:"role"`
	PasswordHash string   `gorm:"size:100" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}
