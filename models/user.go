package models

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// User is a local mirror of the identity provider's account record.
// Created and updated by the auth sync path (and the background profile sync
// worker); the scoring code never writes to it.
type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	AuthID      string     `gorm:"uniqueIndex;not null" json:"auth_id"` // identity provider subject
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Name        string     `json:"name"`
	Picture     *string    `json:"picture,omitempty"`
	Role        UserRole   `gorm:"type:varchar(8);default:'USER'" json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
