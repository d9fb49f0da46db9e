package model

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID int64 `gorm:"primaryKey;autoIncrement"`
	//フロントが持ち回る公開ID（UUID）
	UserID       string `gorm:"type:varchar(64);not null;uniqueIndex"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	Name         string `gorm:"type:varchar(255)"`
	Mobile       string `gorm:"type:varchar(20)"`
	Address      string `gorm:"type:text"`
	Role         Role   `gorm:"type:varchar(20);not null;default:'USER'"`
	IsActive     bool   `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
