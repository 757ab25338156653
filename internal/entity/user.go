package entity

import (
	"time"

	"github.com/tavern-lab/backend/pkg/enum"
)

type GlobalRole string

var (
	RolePlayer = enum.New(GlobalRole("player"))
	RoleDM     = enum.New(GlobalRole("dm"))
	RoleAdmin  = enum.New(GlobalRole("admin"))
)

// GameMasterRoles may author badges and run campaigns.
var GameMasterRoles = []GlobalRole{RoleDM, RoleAdmin}

type User struct {
	Base
	Email        string `gorm:"unique"`
	PasswordHash string
	Name         string
	Role         GlobalRole `gorm:"default:player"`
}

type RefreshToken struct {
	UserID     string
	User       User   `gorm:"foreignKey:UserID"`
	Family     string `gorm:"primaryKey"`
	Counter    uint64
	Expiration time.Time
}
