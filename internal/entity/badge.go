package entity

import "time"

type Badge struct {
	Base
	Name        string
	Description string
	IconKey     string
	CreatedBy   string `gorm:"index"`
	Creator     User   `gorm:"foreignKey:CreatedBy"`
}

type CharacterBadge struct {
	Base
	CharacterID string    `gorm:"index"`
	Character   Character `gorm:"foreignKey:CharacterID"`
	BadgeID     string    `gorm:"index"`
	Badge       Badge     `gorm:"foreignKey:BadgeID"`
	AwardedBy   string
	AwardedAt   time.Time
}
