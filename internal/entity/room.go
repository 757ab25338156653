package entity

import "time"

type Room struct {
	Base
	Name              string
	Code              string `gorm:"unique;size:8"`
	DMID              string `gorm:"column:dm_id;index"`
	DM                User   `gorm:"foreignKey:DMID"`
	BroadcastImageURL string
}

type RoomParticipant struct {
	RoomID      string    `gorm:"primaryKey"`
	Room        Room      `gorm:"foreignKey:RoomID"`
	CharacterID string    `gorm:"primaryKey"`
	Character   Character `gorm:"foreignKey:CharacterID"`
	UserID      string    `gorm:"index"`
	JoinedAt    time.Time
}

type RoomLog struct {
	SnowFlakeBase
	RoomID  string `gorm:"index"`
	Author  string
	Content string
}
