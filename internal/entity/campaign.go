package entity

import (
	"time"

	"github.com/tavern-lab/backend/pkg/enum"
)

type ParticipantRole string

var (
	ParticipantDM        = enum.New(ParticipantRole("dm"))
	ParticipantPlayer    = enum.New(ParticipantRole("player"))
	ParticipantSpectator = enum.New(ParticipantRole("spectator"))
)

type Campaign struct {
	Base
	Name        string
	Description string
	DMID        string `gorm:"column:dm_id;index"`
	DM          User   `gorm:"foreignKey:DMID"`
	JoinCode    string `gorm:"unique;size:8"`
	IsActive    bool
}

// CampaignParticipant rows are hard deleted, a character may leave and join
// the same campaign again.
type CampaignParticipant struct {
	ID          string `gorm:"primarykey"`
	CreatedAt   time.Time
	CampaignID  string    `gorm:"uniqueIndex:idx_campaign_character"`
	Campaign    Campaign  `gorm:"foreignKey:CampaignID"`
	UserID      string    `gorm:"index"`
	User        User      `gorm:"foreignKey:UserID"`
	CharacterID *string   `gorm:"uniqueIndex:idx_campaign_character"`
	Character   Character `gorm:"foreignKey:CharacterID"`
	Role        ParticipantRole
}

// EncounterEnemy is the ephemeral combat state a DM tracks for a campaign.
type EncounterEnemy struct {
	Base
	CampaignID string   `gorm:"index"`
	Campaign   Campaign `gorm:"foreignKey:CampaignID"`
	Name       string
	HPCurrent  int `gorm:"column:hp_current"`
	HPMax      int `gorm:"column:hp_max"`
	ArmorClass int
	Initiative int
}
