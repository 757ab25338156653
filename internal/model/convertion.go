package model

import (
	"strconv"
	"time"

	"github.com/tavern-lab/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DefaultTimeLayout)
}

func ConvertUser(user *entity.User, includeSensitive bool) User {
	if user == nil {
		return User{}
	}

	u := User{
		ID:   user.ID,
		Name: user.Name,
		Role: string(user.Role),
	}

	if includeSensitive {
		u.Email = user.Email
	}

	return u
}

func ConvertAbilityScores(s entity.AbilityScores) AbilityScores {
	return AbilityScores{Str: s.Str, Dex: s.Dex, Con: s.Con, Int: s.Int, Wis: s.Wis, Cha: s.Cha}
}

func ConvertCharacter(c *entity.Character) Character {
	if c == nil {
		return Character{}
	}

	abilities := make([]Ability, 0, len(c.Abilities))
	for _, a := range c.Abilities {
		abilities = append(abilities, Ability{Title: a.Title, Description: a.Description, Type: string(a.Type)})
	}

	return Character{
		ID:           c.ID,
		CreatedAt:    formatTime(c.CreatedAt),
		UpdatedAt:    formatTime(c.UpdatedAt),
		UserID:       c.UserID,
		Name:         c.Name,
		Race:         c.Race,
		Class:        c.Class,
		Background:   c.Background,
		Alignment:    c.Alignment,
		Level:        c.Level,
		Experience:   c.Experience,
		HPCurrent:    c.HPCurrent,
		HPMax:        c.HPMax,
		HPTemp:       c.HPTemp,
		ArmorClass:   c.ArmorClass,
		TempAC:       c.TempAC,
		Speed:        c.Speed,
		Initiative:   c.Initiative,
		Stats:        ConvertAbilityScores(c.Stats),
		Skills:       append([]string{}, c.Skills...),
		SavingThrows: append([]string{}, c.SavingThrows...),
		Abilities:    abilities,
		Bio:          c.Bio,
		ImageURL:     c.ImageURL,
		IsEnemy:      c.IsEnemy,
	}
}

func ConvertItem(i *entity.Item) Item {
	if i == nil {
		return Item{}
	}

	return Item{
		ID:          i.ID,
		CreatedAt:   formatTime(i.CreatedAt),
		CharacterID: i.CharacterID,
		Name:        i.Name,
		Description: i.Description,
		Type:        string(i.Type),
		Quantity:    i.Quantity,
		Weight:      i.Weight,
		Equipped:    i.Equipped,
		IsOfficial:  i.IsOfficial,
	}
}

func ConvertCampaign(c *entity.Campaign) Campaign {
	if c == nil {
		return Campaign{}
	}

	return Campaign{
		ID:          c.ID,
		CreatedAt:   formatTime(c.CreatedAt),
		Name:        c.Name,
		Description: c.Description,
		DMID:        c.DMID,
		JoinCode:    c.JoinCode,
		IsActive:    c.IsActive,
	}
}

// ConvertCampaignParticipant expands the user and character only when they
// were preloaded.
func ConvertCampaignParticipant(p *entity.CampaignParticipant) CampaignParticipant {
	if p == nil {
		return CampaignParticipant{}
	}

	result := CampaignParticipant{
		ID:         p.ID,
		CreatedAt:  formatTime(p.CreatedAt),
		CampaignID: p.CampaignID,
		UserID:     p.UserID,
		Role:       string(p.Role),
	}

	if p.CharacterID != nil {
		result.CharacterID = *p.CharacterID
	}

	if p.User.ID != "" {
		u := ConvertUser(&p.User, false)
		result.User = &u
	}

	if p.Character.ID != "" {
		c := ConvertCharacter(&p.Character)
		result.Character = &c
	}

	return result
}

func ConvertEncounterEnemy(e *entity.EncounterEnemy) EncounterEnemy {
	if e == nil {
		return EncounterEnemy{}
	}

	return EncounterEnemy{
		ID:         e.ID,
		CampaignID: e.CampaignID,
		Name:       e.Name,
		HPCurrent:  e.HPCurrent,
		HPMax:      e.HPMax,
		ArmorClass: e.ArmorClass,
		Initiative: e.Initiative,
	}
}

func ConvertRoom(r *entity.Room) Room {
	if r == nil {
		return Room{}
	}

	return Room{
		ID:                r.ID,
		CreatedAt:         formatTime(r.CreatedAt),
		Name:              r.Name,
		Code:              r.Code,
		DMID:              r.DMID,
		BroadcastImageURL: r.BroadcastImageURL,
	}
}

func ConvertRoomParticipant(p *entity.RoomParticipant) RoomParticipant {
	if p == nil {
		return RoomParticipant{}
	}

	result := RoomParticipant{
		RoomID:      p.RoomID,
		CharacterID: p.CharacterID,
		UserID:      p.UserID,
		JoinedAt:    formatTime(p.JoinedAt),
	}

	if p.Character.ID != "" {
		c := ConvertCharacter(&p.Character)
		result.Character = &c
	}

	return result
}

func ConvertRoomLog(l *entity.RoomLog) RoomLog {
	if l == nil {
		return RoomLog{}
	}

	return RoomLog{
		ID:        strconv.FormatInt(l.ID, 10),
		RoomID:    l.RoomID,
		Author:    l.Author,
		Content:   l.Content,
		CreatedAt: formatTime(l.CreatedAt),
	}
}

func ConvertBadge(b *entity.Badge) Badge {
	if b == nil {
		return Badge{}
	}

	return Badge{
		ID:          b.ID,
		CreatedAt:   formatTime(b.CreatedAt),
		Name:        b.Name,
		Description: b.Description,
		IconKey:     b.IconKey,
		CreatedBy:   b.CreatedBy,
	}
}

func ConvertCharacterBadge(cb *entity.CharacterBadge) CharacterBadge {
	if cb == nil {
		return CharacterBadge{}
	}

	result := CharacterBadge{
		ID:          cb.ID,
		CharacterID: cb.CharacterID,
		BadgeID:     cb.BadgeID,
		AwardedBy:   cb.AwardedBy,
		AwardedAt:   formatTime(cb.AwardedAt),
	}

	if cb.Badge.ID != "" {
		b := ConvertBadge(&cb.Badge)
		result.Badge = &b
	}

	return result
}
