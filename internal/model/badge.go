package model

type CreateBadgeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IconKey     string `json:"icon_key"`
}

type CreateBadgeResponse struct {
	ID string `json:"id"`
}

type GetListBadgeRequest struct {
	Mine bool `json:"mine"`
}

type GetListBadgeResponse struct {
	Badges []Badge `json:"badges"`
}

type DeleteBadgeRequest struct {
	ID string `json:"id"`
}

type DeleteBadgeResponse struct{}

type AwardBadgeRequest struct {
	BadgeID     string `json:"badge_id"`
	CharacterID string `json:"character_id"`
}

type AwardBadgeResponse struct {
	ID string `json:"id"`
}

type GetCharacterBadgesRequest struct {
	CharacterID string `json:"character_id"`
}

type GetCharacterBadgesResponse struct {
	Badges []CharacterBadge `json:"badges"`
}
