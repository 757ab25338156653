package model

type CreateCampaignRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateCampaignResponse struct {
	ID       string `json:"id"`
	JoinCode string `json:"join_code"`
}

type GetMyCampaignsRequest struct{}

type GetMyCampaignsResponse struct {
	Running []Campaign `json:"running"`
	Joined  []Campaign `json:"joined"`
}

type GetCampaignRequest struct {
	ID string `json:"id"`
}

type GetCampaignResponse struct {
	Campaign     Campaign              `json:"campaign"`
	IsDM         bool                  `json:"is_dm"`
	Participants []CampaignParticipant `json:"participants"`
	Enemies      []EncounterEnemy      `json:"enemies"`
}

type JoinCampaignRequest struct {
	JoinCode    string `json:"join_code"`
	CharacterID string `json:"character_id"`
	Role        string `json:"role"`
}

type JoinCampaignResponse struct {
	CampaignID    string `json:"campaign_id"`
	AlreadyJoined bool   `json:"already_joined"`
}

type LeaveCampaignRequest struct {
	CampaignID string `json:"campaign_id"`
}

type LeaveCampaignResponse struct{}

type UpdateCampaignRequest struct {
	ID          string  `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type UpdateCampaignResponse struct{}

type AddEnemyRequest struct {
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	HPMax      int    `json:"hp_max"`
	ArmorClass int    `json:"armor_class"`
	Initiative int    `json:"initiative"`
}

type AddEnemyResponse struct {
	ID string `json:"id"`
}

type AdjustEnemyHPRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

type AdjustEnemyHPResponse struct {
	HPCurrent int     `json:"hp_current"`
	HPPercent float64 `json:"hp_percent"`
}

type RemoveEnemyRequest struct {
	ID string `json:"id"`
}

type RemoveEnemyResponse struct{}

type ClearEnemiesRequest struct {
	CampaignID string `json:"campaign_id"`
}

type ClearEnemiesResponse struct{}
