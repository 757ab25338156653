package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type RefreshToken struct {
	Family  string `json:"family"`
	Counter uint64 `json:"counter"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type AbilityScores struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

type Ability struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// DerivedStats is computed on read and never stored.
type DerivedStats struct {
	Modifiers        map[string]string `json:"modifiers"`
	ProficiencyBonus int               `json:"proficiency_bonus"`
	Skills           map[string]int    `json:"skills"`
	EffectiveAC      int               `json:"effective_ac"`
	HPPercent        float64           `json:"hp_percent"`
	TempHPPercent    float64           `json:"temp_hp_percent"`
}

type Character struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Race       string `json:"race"`
	Class      string `json:"class"`
	Background string `json:"background"`
	Alignment  string `json:"alignment"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`

	// HP fields are hidden (HPHidden true, values zero) when an enemy is
	// shown to a non-DM.
	HPCurrent  int    `json:"hp_current"`
	HPMax      int    `json:"hp_max"`
	HPTemp     int    `json:"hp_temp"`
	HPHidden   bool   `json:"hp_hidden,omitempty"`
	ArmorClass int    `json:"armor_class"`
	TempAC     int    `json:"temp_ac"`
	Speed      string `json:"speed"`
	Initiative int    `json:"initiative"`

	Stats        AbilityScores `json:"stats"`
	Skills       []string      `json:"skills"`
	SavingThrows []string      `json:"saving_throws"`
	Abilities    []Ability     `json:"abilities"`

	Bio      string `json:"bio"`
	ImageURL string `json:"image_url"`
	IsEnemy  bool   `json:"is_enemy"`

	Derived *DerivedStats `json:"derived,omitempty"`
}

type Item struct {
	ID          string  `json:"id"`
	CreatedAt   string  `json:"created_at"`
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Weight      float64 `json:"weight"`
	Equipped    bool    `json:"equipped"`
	IsOfficial  bool    `json:"is_official"`
}

type Campaign struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DMID        string `json:"dm_id"`
	JoinCode    string `json:"join_code"`
	IsActive    bool   `json:"is_active"`
}

type CampaignParticipant struct {
	ID          string     `json:"id"`
	CreatedAt   string     `json:"created_at"`
	CampaignID  string     `json:"campaign_id"`
	UserID      string     `json:"user_id"`
	CharacterID string     `json:"character_id"`
	Role        string     `json:"role"`
	User        *User      `json:"user,omitempty"`
	Character   *Character `json:"character,omitempty"`
}

type EncounterEnemy struct {
	ID         string  `json:"id"`
	CampaignID string  `json:"campaign_id"`
	Name       string  `json:"name"`
	HPCurrent  int     `json:"hp_current"`
	HPMax      int     `json:"hp_max"`
	HPPercent  float64 `json:"hp_percent"`
	ArmorClass int     `json:"armor_class"`
	Initiative int     `json:"initiative"`
}

type Room struct {
	ID                string `json:"id"`
	CreatedAt         string `json:"created_at"`
	Name              string `json:"name"`
	Code              string `json:"code"`
	DMID              string `json:"dm_id"`
	BroadcastImageURL string `json:"broadcast_image_url"`
}

type RoomParticipant struct {
	RoomID      string     `json:"room_id"`
	CharacterID string     `json:"character_id"`
	UserID      string     `json:"user_id"`
	JoinedAt    string     `json:"joined_at"`
	Character   *Character `json:"character,omitempty"`
}

type RoomLog struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

type Badge struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"created_at"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconKey     string `json:"icon_key"`
	CreatedBy   string `json:"created_by"`
}

type CharacterBadge struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	BadgeID     string `json:"badge_id"`
	AwardedBy   string `json:"awarded_by"`
	AwardedAt   string `json:"awarded_at"`
	Badge       *Badge `json:"badge,omitempty"`
}
