package model

type CreateCharacterRequest struct {
	Name         string         `json:"name"`
	Race         string         `json:"race"`
	Class        string         `json:"class"`
	Background   string         `json:"background"`
	Alignment    string         `json:"alignment"`
	Level        int            `json:"level"`
	HPMax        int            `json:"hp_max"`
	ArmorClass   int            `json:"armor_class"`
	Speed        string         `json:"speed"`
	Stats        *AbilityScores `json:"stats"`
	Skills       []string       `json:"skills"`
	SavingThrows []string       `json:"saving_throws"`
	Bio          string         `json:"bio"`
	ImageURL     string         `json:"image_url"`
}

type CreateCharacterResponse struct {
	ID string `json:"id"`
}

type GetMyCharactersRequest struct{}

type GetMyCharactersResponse struct {
	Characters []Character `json:"characters"`
}

type GetCharacterRequest struct {
	ID string `json:"id"`
}

type GetCharacterResponse Character

// UpdateCharacterRequest is partial, nil fields are left untouched.
type UpdateCharacterRequest struct {
	ID           string         `json:"id"`
	Name         *string        `json:"name"`
	Race         *string        `json:"race"`
	Class        *string        `json:"class"`
	Background   *string        `json:"background"`
	Alignment    *string        `json:"alignment"`
	Level        *int           `json:"level"`
	Experience   *int           `json:"experience"`
	Speed        *string        `json:"speed"`
	Stats        *AbilityScores `json:"stats"`
	Skills       []string       `json:"skills"`
	SavingThrows []string       `json:"saving_throws"`
	Bio          *string        `json:"bio"`
	ImageURL     *string        `json:"image_url"`
}

type UpdateCharacterResponse struct{}

type DeleteCharacterRequest struct {
	ID string `json:"id"`
}

type DeleteCharacterResponse struct{}

type AdjustHPRequest struct {
	CharacterID string `json:"character_id"`
	Delta       int    `json:"delta"`
	ConsumeTemp bool   `json:"consume_temp"`
}

type AdjustHPResponse struct {
	HPCurrent int `json:"hp_current"`
	HPTemp    int `json:"hp_temp"`
}

type SetStatRequest struct {
	CharacterID string `json:"character_id"`
	Field       string `json:"field"`
	Value       int    `json:"value"`
}

type SetStatResponse struct {
	HPCurrent  int `json:"hp_current"`
	HPMax      int `json:"hp_max"`
	HPTemp     int `json:"hp_temp"`
	ArmorClass int `json:"armor_class"`
	TempAC     int `json:"temp_ac"`
	Initiative int `json:"initiative"`
}

type SaveAbilityRequest struct {
	CharacterID string `json:"character_id"`

	// Index -1 appends a new ability.
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type SaveAbilityResponse struct {
	Abilities []Ability `json:"abilities"`
}

type DeleteAbilityRequest struct {
	CharacterID string `json:"character_id"`
	Index       int    `json:"index"`
}

type DeleteAbilityResponse struct {
	Abilities []Ability `json:"abilities"`
}

type UploadCharacterImageRequest struct {
	CharacterID string `json:"character_id"`
}

type UploadCharacterImageResponse struct {
	URL string `json:"url"`
}
