package model

type CreateItemRequest struct {
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Quantity    int     `json:"quantity"`
	Weight      float64 `json:"weight"`
	Equipped    bool    `json:"equipped"`
}

type CreateItemResponse struct {
	ID string `json:"id"`
}

type UpdateItemRequest struct {
	ID          string   `json:"id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Type        *string  `json:"type"`
	Quantity    *int     `json:"quantity"`
	Weight      *float64 `json:"weight"`
	Equipped    *bool    `json:"equipped"`
}

type UpdateItemResponse struct{}

type DeleteItemRequest struct {
	ID string `json:"id"`
}

type DeleteItemResponse struct{}

type GetInventoryRequest struct {
	CharacterID string `json:"character_id"`
}

type GetInventoryResponse struct {
	Items       []Item  `json:"items"`
	TotalWeight float64 `json:"total_weight"`
}

type TransferItemRequest struct {
	ID            string `json:"id"`
	ToCharacterID string `json:"to_character_id"`
	RoomID        string `json:"room_id"`
}

type TransferItemResponse struct{}
