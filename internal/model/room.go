package model

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type CreateRoomResponse struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type GetRoomRequest struct {
	Code string `json:"code"`
}

type GetRoomResponse struct {
	Room         Room              `json:"room"`
	IsDM         bool              `json:"is_dm"`
	Participants []RoomParticipant `json:"participants"`
	Logs         []RoomLog         `json:"logs"`
}

// JoinRoomRequest accepts either the room id or its code.
type JoinRoomRequest struct {
	RoomID      string `json:"room_id"`
	Code        string `json:"code"`
	CharacterID string `json:"character_id"`
}

type JoinRoomResponse struct {
	RoomID        string `json:"room_id"`
	AlreadyJoined bool   `json:"already_joined"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"room_id"`
}

type LeaveRoomResponse struct{}

type GetRoomParticipantsRequest struct {
	RoomID string `json:"room_id"`
}

type GetRoomParticipantsResponse struct {
	Participants []RoomParticipant `json:"participants"`
}

type GetRoomLogsRequest struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
}

type GetRoomLogsResponse struct {
	Logs []RoomLog `json:"logs"`
}

type RollDiceRequest struct {
	RoomID string `json:"room_id"`
	Sides  int    `json:"sides"`
}

type RollDiceResponse struct {
	Result int     `json:"result"`
	Log    RoomLog `json:"log"`
}

type RollInitiativeRequest struct {
	RoomID      string `json:"room_id"`
	CharacterID string `json:"character_id"`
}

type RollInitiativeResponse struct {
	Die      int `json:"die"`
	Modifier int `json:"modifier"`
	Total    int `json:"total"`
}

type ResetInitiativeRequest struct {
	RoomID string `json:"room_id"`
}

type ResetInitiativeResponse struct{}

type CreateRoomEnemyRequest struct {
	RoomID     string `json:"room_id"`
	Name       string `json:"name"`
	HP         int    `json:"hp"`
	ArmorClass int    `json:"armor_class"`
	Speed      string `json:"speed"`
	Dex        int    `json:"dex"`
}

type CreateRoomEnemyResponse struct {
	CharacterID string `json:"character_id"`
}

type UploadMapRequest struct {
	RoomID string `json:"room_id"`
}

type UploadMapResponse struct {
	URL string `json:"url"`
}

type ClearMapRequest struct {
	RoomID string `json:"room_id"`
}

type ClearMapResponse struct{}
