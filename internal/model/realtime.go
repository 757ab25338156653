package model

import "encoding/json"

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// ChangeEvent describes one committed write. New is empty for deletes, Old is
// empty for inserts.
type ChangeEvent struct {
	Table           string         `json:"table"`
	Type            ChangeType     `json:"type"`
	New             map[string]any `json:"new,omitempty"`
	Old             map[string]any `json:"old,omitempty"`
	CommitTimestamp string         `json:"commit_timestamp"`
}

// Row returns the new row, or the old one for deletes.
func (e ChangeEvent) Row() map[string]any {
	if e.Type == ChangeDelete || len(e.New) == 0 {
		return e.Old
	}
	return e.New
}

const (
	DirectiveSubscribe   = "subscribe"
	DirectiveUnsubscribe = "unsubscribe"
	DirectivePing        = "ping"
)

const (
	FrameSubscribed   = "subscribed"
	FrameUnsubscribed = "unsubscribed"
	FrameChange       = "change"
	FramePong         = "pong"
	FrameError        = "error"
)

type Subscription struct {
	ID    string `json:"id"`
	Table string `json:"table"`

	// Event is "*" or one of INSERT, UPDATE, DELETE.
	Event string `json:"event,omitempty"`

	// Filter has the form column=eq.value or column=value.
	Filter string `json:"filter,omitempty"`
}

type Unsubscription struct {
	ID string `json:"id"`
}

type Directive struct {
	Op   string          `json:"op"`
	Data json.RawMessage `json:"data,omitempty"`
}

type EventResponse struct {
	Op   string `json:"o"`
	Seq  uint64 `json:"s"`
	Data any    `json:"d"`
}

// RawEventResponse is how clients decode server frames.
type RawEventResponse struct {
	Op   string          `json:"o"`
	Seq  uint64          `json:"s"`
	Data json.RawMessage `json:"d"`
}

type ChangeNotification struct {
	Subscription string      `json:"subscription"`
	Event        ChangeEvent `json:"event"`
}

type FrameErrorData struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

type ServeRealtimeRequest struct{}

// Tables published on the change feed.
const (
	TableCharacters           = "characters"
	TableItems                = "items"
	TableCampaigns            = "campaigns"
	TableCampaignParticipants = "campaign_participants"
	TableEncounterEnemies     = "encounter_enemies"
	TableRooms                = "rooms"
	TableRoomParticipants     = "room_participants"
	TableRoomLogs             = "room_logs"
	TableBadges               = "badges"
	TableCharacterBadges      = "character_badges"
)
