package liveview

import (
	"context"
	"fmt"
	"sync"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/client"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// RoomAPI is the part of the api client a room view needs.
type RoomAPI interface {
	GetRoom(context.Context, *model.GetRoomRequest) (*model.GetRoomResponse, error)
	JoinRoom(context.Context, *model.JoinRoomRequest) (*model.JoinRoomResponse, error)
	LeaveRoom(context.Context, *model.LeaveRoomRequest) (*model.LeaveRoomResponse, error)
	GetRoomParticipants(context.Context, *model.GetRoomParticipantsRequest) (*model.GetRoomParticipantsResponse, error)
	GetRoomLogs(context.Context, *model.GetRoomLogsRequest) (*model.GetRoomLogsResponse, error)
}

var _ RoomAPI = (*client.Client)(nil)

type RoomLoader struct {
	api        RoomAPI
	tickets    TicketStore
	subscriber Subscriber
	logLimit   int
}

func NewRoomLoader(api RoomAPI, tickets TicketStore, subscriber Subscriber) *RoomLoader {
	return &RoomLoader{api: api, tickets: tickets, subscriber: subscriber}
}

// WithLogLimit bounds the number of logs fetched on each reload.
func (l *RoomLoader) WithLogLimit(limit int) *RoomLoader {
	l.logLimit = limit
	return l
}

// RoomView is a live copy of a room. Its collections follow the change feed
// until Close.
type RoomView struct {
	IsDM bool

	Room         *Collection[model.Room]
	Participants *Collection[model.RoomParticipant]
	Logs         *Collection[model.RoomLog]
	Characters   *Collection[model.Character]

	// Rejoined is set when a saved ticket was replayed while loading.
	Rejoined bool

	loader       *RoomLoader
	synchronizer *Synchronizer
	once         sync.Once
}

func participantKey(p model.RoomParticipant) string {
	return p.RoomID + "/" + p.CharacterID
}

// Load fetches the room of code and starts synchronizing it. A saved ticket
// of a non-DM is replayed once so the user is back in the room after a
// reload.
func (l *RoomLoader) Load(ctx context.Context, code string) (*RoomView, error) {
	resp, err := l.api.GetRoom(ctx, &model.GetRoomRequest{Code: code})
	if err != nil {
		return nil, err
	}

	room := resp.Room
	view := &RoomView{
		IsDM:         resp.IsDM,
		Room:         NewCollection[model.Room](func(r model.Room) string { return r.ID }),
		Participants: NewCollection[model.RoomParticipant](participantKey),
		Logs:         NewCollection[model.RoomLog](func(r model.RoomLog) string { return r.ID }),
		Characters:   NewCollection[model.Character](func(c model.Character) string { return c.ID }),
		loader:       l,
		synchronizer: NewSynchronizer(l.subscriber),
	}

	if !resp.IsDM && l.tickets != nil {
		rejoined, err := l.replayTicket(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		view.Rejoined = rejoined
	}

	roomFilter := fmt.Sprintf("room_id=eq.%s", room.ID)

	Watch(view.synchronizer, view.Room,
		model.Subscription{Table: model.TableRooms, Event: string(model.ChangeUpdate), Filter: "id=eq." + room.ID},
		MergeRows[model.Room](
			func(ctx context.Context) ([]model.Room, error) {
				resp, err := l.api.GetRoom(ctx, &model.GetRoomRequest{Code: code})
				if err != nil {
					return nil, err
				}
				return []model.Room{resp.Room}, nil
			},
			client.DecodeRow[model.Room],
		),
	)

	Watch(view.synchronizer, view.Participants,
		model.Subscription{Table: model.TableRoomParticipants, Event: "*", Filter: roomFilter},
		Refetch[model.RoomParticipant](func(ctx context.Context) ([]model.RoomParticipant, error) {
			resp, err := l.api.GetRoomParticipants(ctx, &model.GetRoomParticipantsRequest{RoomID: room.ID})
			if err != nil {
				return nil, err
			}

			view.resetCharacters(resp.Participants)
			return resp.Participants, nil
		}),
	)

	Watch(view.synchronizer, view.Logs,
		model.Subscription{Table: model.TableRoomLogs, Event: string(model.ChangeInsert), Filter: roomFilter},
		Refetch[model.RoomLog](func(ctx context.Context) ([]model.RoomLog, error) {
			resp, err := l.api.GetRoomLogs(ctx, &model.GetRoomLogsRequest{RoomID: room.ID, Limit: l.logLimit})
			if err != nil {
				return nil, err
			}
			return resp.Logs, nil
		}),
	)

	// Characters are only merged, the participant reload fills them.
	Watch(view.synchronizer, view.Characters,
		model.Subscription{Table: model.TableCharacters, Event: string(model.ChangeUpdate)},
		MergeRows[model.Character](nil, func(row map[string]any) (model.Character, error) {
			character, err := client.DecodeRow[model.Character](row)
			if err != nil {
				return character, err
			}
			return view.mask(character), nil
		}),
	)

	if err := view.synchronizer.Start(ctx); err != nil {
		return nil, err
	}

	return view, nil
}

func (l *RoomLoader) replayTicket(ctx context.Context, roomID string) (bool, error) {
	ticket, err := l.tickets.Load(ctx, roomID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot load room ticket: %v", err)
		return false, nil
	}

	if ticket == nil {
		return false, nil
	}

	_, err = l.api.JoinRoom(ctx, &model.JoinRoomRequest{RoomID: roomID, CharacterID: ticket.CharacterID})
	if err != nil {
		if errorx.Is(err, errorx.NotFound) || errorx.Is(err, errorx.PermissionDenied) {
			if err := l.tickets.Clear(ctx, roomID); err != nil {
				xcontext.Logger(ctx).Warnf("Cannot clear room ticket: %v", err)
			}
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// mask hides enemy hit points from players.
func (v *RoomView) mask(c model.Character) model.Character {
	if v.IsDM || !c.IsEnemy {
		return c
	}

	c.HPCurrent, c.HPMax, c.HPTemp = 0, 0, 0
	c.HPHidden = true
	return c
}

func (v *RoomView) resetCharacters(participants []model.RoomParticipant) {
	characters := make([]model.Character, 0, len(participants))
	for _, p := range participants {
		if p.Character != nil {
			characters = append(characters, v.mask(*p.Character))
		}
	}
	v.Characters.Replace(characters)
}

func (v *RoomView) RoomID() string {
	rooms := v.Room.Snapshot()
	if len(rooms) == 0 {
		return ""
	}
	return rooms[0].ID
}

// Join enters the room with characterID and saves the ticket for later
// reloads.
func (v *RoomView) Join(ctx context.Context, characterID string) (*model.JoinRoomResponse, error) {
	roomID := v.RoomID()
	resp, err := v.loader.api.JoinRoom(ctx, &model.JoinRoomRequest{RoomID: roomID, CharacterID: characterID})
	if err != nil {
		return nil, err
	}

	if v.loader.tickets != nil {
		if err := v.loader.tickets.Save(ctx, roomID, characterID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot save room ticket: %v", err)
		}
	}

	return resp, nil
}

// Leave exits the room and forgets its ticket.
func (v *RoomView) Leave(ctx context.Context) error {
	roomID := v.RoomID()
	if _, err := v.loader.api.LeaveRoom(ctx, &model.LeaveRoomRequest{RoomID: roomID}); err != nil {
		return err
	}

	if v.loader.tickets != nil {
		if err := v.loader.tickets.Clear(ctx, roomID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot clear room ticket: %v", err)
		}
	}

	return nil
}

func (v *RoomView) Close() {
	v.once.Do(v.synchronizer.Close)
}
