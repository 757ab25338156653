package liveview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tavern-lab/backend/pkg/xredis"
)

// Ticket remembers which character joined a room, so a reload can rejoin
// without the room code.
type Ticket struct {
	RoomID      string    `json:"room_id"`
	CharacterID string    `json:"character_id"`
	SavedAt     time.Time `json:"saved_at"`
}

// TicketStore persists tickets of one user. Load returns nil without error
// when no ticket exists.
type TicketStore interface {
	Save(ctx context.Context, roomID, characterID string) error
	Load(ctx context.Context, roomID string) (*Ticket, error)
	Clear(ctx context.Context, roomID string) error
}

type fileTicketStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTicketStore keeps the tickets of userID in a json file under dir.
func NewFileTicketStore(dir, userID string) (*fileTicketStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	return &fileTicketStore{path: filepath.Join(dir, fmt.Sprintf("tickets-%s.json", userID))}, nil
}

func (s *fileTicketStore) Save(ctx context.Context, roomID, characterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.read()
	if err != nil {
		return err
	}

	tickets[roomID] = Ticket{RoomID: roomID, CharacterID: characterID, SavedAt: time.Now()}
	return s.write(tickets)
}

func (s *fileTicketStore) Load(ctx context.Context, roomID string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.read()
	if err != nil {
		return nil, err
	}

	ticket, ok := tickets[roomID]
	if !ok {
		return nil, nil
	}

	return &ticket, nil
}

func (s *fileTicketStore) Clear(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := tickets[roomID]; !ok {
		return nil
	}

	delete(tickets, roomID)
	return s.write(tickets)
}

func (s *fileTicketStore) read() (map[string]Ticket, error) {
	tickets := map[string]Ticket{}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return tickets, nil
		}
		return nil, err
	}

	if len(b) == 0 {
		return tickets, nil
	}

	if err := json.Unmarshal(b, &tickets); err != nil {
		return nil, err
	}

	return tickets, nil
}

// write replaces the file atomically through a temporary file.
func (s *fileTicketStore) write(tickets map[string]Ticket) error {
	b, err := json.Marshal(tickets)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tickets-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}

type redisTicketStore struct {
	client xredis.Client
	userID string
	ttl    time.Duration
}

// NewRedisTicketStore keeps tickets under room_ticket:<user>:<room>. A zero
// ttl never expires.
func NewRedisTicketStore(client xredis.Client, userID string, ttl time.Duration) *redisTicketStore {
	return &redisTicketStore{client: client, userID: userID, ttl: ttl}
}

func (s *redisTicketStore) key(roomID string) string {
	return fmt.Sprintf("room_ticket:%s:%s", s.userID, roomID)
}

func (s *redisTicketStore) Save(ctx context.Context, roomID, characterID string) error {
	return s.client.SetObj(ctx, s.key(roomID),
		Ticket{RoomID: roomID, CharacterID: characterID, SavedAt: time.Now()}, s.ttl)
}

func (s *redisTicketStore) Load(ctx context.Context, roomID string) (*Ticket, error) {
	var ticket Ticket
	if err := s.client.GetObj(ctx, s.key(roomID), &ticket); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	return &ticket, nil
}

func (s *redisTicketStore) Clear(ctx context.Context, roomID string) error {
	return s.client.Del(ctx, s.key(roomID))
}

type memoryTicketStore struct {
	mu      sync.Mutex
	tickets map[string]Ticket
}

func NewMemoryTicketStore() *memoryTicketStore {
	return &memoryTicketStore{tickets: map[string]Ticket{}}
}

func (s *memoryTicketStore) Save(ctx context.Context, roomID, characterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[roomID] = Ticket{RoomID: roomID, CharacterID: characterID, SavedAt: time.Now()}
	return nil
}

func (s *memoryTicketStore) Load(ctx context.Context, roomID string) (*Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, ok := s.tickets[roomID]
	if !ok {
		return nil, nil
	}

	return &ticket, nil
}

func (s *memoryTicketStore) Clear(ctx context.Context, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, roomID)
	return nil
}
