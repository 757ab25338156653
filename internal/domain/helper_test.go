package domain

import (
	"context"
	"sync"

	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/authenticator"
	"github.com/tavern-lab/backend/pkg/testutil"
)

type recordedEvent struct {
	Type  model.ChangeType
	Table string
	New   any
	Old   any
}

type recordEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *recordEmitter) Insert(_ context.Context, table string, row any) {
	e.record(recordedEvent{Type: model.ChangeInsert, Table: table, New: row})
}

func (e *recordEmitter) Update(_ context.Context, table string, old, new any) {
	e.record(recordedEvent{Type: model.ChangeUpdate, Table: table, New: new, Old: old})
}

func (e *recordEmitter) Delete(_ context.Context, table string, old any) {
	e.record(recordedEvent{Type: model.ChangeDelete, Table: table, Old: old})
}

func (e *recordEmitter) record(event recordedEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
}

func (e *recordEmitter) of(table string, changeType model.ChangeType) []recordedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()

	var result []recordedEvent
	for _, event := range e.events {
		if event.Table == table && event.Type == changeType {
			result = append(result, event)
		}
	}
	return result
}

type domains struct {
	emitter *recordEmitter
	storage *testutil.MockStorage
	dice    *rules.FixedDice

	auth      *authDomain
	character *characterDomain
	item      *itemDomain
	campaign  *campaignDomain
	room      *roomDomain
	badge     *badgeDomain
}

// newDomains wires every domain on the repositories of the mock context.
func newDomains(dice ...int) *domains {
	userRepo := repository.NewUserRepository()
	characterRepo := repository.NewCharacterRepository()
	itemRepo := repository.NewItemRepository()
	campaignRepo := repository.NewCampaignRepository()
	campaignParticipantRepo := repository.NewCampaignParticipantRepository()
	encounterEnemyRepo := repository.NewEncounterEnemyRepository()
	roomRepo := repository.NewRoomRepository()
	roomParticipantRepo := repository.NewRoomParticipantRepository()
	roomLogRepo := repository.NewRoomLogRepository()
	badgeRepo := repository.NewBadgeRepository()
	characterBadgeRepo := repository.NewCharacterBadgeRepository()

	verifier := common.NewCharacterVerifier(characterRepo, campaignRepo, roomRepo, userRepo)
	catalog := rules.DefaultCatalog()

	d := &domains{
		emitter: &recordEmitter{},
		storage: &testutil.MockStorage{},
		dice:    rules.NewFixedDice(dice...),
	}

	d.auth = NewAuthDomain(userRepo, repository.NewRefreshTokenRepository(), authenticator.NewBcryptHasher(4))
	d.character = NewCharacterDomain(characterRepo, itemRepo, characterBadgeRepo, campaignParticipantRepo,
		roomParticipantRepo, verifier, catalog, d.emitter, d.storage)
	d.item = NewItemDomain(itemRepo, characterRepo, roomParticipantRepo, roomLogRepo, verifier, d.emitter)
	d.campaign = NewCampaignDomain(campaignRepo, campaignParticipantRepo, encounterEnemyRepo, userRepo,
		verifier, d.emitter)
	d.room = NewRoomDomain(roomRepo, roomParticipantRepo, roomLogRepo, characterRepo, userRepo, verifier,
		catalog, d.dice, d.emitter, d.storage)
	d.badge = NewBadgeDomain(badgeRepo, characterBadgeRepo, characterRepo, userRepo, verifier, d.emitter)

	return d
}

func setup(dice ...int) (context.Context, *testutil.Fixture, *domains) {
	ctx := testutil.MockContext()
	return ctx, testutil.CreateFixtureDb(ctx), newDomains(dice...)
}
