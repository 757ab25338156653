package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"github.com/tavern-lab/backend/internal/common"
	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/storage"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

const (
	defaultRoomName = "Tavern"
	defaultLogLimit = 30

	enemyClass = "Monster"
)

type RoomDomain interface {
	Create(context.Context, *model.CreateRoomRequest) (*model.CreateRoomResponse, error)
	Get(context.Context, *model.GetRoomRequest) (*model.GetRoomResponse, error)
	Join(context.Context, *model.JoinRoomRequest) (*model.JoinRoomResponse, error)
	Leave(context.Context, *model.LeaveRoomRequest) (*model.LeaveRoomResponse, error)
	GetParticipants(context.Context, *model.GetRoomParticipantsRequest) (*model.GetRoomParticipantsResponse, error)
	GetLogs(context.Context, *model.GetRoomLogsRequest) (*model.GetRoomLogsResponse, error)
	RollDice(context.Context, *model.RollDiceRequest) (*model.RollDiceResponse, error)
	RollInitiative(context.Context, *model.RollInitiativeRequest) (*model.RollInitiativeResponse, error)
	ResetInitiative(context.Context, *model.ResetInitiativeRequest) (*model.ResetInitiativeResponse, error)
	CreateEnemy(context.Context, *model.CreateRoomEnemyRequest) (*model.CreateRoomEnemyResponse, error)
	UploadMap(context.Context, *model.UploadMapRequest) (*model.UploadMapResponse, error)
	ClearMap(context.Context, *model.ClearMapRequest) (*model.ClearMapResponse, error)
}

type roomDomain struct {
	roomRepo            repository.RoomRepository
	roomParticipantRepo repository.RoomParticipantRepository
	roomLogRepo         repository.RoomLogRepository
	characterRepo       repository.CharacterRepository
	userRepo            repository.UserRepository
	characterVerifier   *common.CharacterVerifier
	roomLogger          *roomLogger
	catalog             *rules.Catalog
	dice                rules.Dice
	emitter             changefeed.Emitter
	storage             storage.Storage
}

func NewRoomDomain(
	roomRepo repository.RoomRepository,
	roomParticipantRepo repository.RoomParticipantRepository,
	roomLogRepo repository.RoomLogRepository,
	characterRepo repository.CharacterRepository,
	userRepo repository.UserRepository,
	characterVerifier *common.CharacterVerifier,
	catalog *rules.Catalog,
	dice rules.Dice,
	emitter changefeed.Emitter,
	storage storage.Storage,
) *roomDomain {
	return &roomDomain{
		roomRepo:            roomRepo,
		roomParticipantRepo: roomParticipantRepo,
		roomLogRepo:         roomLogRepo,
		characterRepo:       characterRepo,
		userRepo:            userRepo,
		characterVerifier:   characterVerifier,
		roomLogger:          newRoomLogger(roomLogRepo, emitter),
		catalog:             catalog,
		dice:                dice,
		emitter:             emitter,
		storage:             storage,
	}
}

func (d *roomDomain) Create(ctx context.Context, req *model.CreateRoomRequest) (*model.CreateRoomResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultRoomName
	}

	code, err := uniqueCode(ctx, common.GenerateRoomCode, func(code string) (bool, error) {
		_, err := d.roomRepo.GetByCode(ctx, code)
		if err != nil {
			if isRecordNotFound(err) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	room := &entity.Room{
		Base: entity.Base{ID: uuid.NewString()},
		Name: name,
		Code: code,
		DMID: xcontext.RequestUserID(ctx),
	}

	if err := d.roomRepo.Create(ctx, room); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create room: %v", err)
		return nil, errorx.Unknown
	}

	d.emitter.Insert(ctx, model.TableRooms, model.ConvertRoom(room))
	return &model.CreateRoomResponse{ID: room.ID, Code: room.Code}, nil
}

func (d *roomDomain) Get(ctx context.Context, req *model.GetRoomRequest) (*model.GetRoomResponse, error) {
	room, err := d.getByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	isDM, err := d.isDM(ctx, room)
	if err != nil {
		return nil, err
	}

	participants, err := d.participants(ctx, room.ID, isDM)
	if err != nil {
		return nil, err
	}

	logs, err := d.latestLogs(ctx, room.ID, 0)
	if err != nil {
		return nil, err
	}

	return &model.GetRoomResponse{
		Room:         model.ConvertRoom(room),
		IsDM:         isDM,
		Participants: participants,
		Logs:         logs,
	}, nil
}

func (d *roomDomain) Join(ctx context.Context, req *model.JoinRoomRequest) (*model.JoinRoomResponse, error) {
	var room *entity.Room
	var err error
	switch {
	case req.RoomID != "":
		room, err = getRoom(ctx, d.roomRepo, req.RoomID)
	case req.Code != "":
		room, err = d.getByCode(ctx, req.Code)
	default:
		return nil, errorx.New(errorx.BadRequest, "Require room id or code")
	}
	if err != nil {
		return nil, err
	}

	character, err := d.characterVerifier.VerifyOwner(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	participant := &entity.RoomParticipant{
		RoomID:      room.ID,
		CharacterID: character.ID,
		UserID:      character.UserID,
		JoinedAt:    time.Now(),
	}

	inserted, err := d.roomParticipantRepo.Upsert(ctx, participant)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot join room: %v", err)
		return nil, errorx.Unknown
	}

	if inserted {
		participant.Character = *character
		d.emitter.Insert(ctx, model.TableRoomParticipants, model.ConvertRoomParticipant(participant))
	}

	return &model.JoinRoomResponse{RoomID: room.ID, AlreadyJoined: !inserted}, nil
}

func (d *roomDomain) Leave(ctx context.Context, req *model.LeaveRoomRequest) (*model.LeaveRoomResponse, error) {
	room, err := getRoom(ctx, d.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}

	removed, err := d.roomParticipantRepo.DeleteByRoomAndUser(ctx, room.ID, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot leave room: %v", err)
		return nil, errorx.Unknown
	}

	for i := range removed {
		d.emitter.Delete(ctx, model.TableRoomParticipants, model.ConvertRoomParticipant(&removed[i]))
	}

	return &model.LeaveRoomResponse{}, nil
}

func (d *roomDomain) GetParticipants(
	ctx context.Context, req *model.GetRoomParticipantsRequest,
) (*model.GetRoomParticipantsResponse, error) {
	room, err := getRoom(ctx, d.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}

	isDM, err := d.isDM(ctx, room)
	if err != nil {
		return nil, err
	}

	participants, err := d.participants(ctx, room.ID, isDM)
	if err != nil {
		return nil, err
	}

	return &model.GetRoomParticipantsResponse{Participants: participants}, nil
}

func (d *roomDomain) GetLogs(ctx context.Context, req *model.GetRoomLogsRequest) (*model.GetRoomLogsResponse, error) {
	room, err := getRoom(ctx, d.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}

	logs, err := d.latestLogs(ctx, room.ID, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetRoomLogsResponse{Logs: logs}, nil
}

func (d *roomDomain) RollDice(ctx context.Context, req *model.RollDiceRequest) (*model.RollDiceResponse, error) {
	if !rules.ValidDice(req.Sides) {
		return nil, errorx.New(errorx.BadRequest, "Invalid dice d%d", req.Sides)
	}

	room, err := getRoom(ctx, d.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}

	author, err := d.author(ctx, room)
	if err != nil {
		return nil, err
	}

	result := d.dice.Roll(req.Sides)
	content := fmt.Sprintf("%s rolls 1d%d: [ %d ]", author, req.Sides, result)
	log, err := d.roomLogger.Append(ctx, room.ID, author, content)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append room log: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RollDiceResponse{Result: result, Log: model.ConvertRoomLog(log)}, nil
}

func (d *roomDomain) RollInitiative(
	ctx context.Context, req *model.RollInitiativeRequest,
) (*model.RollInitiativeResponse, error) {
	room, err := getRoom(ctx, d.roomRepo, req.RoomID)
	if err != nil {
		return nil, err
	}

	character, err := d.characterVerifier.VerifyOwnerOrDM(ctx, req.CharacterID)
	if err != nil {
		return nil, err
	}

	if _, err := d.roomParticipantRepo.Get(ctx, room.ID, character.ID); err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "The character is not in this room")
		}

		xcontext.Logger(ctx).Errorf("Cannot get room participant: %v", err)
		return nil, errorx.Unknown
	}

	die := d.dice.Roll(20)
	modifier := rules.Modifier(character.Stats.Dex)
	total := die + modifier

	content := fmt.Sprintf("%s initiative: %d (%d%s)", character.Name, total, die, rules.FormatModifier(modifier))
	if character.UserID != xcontext.RequestUserID(ctx) {
		content += " [rolled by " + authorDM + "]"
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.characterRepo.Update(ctx, character.ID, map[string]any{"initiative": total}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update initiative: %v", err)
		return nil, errorx.Unknown
	}

	log, err := d.roomLogger.Write(ctx, room.ID, authorSystem, content)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append room log: %v", err)
		return nil, errorx.Unknown
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	updated := *character
	updated.Initiative = total
	d.emitter.Update(ctx, model.TableCharacters, model.ConvertCharacter(character), model.ConvertCharacter(&updated))
	d.roomLogger.Announce(ctx, log)

	return &model.RollInitiativeResponse{Die: die, Modifier: modifier, Total: total}, nil
}

func (d *roomDomain) ResetInitiative(
	ctx context.Context, req *model.ResetInitiativeRequest,
) (*model.ResetInitiativeResponse, error) {
	room, err := d.verifyDM(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	participants, err := d.roomParticipantRepo.GetByRoomID(ctx, room.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get room participants: %v", err)
		return nil, errorx.Unknown
	}

	ids := make([]string, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.CharacterID)
	}

	if err := d.characterRepo.UpdateInitiativeByIDs(ctx, ids, 0); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reset initiative: %v", err)
		return nil, errorx.Unknown
	}

	for i := range participants {
		old := participants[i].Character
		if old.ID == "" || old.Initiative == 0 {
			continue
		}

		updated := old
		updated.Initiative = 0
		d.emitter.Update(ctx, model.TableCharacters, model.ConvertCharacter(&old), model.ConvertCharacter(&updated))
	}

	return &model.ResetInitiativeResponse{}, nil
}

func (d *roomDomain) CreateEnemy(
	ctx context.Context, req *model.CreateRoomEnemyRequest,
) (*model.CreateRoomEnemyResponse, error) {
	room, err := d.verifyDM(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errorx.New(errorx.BadRequest, "Enemy name is required")
	}

	if req.HP < 1 {
		return nil, errorx.New(errorx.BadRequest, "Hit points must be at least 1")
	}

	stats := entity.DefaultAbilityScores()
	if req.Dex > 0 {
		stats.Dex = req.Dex
	}

	armorClass := req.ArmorClass
	if armorClass <= 0 {
		armorClass = rules.ArmorClass(d.catalog, enemyClass, stats)
	}

	speed := strings.TrimSpace(req.Speed)
	if speed == "" {
		speed = defaultSpeed
	}

	enemy := &entity.Character{
		Base:         entity.Base{ID: uuid.NewString()},
		UserID:       xcontext.RequestUserID(ctx),
		Name:         name,
		Class:        enemyClass,
		Level:        rules.MinLevel,
		HPCurrent:    req.HP,
		HPMax:        req.HP,
		ArmorClass:   armorClass,
		Speed:        speed,
		Stats:        stats,
		Skills:       entity.Array[string]{},
		SavingThrows: entity.Array[string]{},
		Abilities:    entity.Array[entity.Ability]{},
		IsEnemy:      true,
	}

	participant := &entity.RoomParticipant{
		RoomID:      room.ID,
		CharacterID: enemy.ID,
		UserID:      enemy.UserID,
		JoinedAt:    time.Now(),
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.characterRepo.Create(ctx, enemy); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create enemy: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := d.roomParticipantRepo.Upsert(ctx, participant); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add enemy to room: %v", err)
		return nil, errorx.Unknown
	}

	if err := commit(ctx); err != nil {
		return nil, err
	}

	participant.Character = *enemy
	d.emitter.Insert(ctx, model.TableCharacters, model.ConvertCharacter(enemy))
	d.emitter.Insert(ctx, model.TableRoomParticipants, model.ConvertRoomParticipant(participant))

	return &model.CreateRoomEnemyResponse{CharacterID: enemy.ID}, nil
}

func (d *roomDomain) UploadMap(ctx context.Context, req *model.UploadMapRequest) (*model.UploadMapResponse, error) {
	room, err := d.verifyDM(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	image, err := common.ProcessMap(ctx, d.storage, "image")
	if err != nil {
		return nil, err
	}

	previous := room.BroadcastImageURL
	if err := d.setBroadcastImage(ctx, room, image.URL); err != nil {
		return nil, err
	}

	d.deleteMap(ctx, previous)
	return &model.UploadMapResponse{URL: image.URL}, nil
}

func (d *roomDomain) ClearMap(ctx context.Context, req *model.ClearMapRequest) (*model.ClearMapResponse, error) {
	room, err := d.verifyDM(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	if room.BroadcastImageURL == "" {
		return &model.ClearMapResponse{}, nil
	}

	previous := room.BroadcastImageURL
	if err := d.setBroadcastImage(ctx, room, ""); err != nil {
		return nil, err
	}

	d.deleteMap(ctx, previous)
	return &model.ClearMapResponse{}, nil
}

// deleteMap removes a replaced map image. The room no longer points at it, so
// a failure only leaves an orphan object.
func (d *roomDomain) deleteMap(ctx context.Context, url string) {
	if url == "" {
		return
	}

	if err := d.storage.Delete(ctx, xcontext.Configs(ctx).File.MapBucket, url); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot delete map image: %v", err)
	}
}

func (d *roomDomain) setBroadcastImage(ctx context.Context, room *entity.Room, url string) error {
	if err := d.roomRepo.UpdateBroadcastImage(ctx, room.ID, url); err != nil {
		if isRecordNotFound(err) {
			return errorx.New(errorx.NotFound, "Not found room")
		}

		xcontext.Logger(ctx).Errorf("Cannot update broadcast image: %v", err)
		return errorx.Unknown
	}

	updated := *room
	updated.BroadcastImageURL = url
	d.emitter.Update(ctx, model.TableRooms, model.ConvertRoom(room), model.ConvertRoom(&updated))
	return nil
}

func (d *roomDomain) getByCode(ctx context.Context, code string) (*entity.Room, error) {
	code = common.NormalizeCode(code)
	if code == "" {
		return nil, errorx.New(errorx.BadRequest, "Room code is required")
	}

	room, err := d.roomRepo.GetByCode(ctx, code)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found room %s", code)
		}

		xcontext.Logger(ctx).Errorf("Cannot get room by code: %v", err)
		return nil, errorx.Unknown
	}

	return room, nil
}

func (d *roomDomain) isDM(ctx context.Context, room *entity.Room) (bool, error) {
	if room.DMID == xcontext.RequestUserID(ctx) {
		return true, nil
	}

	return isAdmin(ctx, d.userRepo)
}

func (d *roomDomain) verifyDM(ctx context.Context, roomID string) (*entity.Room, error) {
	room, err := getRoom(ctx, d.roomRepo, roomID)
	if err != nil {
		return nil, err
	}

	isDM, err := d.isDM(ctx, room)
	if err != nil {
		return nil, err
	}

	if !isDM {
		return nil, errorx.New(errorx.PermissionDenied, "Only the DM can manage this room")
	}

	return room, nil
}

// author names the requester in room logs: DM for the room owner, the name
// of their first player character sitting in the room, or a spectator.
func (d *roomDomain) author(ctx context.Context, room *entity.Room) (string, error) {
	userID := xcontext.RequestUserID(ctx)
	if room.DMID == userID {
		return authorDM, nil
	}

	participants, err := d.roomParticipantRepo.GetByRoomAndUser(ctx, room.ID, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get room participants: %v", err)
		return "", errorx.Unknown
	}

	for _, p := range participants {
		if p.Character.ID != "" && !p.Character.IsEnemy {
			return p.Character.Name, nil
		}
	}

	return authorSpectator, nil
}

func (d *roomDomain) participants(ctx context.Context, roomID string, isDM bool) ([]model.RoomParticipant, error) {
	participants, err := d.roomParticipantRepo.GetByRoomID(ctx, roomID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get room participants: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.RoomParticipant{}
	for i := range participants {
		p := model.ConvertRoomParticipant(&participants[i])
		if p.Character != nil {
			c := convertCharacterForViewer(&participants[i].Character, isDM)
			p.Character = &c
		}
		result = append(result, p)
	}

	return result, nil
}

func (d *roomDomain) latestLogs(ctx context.Context, roomID string, limit int) ([]model.RoomLog, error) {
	if limit <= 0 {
		limit = xcontext.Configs(ctx).Room.LogLimit
	}

	if limit <= 0 {
		limit = defaultLogLimit
	}

	if maxLimit := xcontext.Configs(ctx).ApiServer.MaxLimit; maxLimit > 0 {
		limit = mathUtil.MinInt(limit, maxLimit)
	}

	logs, err := d.roomLogRepo.GetLatest(ctx, roomID, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get room logs: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.RoomLog{}
	for i := range logs {
		result = append(result, model.ConvertRoomLog(&logs[i]))
	}

	return result, nil
}
