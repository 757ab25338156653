package domain

import (
	"context"
	"errors"
	"time"

	"github.com/tavern-lab/backend/internal/domain/changefeed"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/internal/repository"
	"github.com/tavern-lab/backend/pkg/errorx"
	"github.com/tavern-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	authorDM        = "DM"
	authorSystem    = "SYSTEM"
	authorSpectator = "Spectator"
)

// roomLogger appends room logs and announces them on the change feed.
type roomLogger struct {
	roomLogRepo repository.RoomLogRepository
	emitter     changefeed.Emitter
}

func newRoomLogger(roomLogRepo repository.RoomLogRepository, emitter changefeed.Emitter) *roomLogger {
	return &roomLogger{roomLogRepo: roomLogRepo, emitter: emitter}
}

// Write stores a log without announcing it, for callers that run inside a
// transaction and announce after commit.
func (l *roomLogger) Write(ctx context.Context, roomID, author, content string) (*entity.RoomLog, error) {
	log := &entity.RoomLog{
		SnowFlakeBase: entity.SnowFlakeBase{
			ID:        xcontext.SnowFlake(ctx).Generate().Int64(),
			CreatedAt: time.Now(),
		},
		RoomID:  roomID,
		Author:  author,
		Content: content,
	}

	if err := l.roomLogRepo.Create(ctx, log); err != nil {
		return nil, err
	}

	return log, nil
}

func (l *roomLogger) Announce(ctx context.Context, log *entity.RoomLog) {
	l.emitter.Insert(ctx, model.TableRoomLogs, model.ConvertRoomLog(log))
}

func (l *roomLogger) Append(ctx context.Context, roomID, author, content string) (*entity.RoomLog, error) {
	log, err := l.Write(ctx, roomID, author, content)
	if err != nil {
		return nil, err
	}

	l.Announce(ctx, log)
	return log, nil
}

// convertCharacterForViewer hides the hit points of enemies from players.
func convertCharacterForViewer(c *entity.Character, viewerIsDM bool) model.Character {
	result := model.ConvertCharacter(c)
	if c.IsEnemy && !viewerIsDM {
		result.HPCurrent = 0
		result.HPMax = 0
		result.HPTemp = 0
		result.HPHidden = true
	}

	return result
}

func convertCharacterWithDerived(catalog *rules.Catalog, c *entity.Character) model.Character {
	result := model.ConvertCharacter(c)
	result.Derived = rules.Derive(catalog, c)
	return result
}

func convertEncounterEnemy(e *entity.EncounterEnemy, viewerIsDM bool) model.EncounterEnemy {
	result := model.ConvertEncounterEnemy(e)
	result.HPPercent = rules.HPPercent(e.HPCurrent, e.HPMax)
	if !viewerIsDM {
		result.HPCurrent = 0
		result.HPMax = 0
	}

	return result
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func getRoom(ctx context.Context, roomRepo repository.RoomRepository, id string) (*entity.Room, error) {
	room, err := roomRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found room")
		}

		xcontext.Logger(ctx).Errorf("Cannot get room: %v", err)
		return nil, errorx.Unknown
	}

	return room, nil
}

func getCampaign(ctx context.Context, campaignRepo repository.CampaignRepository, id string) (*entity.Campaign, error) {
	campaign, err := campaignRepo.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, errorx.New(errorx.NotFound, "Not found campaign")
		}

		xcontext.Logger(ctx).Errorf("Cannot get campaign: %v", err)
		return nil, errorx.Unknown
	}

	return campaign, nil
}

func isAdmin(ctx context.Context, userRepo repository.UserRepository) (bool, error) {
	user, err := userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		if isRecordNotFound(err) {
			return false, errorx.New(errorx.Unauthenticated, "User is not valid")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return false, errorx.Unknown
	}

	return user.Role == entity.RoleAdmin, nil
}

func commit(ctx context.Context) error {
	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit transaction: %v", err)
		return errorx.Unknown
	}

	return nil
}
