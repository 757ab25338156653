package changefeed

import (
	"context"

	"github.com/tavern-lab/backend/internal/model"
	"github.com/tavern-lab/backend/pkg/xcontext"
)

// RowPolicy rewrites an event for the user of a session. It returns the event
// itself when nothing must be hidden.
type RowPolicy interface {
	View(ctx context.Context, userID string, event *model.ChangeEvent) *model.ChangeEvent
}

// DMChecker tells whether a user runs the game a row belongs to.
type DMChecker interface {
	IsCharacterDM(ctx context.Context, userID, characterID string) (bool, error)
	IsCampaignDM(ctx context.Context, userID, campaignID string) (bool, error)
}

type openPolicy struct{}

func (openPolicy) View(_ context.Context, _ string, event *model.ChangeEvent) *model.ChangeEvent {
	return event
}

type hpPolicy struct {
	checker DMChecker
}

// NewHPPolicy hides the hit points of enemy characters and encounter enemies
// from everybody but their DM. Encounter enemies keep hp_percent.
func NewHPPolicy(checker DMChecker) *hpPolicy {
	return &hpPolicy{checker: checker}
}

func (p *hpPolicy) View(ctx context.Context, userID string, event *model.ChangeEvent) *model.ChangeEvent {
	var hidden []string
	var isDM func() (bool, error)

	row := event.Row()
	switch event.Table {
	case model.TableCharacters:
		if !isEnemy(event.New) && !isEnemy(event.Old) {
			return event
		}

		hidden = []string{"hp_current", "hp_max", "hp_temp", "derived"}
		isDM = func() (bool, error) {
			return p.checker.IsCharacterDM(ctx, userID, stringField(row, "id"))
		}

	case model.TableEncounterEnemies:
		hidden = []string{"hp_current", "hp_max"}
		isDM = func() (bool, error) {
			return p.checker.IsCampaignDM(ctx, userID, stringField(row, "campaign_id"))
		}

	default:
		return event
	}

	ok, err := isDM()
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot check dm of %s row for user %s: %v", event.Table, userID, err)
	}

	if ok && err == nil {
		return event
	}

	masked := *event
	masked.New = maskRow(event.New, hidden, event.Table == model.TableCharacters)
	masked.Old = maskRow(event.Old, hidden, event.Table == model.TableCharacters)
	return &masked
}

func maskRow(row map[string]any, hidden []string, flag bool) map[string]any {
	if row == nil {
		return nil
	}

	result := make(map[string]any, len(row)+1)
	for k, v := range row {
		result[k] = v
	}

	for _, k := range hidden {
		if _, ok := result[k]; !ok {
			continue
		}

		if k == "derived" {
			delete(result, k)
		} else {
			result[k] = 0
		}
	}

	if flag {
		result["hp_hidden"] = true
	}

	return result
}

func isEnemy(row map[string]any) bool {
	v, _ := row["is_enemy"].(bool)
	return v
}

func stringField(row map[string]any, key string) string {
	v, _ := row[key].(string)
	return v
}
