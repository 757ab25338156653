package rules

import (
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/internal/model"
	"golang.org/x/exp/slices"
)

func Derive(catalog *Catalog, c *entity.Character) *model.DerivedStats {
	modifiers := make(map[string]string, len(entity.StatKeys))
	for _, key := range entity.StatKeys {
		score, _ := c.Stats.Get(key)
		modifiers[key] = FormatScoreModifier(score)
	}

	skills := make(map[string]int, len(catalog.Skills))
	for _, skill := range catalog.Skills {
		proficient := slices.Contains([]string(c.Skills), skill.ID)
		skills[skill.ID] = SkillBonus(catalog, skill.ID, c.Stats, c.Level, proficient)
	}

	return &model.DerivedStats{
		Modifiers:        modifiers,
		ProficiencyBonus: ProficiencyBonus(c.Level),
		Skills:           skills,
		EffectiveAC:      c.ArmorClass + c.TempAC,
		HPPercent:        HPPercent(c.HPCurrent, c.HPMax),
		TempHPPercent:    HPPercent(c.HPTemp, c.HPMax),
	}
}
