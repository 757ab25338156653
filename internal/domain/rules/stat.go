package rules

import (
	"fmt"

	mathUtil "github.com/pkg/math"
	"github.com/tavern-lab/backend/internal/entity"
	"github.com/tavern-lab/backend/pkg/numberutil"
)

const (
	MinLevel = 1
	MaxLevel = 20

	BaseArmorClass = 10
	DefaultScore   = 10
)

// Modifier returns floor((score-10)/2).
func Modifier(score int) int {
	d := score - DefaultScore
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

func FormatModifier(modifier int) string {
	if modifier >= 0 {
		return fmt.Sprintf("+%d", modifier)
	}
	return fmt.Sprintf("%d", modifier)
}

func FormatScoreModifier(score int) string {
	return FormatModifier(Modifier(score))
}

// ArmorClass computes the unarmored armor class of a class. Classes without
// a formula in the catalog get 10 + dex modifier.
func ArmorClass(catalog *Catalog, class string, stats entity.AbilityScores) int {
	formula := []string{entity.StatDexterity}
	if c, ok := catalog.Class(class); ok && len(c.ArmorFormula) > 0 {
		formula = c.ArmorFormula
	}

	ac := BaseArmorClass
	for _, key := range formula {
		score, ok := stats.Get(key)
		if !ok {
			continue
		}
		ac += Modifier(score)
	}

	return ac
}

// ClampHP applies delta to current, keeping the result in [0, max].
func ClampHP(current, max, delta int) int {
	return numberutil.Clamp(current+delta, 0, mathUtil.MaxInt(max, 0))
}

// HPPercent treats max as at least 1 and clamps the result to [0, 100].
func HPPercent(current, max int) float64 {
	denominator := mathUtil.MaxInt(max, 1)
	percent := float64(current) / float64(denominator) * 100
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func ClampLevel(level int) int {
	return numberutil.Clamp(level, MinLevel, MaxLevel)
}

func ProficiencyBonus(level int) int {
	return 2 + (ClampLevel(level)-1)/4
}

// SkillBonus is the stat modifier of the skill, plus the proficiency bonus
// when the character is proficient in it.
func SkillBonus(catalog *Catalog, skillID string, stats entity.AbilityScores, level int, proficient bool) int {
	skill, ok := catalog.Skill(skillID)
	if !ok {
		return 0
	}

	score, _ := stats.Get(skill.Stat)
	bonus := Modifier(score)
	if proficient {
		bonus += ProficiencyBonus(level)
	}

	return bonus
}
