package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/entity"
)

func Test_Modifier(t *testing.T) {
	testCases := []struct {
		score     int
		modifier  int
		formatted string
	}{
		{score: 1, modifier: -5, formatted: "-5"},
		{score: 3, modifier: -4, formatted: "-4"},
		{score: 8, modifier: -1, formatted: "-1"},
		{score: 9, modifier: -1, formatted: "-1"},
		{score: 10, modifier: 0, formatted: "+0"},
		{score: 11, modifier: 0, formatted: "+0"},
		{score: 14, modifier: 2, formatted: "+2"},
		{score: 15, modifier: 2, formatted: "+2"},
		{score: 20, modifier: 5, formatted: "+5"},
		{score: 30, modifier: 10, formatted: "+10"},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.modifier, Modifier(tc.score), "score %d", tc.score)
		require.Equal(t, tc.formatted, FormatScoreModifier(tc.score), "score %d", tc.score)
	}
}

func Test_Modifier_AllScores(t *testing.T) {
	// Every score between 1 and 30 maps to floor((s-10)/2).
	for score := 1; score <= 30; score++ {
		expected := (score - 10) / 2
		if (score-10)%2 != 0 && score < 10 {
			expected--
		}
		require.Equal(t, expected, Modifier(score), "score %d", score)
	}
}

func Test_ArmorClass(t *testing.T) {
	catalog := DefaultCatalog()
	stats := entity.AbilityScores{Str: 10, Dex: 14, Con: 16, Int: 10, Wis: 12, Cha: 8}

	require.Equal(t, 12, ArmorClass(catalog, "rogue", stats))
	require.Equal(t, 15, ArmorClass(catalog, "barbarian", stats))
	require.Equal(t, 13, ArmorClass(catalog, "Monk", stats))
	require.Equal(t, 12, ArmorClass(catalog, "unknown", stats))
}

func Test_ClampHP(t *testing.T) {
	testCases := []struct {
		current int
		max     int
		delta   int
		result  int
	}{
		{current: 10, max: 20, delta: 5, result: 15},
		{current: 10, max: 20, delta: 50, result: 20},
		{current: 10, max: 20, delta: -50, result: 0},
		{current: 0, max: 20, delta: 0, result: 0},
		{current: 5, max: 0, delta: 3, result: 0},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.result, ClampHP(tc.current, tc.max, tc.delta))
	}

	// Any sequence of deltas keeps the value inside [0, max].
	hp := 7
	for _, delta := range []int{-3, 100, -1000, 12, 1, -2, 40} {
		hp = ClampHP(hp, 12, delta)
		require.GreaterOrEqual(t, hp, 0)
		require.LessOrEqual(t, hp, 12)
	}
}

func Test_HPPercent(t *testing.T) {
	require.Equal(t, float64(50), HPPercent(10, 20))
	require.Equal(t, float64(100), HPPercent(30, 20))
	require.Equal(t, float64(0), HPPercent(-5, 20))
	require.Equal(t, float64(100), HPPercent(3, 0))
	require.Equal(t, float64(0), HPPercent(0, 0))
}

func Test_ProficiencyBonus(t *testing.T) {
	require.Equal(t, 2, ProficiencyBonus(1))
	require.Equal(t, 2, ProficiencyBonus(4))
	require.Equal(t, 3, ProficiencyBonus(5))
	require.Equal(t, 4, ProficiencyBonus(12))
	require.Equal(t, 6, ProficiencyBonus(20))
	require.Equal(t, 6, ProficiencyBonus(99))
	require.Equal(t, 2, ProficiencyBonus(0))
}

func Test_SkillBonus(t *testing.T) {
	catalog := DefaultCatalog()
	stats := entity.AbilityScores{Str: 10, Dex: 16, Con: 10, Int: 10, Wis: 8, Cha: 10}

	require.Equal(t, 3, SkillBonus(catalog, "stealth", stats, 1, false))
	require.Equal(t, 5, SkillBonus(catalog, "stealth", stats, 1, true))
	require.Equal(t, -1, SkillBonus(catalog, "perception", stats, 1, false))
	require.Equal(t, 0, SkillBonus(catalog, "unknown", stats, 1, true))
}
