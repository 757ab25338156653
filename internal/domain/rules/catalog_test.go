package rules

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

func Test_DefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()
	require.Len(t, catalog.Classes, 12)
	require.Len(t, catalog.Races, 10)
	require.Len(t, catalog.Skills, 18)

	barbarian, ok := catalog.Class("barbarian")
	require.True(t, ok)
	require.Equal(t, 12, barbarian.HitDie)
	require.Equal(t, []string{"dex", "con"}, barbarian.ArmorFormula)

	statKeys := []string{"str", "dex", "con", "int", "wis", "cha"}
	for _, skill := range catalog.Skills {
		require.True(t, slices.Contains(statKeys, skill.Stat), skill.ID)
	}
}

func Test_ParseCatalog_Invalid(t *testing.T) {
	_, err := ParseCatalog("[[classes]\nid=")
	require.Error(t, err)
}

func Test_FixedDice(t *testing.T) {
	dice := NewFixedDice(3, 25)
	require.Equal(t, 3, dice.Roll(20))
	require.Equal(t, 20, dice.Roll(20))
	require.Equal(t, 3, dice.Roll(20))

	require.True(t, ValidDice(100))
	require.False(t, ValidDice(7))

	random := NewRandomDice()
	for i := 0; i < 100; i++ {
		v := random.Roll(6)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 6)
	}
}
