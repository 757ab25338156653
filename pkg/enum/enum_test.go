package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	type Color string

	red := New(Color("red"))
	blue := New(Color("blue"))
	New(Color("red"))
	require.Equal(t, Color("red"), red)

	v, err := ToEnum[Color](" RED ")
	require.NoError(t, err)
	require.Equal(t, red, v)

	_, err = ToEnum[Color]("green")
	require.Error(t, err)

	require.Equal(t, []Color{red, blue}, Values[Color]())
}

func TestUnknownType(t *testing.T) {
	type Shape string

	_, err := ToEnum[Shape]("circle")
	require.Error(t, err)
	require.Nil(t, Values[Shape]())
}
