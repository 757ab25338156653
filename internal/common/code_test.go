package common

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_GenerateCodes(t *testing.T) {
	roomCode := regexp.MustCompile(`^[A-Z0-9]{2}-([0-9]|[1-9][0-9])$`)
	joinCode := regexp.MustCompile(`^[A-Z0-9]{4}$`)

	for i := 0; i < 200; i++ {
		require.Regexp(t, roomCode, GenerateRoomCode())
		require.Regexp(t, joinCode, GenerateJoinCode())
	}

	require.Equal(t, "AB-12", NormalizeCode(" ab-12 "))
}
