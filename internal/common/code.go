package common

import (
	"fmt"
	"strings"

	"github.com/tavern-lab/backend/pkg/crypto"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinCode returns a 4 character upper-case campaign join code.
func GenerateJoinCode() string {
	return crypto.RandomCode(codeAlphabet, 4)
}

// GenerateRoomCode returns a code of the form XX-NN with NN in [0, 98].
func GenerateRoomCode() string {
	return fmt.Sprintf("%s-%d", crypto.RandomCode(codeAlphabet, 2), crypto.RandIntn(99))
}

// NormalizeCode upper-cases a code typed by a user.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
