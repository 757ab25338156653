package authenticator_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/pkg/authenticator"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	hasher := authenticator.NewBcryptHasher(bcrypt.MinCost)

	hashed, err := hasher.Hash("dragon")
	require.NoError(t, err)
	require.NotEqual(t, "dragon", hashed)

	require.NoError(t, hasher.Compare(hashed, "dragon"))
	require.Error(t, hasher.Compare(hashed, "kobold"))
}
