package errorx_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/pkg/errorx"
)

func TestNew(t *testing.T) {
	err := errorx.New(errorx.NotFound, "Not found room %s", "AB-12")
	require.Equal(t, "Not found room AB-12", err.Error())
	require.Equal(t, http.StatusNotFound, err.HTTPStatus())
	require.Equal(t, http.StatusInternalServerError, errorx.Unknown.HTTPStatus())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errorx.New(errorx.AlreadyExists, "Already joined"))
	require.True(t, errorx.Is(err, errorx.AlreadyExists))
	require.False(t, errorx.Is(err, errorx.NotFound))
	require.False(t, errorx.Is(fmt.Errorf("plain"), errorx.NotFound))
}
