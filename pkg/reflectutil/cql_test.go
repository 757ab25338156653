package reflectutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetColumnNames(t *testing.T) {
	type test struct {
		Name                  string
		LongNameWithCamelCase string
		Somethingwrong        string
		RoomID                string
		Renamed               string `db:"author"`
		Skipped               string `db:"-"`
	}
	got := GetColumnNames(&test{})

	want := []string{"name", "long_name_with_camel_case", "somethingwrong", "room_id", "author"}

	sort.Strings(want)
	require.Equal(t, want, got)
}

func TestToSnakeCase(t *testing.T) {
	require.Equal(t, "broadcast_image_url", ToSnakeCase("BroadcastImageURL"))
	require.Equal(t, "created_at", ToSnakeCase("CreatedAt"))
}
