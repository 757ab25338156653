package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/model"
)

func Test_catalogDomain_GetCatalog(t *testing.T) {
	catalog := rules.DefaultCatalog()
	d := NewCatalogDomain(catalog)

	resp, err := d.GetCatalog(context.Background(), &model.GetCatalogRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Classes, len(catalog.Classes))
	require.Len(t, resp.Races, len(catalog.Races))
	require.Len(t, resp.Skills, len(catalog.Skills))

	var barbarian *model.Class
	for i := range resp.Classes {
		if resp.Classes[i].ID == "barbarian" {
			barbarian = &resp.Classes[i]
		}
	}
	require.NotNil(t, barbarian)
	require.Equal(t, 12, barbarian.HitDie)
}
