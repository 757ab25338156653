package domain

import (
	"context"

	"github.com/tavern-lab/backend/internal/domain/rules"
	"github.com/tavern-lab/backend/internal/model"
)

type CatalogDomain interface {
	GetCatalog(context.Context, *model.GetCatalogRequest) (*model.GetCatalogResponse, error)
}

type catalogDomain struct {
	catalog *rules.Catalog
}

func NewCatalogDomain(catalog *rules.Catalog) *catalogDomain {
	return &catalogDomain{catalog: catalog}
}

func (d *catalogDomain) GetCatalog(
	ctx context.Context, req *model.GetCatalogRequest,
) (*model.GetCatalogResponse, error) {
	resp := &model.GetCatalogResponse{
		Classes: make([]model.Class, 0, len(d.catalog.Classes)),
		Races:   make([]model.Race, 0, len(d.catalog.Races)),
		Skills:  make([]model.Skill, 0, len(d.catalog.Skills)),
	}

	for _, c := range d.catalog.Classes {
		resp.Classes = append(resp.Classes, model.Class{
			ID:           c.ID,
			Name:         c.Name,
			Description:  c.Description,
			HitDie:       c.HitDie,
			PrimaryStats: c.PrimaryStats,
			ArmorFormula: c.ArmorFormula,
		})
	}

	for _, r := range d.catalog.Races {
		resp.Races = append(resp.Races, model.Race{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Speed:       r.Speed,
			Bonuses:     r.Bonuses,
		})
	}

	for _, s := range d.catalog.Skills {
		resp.Skills = append(resp.Skills, model.Skill{ID: s.ID, Name: s.Name, Stat: s.Stat})
	}

	return resp, nil
}
