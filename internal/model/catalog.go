package model

type Class struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	HitDie       int      `json:"hit_die"`
	PrimaryStats []string `json:"primary_stats"`
	ArmorFormula []string `json:"armor_formula,omitempty"`
}

type Race struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Speed       string         `json:"speed"`
	Bonuses     map[string]int `json:"bonuses,omitempty"`
}

type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Stat string `json:"stat"`
}

type GetCatalogRequest struct{}

type GetCatalogResponse struct {
	Classes []Class `json:"classes"`
	Races   []Race  `json:"races"`
	Skills  []Skill `json:"skills"`
}
