package rules

import (
	_ "embed"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var rawCatalog string

type Class struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	HitDie       int      `toml:"hit_die"`
	PrimaryStats []string `toml:"primary_stats"`

	// ArmorFormula lists the stats whose modifiers are added to 10 when the
	// character wears no armor. Empty means dex only.
	ArmorFormula []string `toml:"armor_formula"`
}

type Race struct {
	ID          string         `toml:"id"`
	Name        string         `toml:"name"`
	Description string         `toml:"description"`
	Speed       string         `toml:"speed"`
	Bonuses     map[string]int `toml:"bonuses"`
}

type Skill struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
	Stat string `toml:"stat"`
}

type Catalog struct {
	Classes []Class `toml:"classes"`
	Races   []Race  `toml:"races"`
	Skills  []Skill `toml:"skills"`

	classByID map[string]Class
	raceByID  map[string]Race
	skillByID map[string]Skill
}

func ParseCatalog(data string) (*Catalog, error) {
	c := &Catalog{}
	if _, err := toml.Decode(data, c); err != nil {
		return nil, err
	}

	c.classByID = make(map[string]Class, len(c.Classes))
	for _, class := range c.Classes {
		c.classByID[class.ID] = class
	}

	c.raceByID = make(map[string]Race, len(c.Races))
	for _, race := range c.Races {
		c.raceByID[race.ID] = race
	}

	c.skillByID = make(map[string]Skill, len(c.Skills))
	for _, skill := range c.Skills {
		c.skillByID[skill.ID] = skill
	}

	return c, nil
}

var defaultCatalog = mustParseCatalog(rawCatalog)

func mustParseCatalog(data string) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

// Class looks a class up by id or by its display name, case insensitively.
func (c *Catalog) Class(id string) (Class, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if class, ok := c.classByID[key]; ok {
		return class, true
	}

	for _, class := range c.Classes {
		if strings.EqualFold(class.Name, key) {
			return class, true
		}
	}

	return Class{}, false
}

func (c *Catalog) Skill(id string) (Skill, bool) {
	skill, ok := c.skillByID[id]
	return skill, ok
}

// Race looks a race up by id or by its display name, case insensitively.
func (c *Catalog) Race(id string) (Race, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if race, ok := c.raceByID[key]; ok {
		return race, true
	}

	for _, race := range c.Races {
		if strings.EqualFold(race.Name, key) {
			return race, true
		}
	}

	return Race{}, false
}
