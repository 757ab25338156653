package entity

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/tavern-lab/backend/pkg/enum"
)

const (
	StatStrength     = "str"
	StatDexterity    = "dex"
	StatConstitution = "con"
	StatIntelligence = "int"
	StatWisdom       = "wis"
	StatCharisma     = "cha"
)

var StatKeys = []string{
	StatStrength, StatDexterity, StatConstitution,
	StatIntelligence, StatWisdom, StatCharisma,
}

type AbilityScores struct {
	Str int `json:"str"`
	Dex int `json:"dex"`
	Con int `json:"con"`
	Int int `json:"int"`
	Wis int `json:"wis"`
	Cha int `json:"cha"`
}

func DefaultAbilityScores() AbilityScores {
	return AbilityScores{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10}
}

// Get returns the score of a stat key (str, dex, ...).
func (s AbilityScores) Get(key string) (int, bool) {
	switch key {
	case StatStrength:
		return s.Str, true
	case StatDexterity:
		return s.Dex, true
	case StatConstitution:
		return s.Con, true
	case StatIntelligence:
		return s.Int, true
	case StatWisdom:
		return s.Wis, true
	case StatCharisma:
		return s.Cha, true
	}

	return 0, false
}

func (s *AbilityScores) Set(key string, value int) bool {
	switch key {
	case StatStrength:
		s.Str = value
	case StatDexterity:
		s.Dex = value
	case StatConstitution:
		s.Con = value
	case StatIntelligence:
		s.Int = value
	case StatWisdom:
		s.Wis = value
	case StatCharisma:
		s.Cha = value
	default:
		return false
	}

	return true
}

func (s *AbilityScores) Scan(src any) error {
	ok, err := scanJSON(src, s)
	if err == nil && !ok {
		*s = DefaultAbilityScores()
	}
	return err
}

func (s AbilityScores) Value() (driver.Value, error) {
	return json.Marshal(s)
}

type AbilityType string

var (
	AbilityAction   = enum.New(AbilityType("action"))
	AbilityBonus    = enum.New(AbilityType("bonus"))
	AbilityReaction = enum.New(AbilityType("reaction"))
	AbilityPassive  = enum.New(AbilityType("passive"))
	AbilitySpell    = enum.New(AbilityType("spell"))
)

type Ability struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        AbilityType `json:"type"`
}

type Character struct {
	Base
	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Name       string
	Race       string
	Class      string
	Background string
	Alignment  string
	Level      int
	Experience int

	HPCurrent  int `gorm:"column:hp_current"`
	HPMax      int `gorm:"column:hp_max"`
	HPTemp     int `gorm:"column:hp_temp"`
	ArmorClass int
	TempAC     int `gorm:"column:temp_ac"`
	Speed      string
	Initiative int

	Stats        AbilityScores
	Skills       Array[string]
	SavingThrows Array[string]
	Abilities    Array[Ability]

	Bio      string
	ImageURL string
	IsEnemy  bool
}
