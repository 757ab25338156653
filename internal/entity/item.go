package entity

import "github.com/tavern-lab/backend/pkg/enum"

type ItemType string

var (
	ItemWeapon   = enum.New(ItemType("weapon"))
	ItemArmor    = enum.New(ItemType("armor"))
	ItemPotion   = enum.New(ItemType("potion"))
	ItemGear     = enum.New(ItemType("gear"))
	ItemTreasure = enum.New(ItemType("treasure"))
	ItemGeneral  = enum.New(ItemType("general"))
)

type Item struct {
	Base
	CharacterID string    `gorm:"index"`
	Character   Character `gorm:"foreignKey:CharacterID"`

	Name        string
	Description string
	Type        ItemType
	Quantity    int
	Weight      float64
	Equipped    bool
	IsOfficial  bool
}
