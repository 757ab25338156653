package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type Base struct {
	ID        string         `gorm:"primarykey"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// SnowFlakeBase is the base of append-only rows ordered by their id.
type SnowFlakeBase struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time
}

// scanJSON decodes a JSON column. It reports false for a NULL column.
func scanJSON(src any, dst any) (bool, error) {
	switch t := src.(type) {
	case string:
		return true, json.Unmarshal([]byte(t), dst)
	case []byte:
		return true, json.Unmarshal(t, dst)
	case nil:
		return false, nil
	}

	return false, fmt.Errorf("cannot scan invalid data type %T", src)
}

// Array is stored as a JSON list. A nil Array is written as [].
type Array[T any] []T

func (a *Array[T]) Scan(src any) error {
	ok, err := scanJSON(src, a)
	if err == nil && !ok {
		*a = nil
	}
	return err
}

func (a Array[T]) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]T{})
	}
	return json.Marshal([]T(a))
}
