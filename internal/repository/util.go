package repository

import (
	"errors"

	"gorm.io/gorm"
)

// updateOne checks that a single row was touched by tx.
func updateOne(tx *gorm.DB) error {
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
