package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrAddressNotFound covers both unknown ids and addresses owned by someone
// else, so callers cannot probe for other users' rows.
var ErrAddressNotFound = errors.New("address not found")

// AddAddress stores a new address. The first address of a user becomes the
// default.
func AddAddress(db *gorm.DB, userID uint, address string) (*UserAddress, error) {
	var created UserAddress
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserAddress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}

		created = UserAddress{
			UserID:    userID,
			Address:   address,
			IsDefault: count == 0,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteAddress removes an address owned by userID. If it was the default,
// the oldest remaining address is promoted.
func DeleteAddress(db *gorm.DB, userID, addressID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		address, err := ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := tx.Delete(address).Error; err != nil {
			return err
		}
		if !address.IsDefault {
			return nil
		}

		var next UserAddress
		err = tx.Where("user_id = ?", userID).Order("created_at, id").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

// SetDefaultAddress makes addressID the single default of userID.
func SetDefaultAddress(db *gorm.DB, userID, addressID uint) (*UserAddress, error) {
	var address *UserAddress
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		address, err = ownedAddress(tx, userID, addressID)
		if err != nil {
			return err
		}
		if err := tx.Model(&UserAddress{}).
			Where("user_id = ? AND id <> ?", userID, addressID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		address.IsDefault = true
		return tx.Model(address).Update("is_default", true).Error
	})
	if err != nil {
		return nil, err
	}
	return address, nil
}

func ListAddresses(db *gorm.DB, userID uint) ([]UserAddress, error) {
	var addresses []UserAddress
	if err := db.Where("user_id = ?", userID).Order("created_at, id").Find(&addresses).Error; err != nil {
		return nil, err
	}
	return addresses, nil
}

func ownedAddress(tx *gorm.DB, userID, addressID uint) (*UserAddress, error) {
	var address UserAddress
	if err := tx.Where("id = ? AND user_id = ?", addressID, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	return &address, nil
}
