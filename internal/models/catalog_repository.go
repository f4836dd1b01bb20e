package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrCategoryNotFound is returned when a category is not found.
var ErrCategoryNotFound = errors.New("category not found")

// byOrderColumn sorts by the quoted "order" column, which is a reserved word.
var byOrderColumn = clause.OrderBy{Columns: []clause.OrderByColumn{
	{Column: clause.Column{Name: "order"}},
	{Column: clause.Column{Name: "id"}},
}}

// ListMenu returns categories by their sort order and every product.
func ListMenu(db *gorm.DB) ([]Category, []Product, error) {
	var categories []Category
	if err := db.Clauses(byOrderColumn).Find(&categories).Error; err != nil {
		return nil, nil, err
	}

	var products []Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return nil, nil, err
	}
	return categories, products, nil
}

// DeleteCategory removes a category together with its products. The cascade
// is done here rather than left to the driver, so it holds on engines that
// do not enforce foreign keys.
func DeleteCategory(db *gorm.DB, id uint) (int64, error) {
	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		var category Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		res := tx.Where("category_id = ?", id).Delete(&Product{})
		if res.Error != nil {
			return fmt.Errorf("delete products of category %d: %w", id, res.Error)
		}
		removed = res.RowsAffected

		return tx.Delete(&category).Error
	})
	return removed, err
}

// ListActiveBanquetMenus returns the active cards in display order.
func ListActiveBanquetMenus(db *gorm.DB) ([]BanquetMenu, error) {
	var menus []BanquetMenu
	if err := db.Where("is_active = ?", true).Clauses(byOrderColumn).Find(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}
