// Package seed loads catalog, banquet and lunch fixtures from YAML.
//
// Apply is idempotent: rows are matched by their natural key (category name,
// product title within a category, banquet title, lunch date) and existing
// ones are left alone.
package seed

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/models"
)

type Fixture struct {
	Categories []Category `yaml:"categories"`
	Banquets   []Banquet  `yaml:"banquet_menus"`
	Lunches    []Lunch    `yaml:"lunches"`
}

type Category struct {
	Name     string    `yaml:"name"`
	Order    uint      `yaml:"order"`
	Products []Product `yaml:"products"`
}

type Product struct {
	Title       string  `yaml:"title"`
	Description string  `yaml:"description"`
	Price       int64   `yaml:"price"`
	Weight      string  `yaml:"weight"`
	Image       *string `yaml:"image"`
	IsPopular   bool    `yaml:"is_popular"`
}

type Banquet struct {
	Title          string                `yaml:"title"`
	Description    string                `yaml:"description"`
	Category       string                `yaml:"category"`
	PricePerPerson *int64                `yaml:"price_per_person"`
	CoverImage     string                `yaml:"cover_image"`
	LayoutType     string                `yaml:"layout_type"`
	ContentImage   *string               `yaml:"content_image"`
	Items          []models.BanquetGroup `yaml:"items"`
	IsActive       *bool                 `yaml:"is_active"`
	Order          int                   `yaml:"order"`
}

type Lunch struct {
	Date           string `yaml:"date"`
	Salads         string `yaml:"salads"`
	Soups          string `yaml:"soups"`
	HotDishes      string `yaml:"hot_dishes"`
	Garnishes      string `yaml:"garnishes"`
	Price3Course   *int   `yaml:"price_3_course"`
	PriceSaladSoup *int   `yaml:"price_salad_soup"`
	PriceSaladHot  *int   `yaml:"price_salad_hot"`
	PriceSoupHot   *int   `yaml:"price_soup_hot"`
}

// Result counts the rows Apply created.
type Result struct {
	Categories int
	Products   int
	Banquets   int
	Lunches    int
}

func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Fixture, error) {
	fx := &Fixture{}
	if err := yaml.Unmarshal(data, fx); err != nil {
		return nil, fmt.Errorf("parse seed fixture: %w", err)
	}
	return fx, nil
}

// Apply writes fx in a single transaction.
func Apply(conn *gorm.DB, fx *Fixture) (Result, error) {
	var res Result
	err := conn.Transaction(func(tx *gorm.DB) error {
		for _, c := range fx.Categories {
			if err := applyCategory(tx, c, &res); err != nil {
				return err
			}
		}
		for _, b := range fx.Banquets {
			if err := applyBanquet(tx, b, &res); err != nil {
				return err
			}
		}
		for _, l := range fx.Lunches {
			if err := applyLunch(tx, l, &res); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	slog.Info("seed applied",
		"categories", res.Categories, "products", res.Products,
		"banquet_menus", res.Banquets, "lunches", res.Lunches)
	return res, nil
}

func applyCategory(tx *gorm.DB, c Category, res *Result) error {
	var category models.Category
	err := tx.Where("name = ?", c.Name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.Category{Name: c.Name, Order: c.Order}
		if err := tx.Create(&category).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", c.Name, err)
		}
		res.Categories++
	} else if err != nil {
		return err
	}

	for _, p := range c.Products {
		var count int64
		if err := tx.Model(&models.Product{}).
			Where("category_id = ? AND title = ?", category.ID, p.Title).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if p.Price < 0 {
			return fmt.Errorf("seed product %q: price must not be negative", p.Title)
		}

		product := models.Product{
			CategoryID:  category.ID,
			Title:       p.Title,
			Description: p.Description,
			Price:       decimal.NewFromInt(p.Price),
			Weight:      p.Weight,
			Image:       p.Image,
			IsPopular:   p.IsPopular,
		}
		if err := tx.Create(&product).Error; err != nil {
			return fmt.Errorf("seed product %q: %w", p.Title, err)
		}
		res.Products++
	}
	return nil
}

func applyBanquet(tx *gorm.DB, b Banquet, res *Result) error {
	var count int64
	if err := tx.Model(&models.BanquetMenu{}).Where("title = ?", b.Title).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	menu := models.NewBanquetMenu(b.Title)
	menu.Description = b.Description
	menu.Category = models.BanquetCategory(b.Category)
	menu.CoverImage = b.CoverImage
	menu.LayoutType = models.BanquetLayout(b.LayoutType)
	menu.ContentImage = b.ContentImage
	menu.Items = b.Items
	menu.Order = b.Order
	if b.IsActive != nil {
		menu.IsActive = *b.IsActive
	}
	if b.PricePerPerson != nil {
		menu.PricePerPerson = decimal.NewNullDecimal(decimal.NewFromInt(*b.PricePerPerson))
	}
	if err := menu.Validate(); err != nil {
		return fmt.Errorf("seed banquet menu %q: %w", b.Title, err)
	}
	if err := tx.Create(&menu).Error; err != nil {
		return fmt.Errorf("seed banquet menu %q: %w", b.Title, err)
	}
	res.Banquets++
	return nil
}

func applyLunch(tx *gorm.DB, l Lunch, res *Result) error {
	date, err := models.ParseDate(l.Date)
	if err != nil {
		return fmt.Errorf("seed lunch: %w", err)
	}

	var count int64
	if err := tx.Model(&models.BusinessLunch{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	lunch := models.BusinessLunch{
		Date:      date,
		Salads:    l.Salads,
		Soups:     l.Soups,
		HotDishes: l.HotDishes,
		Garnishes: l.Garnishes,
	}
	lunch.SetPrices(models.LunchPrices{
		Price3Course:   l.Price3Course,
		PriceSaladSoup: l.PriceSaladSoup,
		PriceSaladHot:  l.PriceSaladHot,
		PriceSoupHot:   l.PriceSoupHot,
	})
	if err := tx.Create(&lunch).Error; err != nil {
		return fmt.Errorf("seed lunch %s: %w", l.Date, err)
	}
	res.Lunches++
	return nil
}
