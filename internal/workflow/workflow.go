// Package workflow owns the order status machine and the paid transition.
//
// Status moves along new -> kitchen -> delivery -> completed, and any
// non-terminal order may be cancelled. Payment state is orthogonal to status
// and only changes through MarkPaid.
package workflow

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUnknownStatus     = errors.New("unknown order status")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrTerminalStatus    = errors.New("order is already in a terminal status")
	ErrStatusConflict    = errors.New("order status changed concurrently")
)

var next = map[models.OrderStatus][]models.OrderStatus{
	models.StatusNew:      {models.StatusKitchen, models.StatusCancelled},
	models.StatusKitchen:  {models.StatusDelivery, models.StatusCancelled},
	models.StatusDelivery: {models.StatusCompleted, models.StatusCancelled},
}

// Check validates moving from -> to. It reports changed=false for a repeat of
// the current status, which callers treat as a no-op.
func Check(from, to models.OrderStatus) (changed bool, err error) {
	if !to.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if from == to {
		return false, nil
	}
	if from.Terminal() {
		return false, fmt.Errorf("%w: %s -> %s", ErrTerminalStatus, from, to)
	}
	for _, allowed := range next[from] {
		if allowed == to {
			return true, nil
		}
	}
	return false, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

// Transition is the outcome of SetStatus.
type Transition struct {
	Order   models.Order
	From    models.OrderStatus
	Changed bool
}

// SetStatus moves an order to status to. The update is conditional on the
// status observed when reading, so two staff members racing on one order
// cannot both win.
func SetStatus(db *gorm.DB, orderID uint, to models.OrderStatus) (*Transition, error) {
	order, err := load(db, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	changed, err := Check(from, to)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Transition{Order: *order, From: from}, nil
	}

	res := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Update("status", to)
	if res.Error != nil {
		return nil, fmt.Errorf("update order %d status: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: order %d", ErrStatusConflict, orderID)
	}

	order.Status = to
	return &Transition{Order: *order, From: from, Changed: true}, nil
}

// MarkPaid records a settled payment. Only the call that flips is_paid from
// false to true writes payment_id; it reports applied=true exactly once per
// order no matter how many callbacks arrive.
func MarkPaid(db *gorm.DB, orderID uint, paymentID string) (order *models.Order, applied bool, err error) {
	res := db.Model(&models.Order{}).
		Where("id = ? AND is_paid = ?", orderID, false).
		Updates(map[string]any{
			"is_paid":        true,
			"payment_id":     paymentID,
			"payment_method": models.PaymentOnline,
		})
	if res.Error != nil {
		return nil, false, fmt.Errorf("mark order %d paid: %w", orderID, res.Error)
	}

	order, err = load(db, orderID)
	if err != nil {
		return nil, false, err
	}
	return order, res.RowsAffected == 1, nil
}

// Find loads an order or returns ErrOrderNotFound.
func Find(db *gorm.DB, orderID uint) (*models.Order, error) {
	return load(db, orderID)
}

func load(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}
