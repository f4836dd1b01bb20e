package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Fooxyj/dacha/internal/auth"
	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/logger"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/paykeeper"
	"github.com/Fooxyj/dacha/internal/validation"
	"github.com/Fooxyj/dacha/internal/workflow"
)

type OrderLineRequest struct {
	Title    string          `json:"title" binding:"required"`
	Quantity int             `json:"quantity" binding:"min=1"`
	Price    decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	Name          string             `json:"name" binding:"required,max=100"`
	Phone         string             `json:"phone" binding:"required,max=20"`
	Address       string             `json:"address" binding:"required,max=255"`
	Items         []OrderLineRequest `json:"items" binding:"required,min=1,dive"`
	TotalPrice    *decimal.Decimal   `json:"total_price" binding:"required"`
	PaymentMethod string             `json:"payment_method" binding:"omitempty,oneof=cash online transfer"`
}

// validate covers what binding tags cannot: blank strings and negative money.
func (r *CreateOrderRequest) validate() validation.Errors {
	errs := validation.Errors{}
	for field, value := range map[string]*string{"name": &r.Name, "phone": &r.Phone, "address": &r.Address} {
		*value = strings.TrimSpace(*value)
		if *value == "" {
			errs.Add(field, "This field is required.")
		}
	}
	for i, line := range r.Items {
		if strings.TrimSpace(line.Title) == "" {
			errs.Add(fmt.Sprintf("items[%d].title", i), "This field is required.")
		}
		if line.Price.IsNegative() {
			errs.Add(fmt.Sprintf("items[%d].price", i), "Ensure this value is greater than or equal to 0.")
		}
	}
	if r.TotalPrice.IsNegative() {
		errs.Add("total_price", "Ensure this value is greater than or equal to 0.")
	}
	return errs
}

func (r *CreateOrderRequest) lines() datatypes.JSONSlice[models.OrderLine] {
	lines := make(datatypes.JSONSlice[models.OrderLine], 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, models.OrderLine{
			Title:    strings.TrimSpace(item.Title),
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	return lines
}

// POST /api/orders/
func CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	lines := req.lines()
	if err := models.ValidateLines(lines); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"items": err.Error()}})
		return
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method == "" {
		method = models.PaymentCash
	}

	order := models.Order{
		Name:          req.Name,
		Phone:         req.Phone,
		Address:       req.Address,
		Items:         lines,
		TotalPrice:    *req.TotalPrice,
		Status:        models.StatusNew,
		PaymentMethod: method,
	}

	var clientEmail string
	if p := auth.PrincipalFrom(c); p.Authenticated() {
		order.UserID = &p.UserID

		var user models.User
		if err := db.DB.Select("email").First(&user, p.UserID).Error; err == nil {
			clientEmail = user.Email
		}
	}

	log := logger.From(c)
	if err := db.DB.Create(&order).Error; err != nil {
		log.Error("failed to create order", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create order"})
		return
	}

	resp := gin.H{"status": "success", "order_id": order.ID}

	if order.PaymentMethod == models.PaymentOnline {
		// The order stands even when the redirect cannot be built.
		paymentURL, err := gateway.PaymentURL(paykeeper.PaymentRequest{
			OrderID:     order.ID,
			Amount:      order.TotalPrice,
			ClientName:  order.Name,
			ClientPhone: order.Phone,
			ClientEmail: clientEmail,
		})
		if err != nil {
			log.Warn("failed to build payment url", "order_id", order.ID, "error", err)
		} else {
			resp["payment_url"] = paymentURL
		}
	}

	notify.OrderPlaced(c.Request.Context(), order)
	c.JSON(http.StatusCreated, resp)
}

// POST /api/paykeeper/callback/
//
// PayKeeper expects plain text bodies. The signature is checked before the
// order is looked up so a forged notification learns nothing about which
// orders exist.
func PayKeeperCallback(c *gin.Context) {
	paymentID := c.PostForm("id")
	orderID := c.PostForm("orderid")
	key := c.PostForm("key")

	if paymentID == "" || orderID == "" || key == "" {
		c.String(http.StatusBadRequest, "Error: Missing data")
		return
	}

	log := logger.From(c).With("payment_id", paymentID, "orderid", orderID)

	if !gateway.VerifySignature(paymentID, key) {
		log.Warn("paykeeper signature mismatch")
		c.String(http.StatusForbidden, "Error: Hash mismatch")
		return
	}

	id, err := strconv.ParseUint(orderID, 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusNotFound, "Error: Order not found")
		return
	}

	order, applied, err := workflow.MarkPaid(db.DB, uint(id), paymentID)
	if err != nil {
		if errors.Is(err, workflow.ErrOrderNotFound) {
			c.String(http.StatusNotFound, "Error: Order not found")
			return
		}
		log.Error("paykeeper callback failed", "error", err)
		c.String(http.StatusInternalServerError, "Error: %s", err.Error())
		return
	}

	if applied {
		log.Info("order paid", "order_id", order.ID)
		notify.OrderPaid(c.Request.Context(), *order)
	}

	c.String(http.StatusOK, gateway.Acknowledgment(paymentID))
}
