// Package paykeeper talks to the PayKeeper hosted invoice page and checks the
// signed payment notifications it posts back.
package paykeeper

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	config "github.com/Fooxyj/dacha/configs"
)

const invoicePath = "/change/invoice/preview/"

var ErrNotConfigured = errors.New("paykeeper is not configured")

// PaymentRequest carries what the invoice page needs to pre-fill the form.
type PaymentRequest struct {
	OrderID     uint
	Amount      decimal.Decimal
	ClientName  string
	ClientPhone string
	ClientEmail string
}

type Gateway struct {
	serverURL string
	secret    string
}

func New(cfg config.PayKeeperConfig) *Gateway {
	return &Gateway{
		serverURL: strings.TrimRight(cfg.ServerURL, "/"),
		secret:    cfg.SecretKey,
	}
}

// PaymentURL builds the redirect to the hosted invoice page. The outbound leg
// is unsigned; PayKeeper echoes orderid back in its notification.
func (g *Gateway) PaymentURL(req PaymentRequest) (string, error) {
	if g == nil || g.serverURL == "" {
		return "", ErrNotConfigured
	}

	base, err := url.Parse(g.serverURL + invoicePath)
	if err != nil {
		return "", fmt.Errorf("parse paykeeper server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("paykeeper server url %q must be absolute", g.serverURL)
	}

	orderID := strconv.FormatUint(uint64(req.OrderID), 10)

	q := url.Values{}
	q.Set("sum", req.Amount.String())
	q.Set("orderid", orderID)
	q.Set("clientid", req.ClientName)
	q.Set("client_phone", req.ClientPhone)
	q.Set("client_email", req.ClientEmail)
	q.Set("service_name", "Заказ №"+orderID)
	base.RawQuery = q.Encode()

	return base.String(), nil
}

// VerifySignature reports whether key is md5(paymentID + secret) in hex.
// Empty input or an unconfigured secret never verifies.
func (g *Gateway) VerifySignature(paymentID, key string) bool {
	if g == nil || g.secret == "" || paymentID == "" || key == "" {
		return false
	}
	expected := g.digest(paymentID)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(key)) == 1
}

// Acknowledgment is the body PayKeeper expects after a processed
// notification: "OK " followed by md5(paymentID + secret).
func (g *Gateway) Acknowledgment(paymentID string) string {
	return "OK " + g.digest(paymentID)
}

func (g *Gateway) digest(paymentID string) string {
	sum := md5.Sum([]byte(paymentID + g.secret))
	return hex.EncodeToString(sum[:])
}
