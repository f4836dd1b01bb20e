package handlers_test

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/models"
)

func sign(paymentID string) string {
	sum := md5.Sum([]byte(paymentID + testSecret))
	return hex.EncodeToString(sum[:])
}

func callbackForm(paymentID string, orderID interface{}, key string) url.Values {
	return url.Values{"id": {paymentID}, "orderid": {fmt.Sprint(orderID)}, "key": {key}}
}

// countOrderQueries counts SELECTs against the orders table from now on.
func countOrderQueries(t *testing.T, testDB *gorm.DB) *int64 {
	t.Helper()
	var n int64
	err := testDB.Callback().Query().Before("gorm:query").Register("test:count_order_queries", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			atomic.AddInt64(&n, 1)
		}
	})
	require.NoError(t, err)
	return &n
}

func TestPayKeeperCallback(t *testing.T) {
	env := setupTestRouter(t)

	t.Run("Valid callback marks the order paid", func(t *testing.T) {
		order := env.createOrder(t, nil)

		recorder := env.postForm("/api/paykeeper/callback/", callbackForm("pk-1", order.ID, sign("pk-1")))
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "OK "+sign("pk-1"), recorder.Body.String())
		assert.Contains(t, recorder.Header().Get("Content-Type"), "text/plain")

		var stored models.Order
		require.NoError(t, env.db.First(&stored, order.ID).Error)
		assert.True(t, stored.IsPaid)
		require.NotNil(t, stored.PaymentID)
		assert.Equal(t, "pk-1", *stored.PaymentID)
		assert.Equal(t, models.PaymentOnline, stored.PaymentMethod)
		assert.Equal(t, models.StatusNew, stored.Status)
		require.Len(t, env.notify.paid, 1)
	})

	t.Run("Replay keeps the first payment", func(t *testing.T) {
		order := env.createOrder(t, nil)
		paidBefore := len(env.notify.paid)

		first := env.postForm("/api/paykeeper/callback/", callbackForm("pk-first", order.ID, sign("pk-first")))
		require.Equal(t, http.StatusOK, first.Code)

		again := env.postForm("/api/paykeeper/callback/", callbackForm("pk-first", order.ID, sign("pk-first")))
		assert.Equal(t, http.StatusOK, again.Code)
		assert.Equal(t, "OK "+sign("pk-first"), again.Body.String())

		other := env.postForm("/api/paykeeper/callback/", callbackForm("pk-second", order.ID, sign("pk-second")))
		assert.Equal(t, http.StatusOK, other.Code)
		assert.Equal(t, "OK "+sign("pk-second"), other.Body.String())

		var stored models.Order
		require.NoError(t, env.db.First(&stored, order.ID).Error)
		assert.Equal(t, "pk-first", *stored.PaymentID)
		assert.Len(t, env.notify.paid, paidBefore+1)
	})

	t.Run("Missing fields", func(t *testing.T) {
		for _, form := range []url.Values{
			{"orderid": {"1"}, "key": {"x"}},
			{"id": {"pk"}, "key": {"x"}},
			{"id": {"pk"}, "orderid": {"1"}},
		} {
			recorder := env.postForm("/api/paykeeper/callback/", form)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "Error: Missing data", recorder.Body.String())
		}
	})

	t.Run("Unknown order", func(t *testing.T) {
		recorder := env.postForm("/api/paykeeper/callback/", callbackForm("pk-x", 424242, sign("pk-x")))
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Error: Order not found", recorder.Body.String())

		recorder = env.postForm("/api/paykeeper/callback/", callbackForm("pk-x", "abc", sign("pk-x")))
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestPayKeeperCallbackBadSignature(t *testing.T) {
	env := setupTestRouter(t)
	order := env.createOrder(t, nil)
	lookups := countOrderQueries(t, env.db)

	t.Run("Existing order", func(t *testing.T) {
		recorder := env.postForm("/api/paykeeper/callback/", callbackForm("pk-1", order.ID, "deadbeef"))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "Error: Hash mismatch", recorder.Body.String())
	})

	t.Run("Fabricated order gets the same answer", func(t *testing.T) {
		recorder := env.postForm("/api/paykeeper/callback/", callbackForm("pk-1", 999999, "deadbeef"))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.Equal(t, "Error: Hash mismatch", recorder.Body.String())
	})

	t.Run("Key signed with another secret", func(t *testing.T) {
		sum := md5.Sum([]byte("pk-1" + "other-secret"))
		recorder := env.postForm("/api/paykeeper/callback/", callbackForm("pk-1", order.ID, hex.EncodeToString(sum[:])))
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	assert.Zero(t, atomic.LoadInt64(lookups))

	var stored models.Order
	require.NoError(t, env.db.First(&stored, order.ID).Error)
	assert.False(t, stored.IsPaid)
	assert.Nil(t, stored.PaymentID)
	assert.Empty(t, env.notify.paid)
}
