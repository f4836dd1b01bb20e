package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/auth"
	"github.com/Fooxyj/dacha/internal/auth/authtest"
	"github.com/Fooxyj/dacha/internal/db/dbtest"
	"github.com/Fooxyj/dacha/internal/handlers"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/paykeeper"
)

const testSecret = "pk-secret"

type recordingNotifier struct {
	mu           sync.Mutex
	placed       []models.Order
	paid         []models.Order
	changed      []models.OrderStatus
	reservations []models.Reservation
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.placed = append(n.placed, o)
}

func (n *recordingNotifier) OrderPaid(_ context.Context, o models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paid = append(n.paid, o)
}

func (n *recordingNotifier) OrderStatusChanged(_ context.Context, o models.Order, from models.OrderStatus) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, from, o.Status)
}

func (n *recordingNotifier) ReservationCreated(_ context.Context, r models.Reservation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reservations = append(n.reservations, r)
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	notify *recordingNotifier
}

// setupTestRouter mounts every route on a fresh database with a configured
// gateway and a recording notifier.
func setupTestRouter(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)
	testDB := dbtest.Open(t)

	rec := &recordingNotifier{}
	handlers.SetNotifier(rec)
	handlers.SetGateway(paykeeper.New(config.PayKeeperConfig{ServerURL: "https://dacha.server.paykeeper.ru", SecretKey: testSecret}))

	t.Cleanup(func() {
		handlers.SetNotifier(nil)
		handlers.SetGateway(nil)
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sessions.Sessions(auth.SessionName, authtest.Store()))
	r.Use(auth.LoadPrincipal())
	handlers.RegisterRoutes(r, nil)

	return &testEnv{router: r, db: testDB, notify: rec}
}

func (e *testEnv) do(method, path string, body interface{}, cookie string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	e.router.ServeHTTP(recorder, req)
	return recorder
}

func (e *testEnv) createUser(t *testing.T, username string, staff bool) (models.User, string) {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", IsStaff: staff}
	require.NoError(t, e.db.Create(&user).Error)
	return user, authtest.SessionCookie(user.ID)
}

func (e *testEnv) createOrder(t *testing.T, mutate func(*models.Order)) models.Order {
	t.Helper()
	order := models.Order{
		Name:    "Ivan",
		Phone:   "+79001234567",
		Address: "Main St 1",
		Items: datatypes.JSONSlice[models.OrderLine]{
			{Title: "Pizza", Quantity: 2, Price: decimal.NewFromInt(500)},
		},
		TotalPrice:    decimal.NewFromInt(1000),
		Status:        models.StatusNew,
		PaymentMethod: models.PaymentCash,
	}
	if mutate != nil {
		mutate(&order)
	}
	require.NoError(t, e.db.Create(&order).Error)
	return order
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), out), recorder.Body.String())
}
