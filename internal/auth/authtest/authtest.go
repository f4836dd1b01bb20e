// Package authtest forges session cookies for handler tests.
package authtest

import (
	"net/http"
	"net/http/httptest"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/Fooxyj/dacha/internal/auth"
)

const Secret = "test-secret-key"

// Store is the cookie store test routers should mount.
func Store() sessions.Store {
	return cookie.NewStore([]byte(Secret))
}

// SessionCookie returns a Cookie header value logging userID in.
func SessionCookie(userID uint) string {
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	sessions.Sessions(auth.SessionName, Store())(tempC)
	session := sessions.Default(tempC)
	session.Set("user_id", userID)
	_ = session.Save()

	return tempW.Header().Get("Set-Cookie")
}
