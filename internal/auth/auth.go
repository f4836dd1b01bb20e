package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/models"
	"github.com/Fooxyj/dacha/internal/validation"
)

const (
	SessionName    = "dacha_session"
	sessionUserKey = "user_id"
	principalKey   = "principal"
)

// Principal is the caller of a request: anonymous when UserID is zero.
type Principal struct {
	UserID uint
	Staff  bool
}

func (p Principal) Authenticated() bool {
	return p.UserID != 0
}

// UserResponse is the public shape of a user.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, FirstName: u.FirstName, Email: u.Email}
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// LoadPrincipal resolves the session into a Principal for every request. A
// session pointing at a deleted user is cleared and treated as anonymous.
func LoadPrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := Principal{}

		sess := sessions.Default(c)
		if userID, ok := sess.Get(sessionUserKey).(uint); ok && userID != 0 {
			var user models.User
			err := db.DB.Select("id", "is_staff").First(&user, userID).Error
			switch {
			case err == nil:
				principal = Principal{UserID: user.ID, Staff: user.IsStaff}
			case errors.Is(err, gorm.ErrRecordNotFound):
				sess.Delete(sessionUserKey)
				_ = sess.Save()
			default:
				slog.Error("failed to load session user", "user_id", userID, "error", err)
			}
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom returns the Principal set by LoadPrincipal.
func PrincipalFrom(c *gin.Context) Principal {
	if p, ok := c.Get(principalKey); ok {
		if principal, ok := p.(Principal); ok {
			return principal
		}
	}
	return Principal{}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if !p.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		if !p.Staff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff only"})
			return
		}
		c.Next()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────────────────────────────────────

type RegisterRequest struct {
	Username  string `json:"username" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"max=150"`
	Email     string `json:"email" binding:"omitempty,email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/register/
func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.FromBinding(err)})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"username": "This field is required."}})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"password": "Password cannot be used."}})
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		Email:        req.Email,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Errors{"username": "A user with that username already exists."}})
			return
		}
		slog.Error("failed to create user", "username", user.Username, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if err := startSession(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// POST /api/auth/login/
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	var user models.User
	if err := db.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("failed to look up user", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := startSession(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

// POST /api/auth/logout/
func Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// GET /api/auth/user/
func CurrentUser(c *gin.Context) {
	p := PrincipalFrom(c)
	if !p.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, p.UserID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(user))
}

func startSession(c *gin.Context, userID uint) error {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(sessionUserKey, userID)
	if err := sess.Save(); err != nil {
		slog.Error("failed to save session", "user_id", userID, "error", err)
		return err
	}
	return nil
}
