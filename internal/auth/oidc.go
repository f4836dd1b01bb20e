package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/db"
	"github.com/Fooxyj/dacha/internal/models"
)

const sessionStateKey = "oidc_state"

// OIDC is the optional single sign-on flow. Users signing in this way get
// an account keyed by the token subject.
type OIDC struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

// Claims are the ID token claims copied onto the user.
type Claims struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewOIDC discovers the issuer. It returns nil when no issuer is configured.
func NewOIDC(ctx context.Context, cfg config.OIDCConfig) (*OIDC, error) {
	if cfg.Issuer == "" {
		return nil, nil
	}

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider init: %w", err)
	}

	return &OIDC{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// GET /api/auth/oidc/login/
func (o *OIDC) Login(c *gin.Context) {
	state := uuid.NewString()

	sess := sessions.Default(c)
	sess.Set(sessionStateKey, state)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.Redirect(http.StatusFound, o.oauth2Config.AuthCodeURL(state))
}

// GET /api/auth/oidc/callback/
func (o *OIDC) Callback(c *gin.Context) {
	sess := sessions.Default(c)
	want, _ := sess.Get(sessionStateKey).(string)
	if want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}
	sess.Delete(sessionStateKey)

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	ctx := c.Request.Context()
	token, err := o.oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no id_token in token response"})
		return
	}

	idToken, err := o.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "claims parse error"})
		return
	}

	user, err := UpsertOIDCUser(db.DB, claims)
	if err != nil {
		slog.Error("failed to upsert oidc user", "sub", claims.Sub, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		return
	}

	if err := startSession(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	c.JSON(http.StatusOK, NewUserResponse(*user))
}

// UpsertOIDCUser finds the user bound to claims.Sub or creates one. Profile
// fields are refreshed from the claims on every sign-in.
func UpsertOIDCUser(conn *gorm.DB, claims Claims) (*models.User, error) {
	if claims.Sub == "" {
		return nil, errors.New("empty subject")
	}

	var user models.User
	err := conn.Where("oidc_subject = ?", claims.Sub).First(&user).Error
	switch {
	case err == nil:
		user.FirstName = claims.Name
		user.Email = claims.Email
		if err := conn.Model(&user).Updates(map[string]any{"first_name": claims.Name, "email": claims.Email}).Error; err != nil {
			return nil, err
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		sub := claims.Sub
		user = models.User{
			Username:    "oidc_" + sub,
			FirstName:   claims.Name,
			Email:       claims.Email,
			OIDCSubject: &sub,
		}
		if err := conn.Create(&user).Error; err != nil {
			return nil, err
		}
		return &user, nil
	default:
		return nil, err
	}
}
