// Package handlers holds the HTTP handlers of the public and staff API.
//
// Handlers read the store through db.DB and the session through
// auth.PrincipalFrom. The payment gateway, the notifier and the admin poll
// settings are installed once at start; tests swap them with the setters.
package handlers

import (
	"time"

	config "github.com/Fooxyj/dacha/configs"
	"github.com/Fooxyj/dacha/internal/notifier"
	"github.com/Fooxyj/dacha/internal/paykeeper"
)

var (
	gateway *paykeeper.Gateway
	notify  notifier.Notifier = notifier.Nop{}
	admin                     = config.AdminConfig{RecentWindow: 30 * time.Second, PollInterval: 10 * time.Second}
)

func SetGateway(g *paykeeper.Gateway) {
	gateway = g
}

// SetNotifier installs n. A nil n drops every event.
func SetNotifier(n notifier.Notifier) {
	if n == nil {
		n = notifier.Nop{}
	}
	notify = n
}

func SetAdminConfig(cfg config.AdminConfig) {
	admin = cfg
}
