package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mapsengine/gme-cli/internal/api"
	"github.com/mapsengine/gme-cli/internal/auth"
	"github.com/mapsengine/gme-cli/internal/config"
	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
)

// appContext bundles configuration and auth state shared by commands
type appContext struct {
	cfg     *config.UserConfig
	store   auth.TokenStore
	manager *auth.Manager
	session *auth.Session
}

// newAppContext loads configuration and restores the session from the token store.
// File stores are watched so a login or logout in another shell is picked up.
func newAppContext(ctx context.Context) (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apperrors.NewError(err, "Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewUsageError(fmt.Sprintf("Invalid configuration in %s: %v", config.GetConfigFile(), err))
	}

	store, err := auth.OpenStore(cfg)
	if err != nil {
		return nil, apperrors.NewError(err, "Failed to open credential store")
	}

	manager := auth.NewManager(cfg, store, nil)
	session := auth.NewSession(manager)
	if err := session.Load(); err != nil {
		logger.Warn("Failed to restore stored token: %v", err)
	}

	session.Subscribe(func(change auth.AuthStateChange) {
		if !change.IsAuthorized {
			logger.Info("Session de-authorized")
		}
	})

	if fs, ok := store.(*auth.FileStore); ok {
		go func() {
			err := fs.Watch(ctx, func() {
				logger.Debug("Credential file changed, reloading")
				if err := session.Reload(); err != nil {
					logger.Warn("Failed to restore stored token: %v", err)
				}
			})
			if err != nil {
				logger.Debug("Credential file watch disabled: %v", err)
			}
		}()
	}

	return &appContext{cfg: cfg, store: store, manager: manager, session: session}, nil
}

// requireAuth fails with a sign-in hint when no durable grant exists
func (a *appContext) requireAuth() error {
	if !a.session.IsAuthorizationAvailable() {
		return apperrors.NewAuthError(apperrors.ErrNoToken, "Not authenticated. Run 'gme login' first")
	}
	return nil
}

// apiClient returns a client that takes its tokens from the session
func (a *appContext) apiClient(ctx context.Context) (*api.Client, error) {
	if err := a.requireAuth(); err != nil {
		return nil, err
	}
	if a.cfg.APIKey == "" {
		logger.Warn("No API key configured, set GME_API_KEY")
	}
	return api.NewClient(a.cfg, a.session.TokenSource(ctx)), nil
}

// printJSON writes v to stdout as indented JSON
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// say prints unless --quiet is set
func say(format string, args ...interface{}) {
	if quietMode {
		return
	}
	fmt.Printf(format, args...)
}

// orDash renders an empty value as "-"
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
