package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sparkrunner/portal/internal/authapi"
	"github.com/sparkrunner/portal/internal/client"
	"github.com/sparkrunner/portal/internal/config"
	"github.com/sparkrunner/portal/internal/models"
	"github.com/sparkrunner/portal/internal/profileapi"
	"github.com/sparkrunner/portal/internal/session"
	"github.com/sparkrunner/portal/internal/tokenstore"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
)

type Globals struct {
	Debug      bool
	Version    string
	ConfigFile string
	Stdout     io.Writer
}

func (g *Globals) out() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// app is the wiring shared by every command: one token store, one
// dispatcher, both clients and a resolved session.
type app struct {
	cfg     *config.Config
	tokens  *tokenstore.FileStore
	auth    *authapi.API
	profile *profileapi.API
	session *session.Session
}

func newApp(globals *Globals) (*app, error) {
	cfg, err := config.Load(globals.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dir, err := cfg.StateDirectory()
	if err != nil {
		return nil, err
	}

	tokens, err := tokenstore.NewFileStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token store: %w", err)
	}

	authURL, err := cfg.AuthURL()
	if err != nil {
		return nil, err
	}
	scooterURL, err := cfg.ScooterURL()
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}

	dispatcher := session.NewDispatcher()

	clients, err := client.NewClients(
		client.Config{BaseURL: authURL, Timeout: timeout},
		client.Config{BaseURL: scooterURL, Timeout: timeout},
		tokens, dispatcher,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create clients: %w", err)
	}

	auth := authapi.New(clients.Auth, tokens)
	sess := session.New(auth, dispatcher)
	sess.Init()

	return &app{
		cfg:     cfg,
		tokens:  tokens,
		auth:    auth,
		profile: profileapi.New(clients.Profile),
		session: sess,
	}, nil
}

func (a *app) requireIdentity() (*models.Identity, error) {
	id, err := a.session.RequireIdentity()
	if err != nil {
		return nil, fmt.Errorf("%w\n\nRun 'sparkrunner login' to sign in", ErrNotLoggedIn)
	}
	return id, nil
}

// apiError turns a backend failure into the message shown to the user.
// A 401 has already cleared the session by the time it gets here.
func apiError(err error, fallback string) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return fmt.Errorf("%w\n\nRun 'sparkrunner login' to sign in again", ErrSessionExpired)
	}
	return fmt.Errorf("%s: %w", client.UserMessage(err, fallback), err)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f kr", v)
}
