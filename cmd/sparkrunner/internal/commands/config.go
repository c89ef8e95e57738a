package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/sparkrunner/portal/internal/config"
)

type ConfigCmd struct{}

func (c *ConfigCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := config.Load(globals.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	authURL, err := cfg.AuthURL()
	if err != nil {
		return err
	}
	scooterURL, err := cfg.ScooterURL()
	if err != nil {
		return err
	}
	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	stateDir, err := cfg.StateDirectory()
	if err != nil {
		return err
	}

	logins := map[string]string{}
	for _, l := range cfg.OAuthLoginURLs(uuid.NewString()) {
		logins[l.Provider] = l.URL
	}
	loginURL := func(name string) string {
		if u, ok := logins[name]; ok {
			return u
		}
		return "unset"
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "App:\t%s\n", cfg.App.Name)
	fmt.Fprintf(w, "Frontend URL:\t%s\n", cfg.App.FrontendURL)
	fmt.Fprintf(w, "Auth API:\t%s\n", authURL)
	fmt.Fprintf(w, "Scooter API:\t%s\n", scooterURL)
	fmt.Fprintf(w, "Timeout:\t%s\n", timeout)
	fmt.Fprintf(w, "State dir:\t%s\n", stateDir)
	fmt.Fprintf(w, "Google OAuth:\t%s\n", loginURL("google"))
	fmt.Fprintf(w, "GitHub OAuth:\t%s\n", loginURL("github"))
	return w.Flush()
}
