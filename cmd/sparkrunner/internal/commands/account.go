package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"

	"github.com/sparkrunner/portal/internal/client"
)

type AccountCmd struct{}

func (c *AccountCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	id, err := a.requireIdentity()
	if err != nil {
		return err
	}

	username := ""
	profile, err := a.profile.GetUserProfile(ctx, id.ID)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return apiError(err, "")
	case err != nil:
		log.Debug().Err(err).Msg("profile unavailable")
	default:
		username = profile.Username
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	if username != "" {
		fmt.Fprintf(w, "Username:\t%s\n", username)
	}
	fmt.Fprintf(w, "Email:\t%s\n", id.Email)
	fmt.Fprintf(w, "User ID:\t%s\n", id.ID)
	fmt.Fprintf(w, "Roles:\t%s\n", strings.Join(id.Roles, ", "))
	fmt.Fprintf(w, "Status:\t%s\n", "active")
	return w.Flush()
}
