package commands

import (
	"context"
	"fmt"
)

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	wasLoggedIn := a.session.IsAuthenticated()
	a.session.Logout()

	if wasLoggedIn {
		fmt.Fprintln(globals.out(), "Logged out.")
	} else {
		fmt.Fprintln(globals.out(), "Not logged in.")
	}
	return nil
}
