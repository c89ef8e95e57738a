package commands

import (
	"context"
	"fmt"

	"github.com/sparkrunner/portal/internal/authapi"
	"github.com/sparkrunner/portal/internal/client"
)

type RegisterCmd struct {
	Username string `help:"Username" required:""`
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password, prompted for when omitted" env:"SPARK_PASSWORD"`
	Login    bool   `help:"Log in with the new account after registering" default:"false"`
}

func (r *RegisterCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	password := r.Password
	if password == "" {
		if password, err = readPassword(globals.out(), "Password: "); err != nil {
			return err
		}
	}

	user, err := a.auth.Register(ctx, authapi.Registration{
		Username: r.Username,
		Email:    r.Email,
		Password: password,
	})
	if err != nil {
		if client.StatusCode(err) == 0 {
			return fmt.Errorf("registration failed: %w", err)
		}
		return fmt.Errorf("registration failed: %s", client.UserMessage(err, "could not create account"))
	}

	name := r.Username
	if user != nil && user.Username != "" {
		name = user.Username
	}
	fmt.Fprintf(globals.out(), "Account %s created.\n", name)

	if !r.Login {
		fmt.Fprintln(globals.out())
		fmt.Fprintln(globals.out(), "To log in:")
		fmt.Fprintf(globals.out(), "  sparkrunner login --email %s\n", r.Email)
		return nil
	}

	return login(ctx, a, globals.out(), r.Email, password)
}
