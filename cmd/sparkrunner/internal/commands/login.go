package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/sparkrunner/portal/internal/client"
	"github.com/sparkrunner/portal/internal/session"
)

// readPassword prompts on the terminal without echo.
var readPassword = func(w io.Writer, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password required: pass --password or run in a terminal")
	}

	fmt.Fprint(w, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimSpace(string(b)), nil
}

type LoginCmd struct {
	Email    string `help:"Account email" required:""`
	Password string `help:"Account password, prompted for when omitted" env:"SPARK_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	password := l.Password
	if password == "" {
		if password, err = readPassword(globals.out(), "Password: "); err != nil {
			return err
		}
	}

	return login(ctx, a, globals.out(), l.Email, password)
}

func login(ctx context.Context, a *app, w io.Writer, email, password string) error {
	if _, err := a.session.Login(ctx, email, password); err != nil {
		return loginError(err)
	}

	id := a.session.Identity()
	if id == nil {
		return errors.New("login failed: the server returned a token that could not be read")
	}

	fmt.Fprintf(w, "Logged in as %s\n", id.Email)
	return nil
}

// loginError keeps transport failures intact and reduces backend
// rejections to the message the server sent.
func loginError(err error) error {
	if errors.Is(err, session.ErrLoginInProgress) || client.StatusCode(err) == 0 {
		return fmt.Errorf("login failed: %w", err)
	}
	return fmt.Errorf("login failed: %s", client.UserMessage(err, "invalid email or password"))
}
