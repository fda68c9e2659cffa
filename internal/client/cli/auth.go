package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/authkeeper/authkeeper/internal/api"
	"github.com/authkeeper/authkeeper/internal/common"
	"github.com/authkeeper/authkeeper/internal/envelope"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errCommandFailed is returned by handlers whose call reached the server
// but did not succeed; the details were already printed.
var errCommandFailed = errors.New("command failed")

func (a *App) credentials() (string, string, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)

	return userName, string(password), nil
}

// Register prompts for a username and password, creates the account and
// signs in with the token the server returns.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}

	r := a.authService.Register(ctx, userName, password)
	if !r.Success {
		a.printFailure("Registration failed", r.Code, r.Messages())
		return errCommandFailed
	}

	fmt.Fprintf(a.out, "Registered and signed in as %s\n", r.Data.Username)
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.credentials()
	if err != nil {
		return err
	}

	r := a.authService.Login(ctx, userName, password)
	if !r.Success {
		a.printFailure("Login unsuccessful", r.Code, r.Messages())
		return errCommandFailed
	}

	fmt.Fprintf(a.out, "Login successful, welcome %s\n", r.Data.Username)
	return nil
}

// Logout forgets the token locally. Nothing is sent to the server.
func (a *App) Logout(ctx context.Context) error {
	a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Whoami asks the server who the current token belongs to.
func (a *App) Whoami(ctx context.Context) error {
	r := a.authService.Whoami(ctx)
	if !r.Success {
		a.printFailure("Whoami failed", r.Code, r.Messages())
		return errCommandFailed
	}

	a.printUser(r.Data)
	return nil
}

// Status prints the local session without contacting the server.
func (a *App) Status(context.Context) error {
	st := a.authService.State()
	if !st.Authenticated {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	a.printUser(st.User)
	return nil
}

func (a *App) printUser(u api.UserDetail) {
	fmt.Fprintf(a.out, "Signed in as %s (id %d, role %s)\n", u.Username, u.ID, u.Role)
}

func (a *App) printFailure(title string, code envelope.Code, msgs []string) {
	fmt.Fprintf(a.out, "%s [%s]\n", title, code)
	for _, m := range msgs {
		fmt.Fprintf(a.out, "  - %s\n", m)
	}
}
