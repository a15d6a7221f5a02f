package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/valetkey/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials, opens a session and shows the root folder.
// The password bytes are wiped before returning.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.gate.Login(ctx, userName, string(password))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	a.openDashboard(ctx)
	return nil
}

// Logout ends the session on the backend and locally. The dashboard is
// reset so nothing of the previous user stays visible.
func (a *App) Logout(ctx context.Context) error {
	a.gate.Logout(ctx)
	a.dash.Reset()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func cmdWhoami(a *App, ctx context.Context, args []string) error {
	u := a.gate.User()
	if u == nil {
		return fmt.Errorf("not logged in")
	}
	role := u.Role
	if role == "" {
		role = "user"
	}
	fmt.Fprintf(a.out, "%s (id %s, %s)\n", u.Username, u.ID, role)
	return nil
}
