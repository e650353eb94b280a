package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
)

func (a *App) login(ctx context.Context, args []string) error {
	var who string
	if len(args) > 0 {
		who = args[0]
	} else {
		fmt.Fprintln(a.out, "Accounts:")
		for _, u := range models.Accounts() {
			fmt.Fprintf(a.out, "  %-8s %-22s %s (%s)\n", u.ID, u.Email, u.Name, u.Role)
		}
		var err error
		if who, err = GetSimpleText(a.reader, "Sign in as (email or id)", a.out); err != nil {
			return err
		}
	}

	u, err := a.session.Login(ctx, who)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s).\n", u.Name, u.Role)
	return nil
}

func (a *App) logout(ctx context.Context, _ []string) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) whoami(context.Context, []string) error {
	u := a.session.Current()
	if u == nil {
		fmt.Fprintln(a.out, "Nobody is signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", u.Name, u.Email, u.Role)
	return nil
}
