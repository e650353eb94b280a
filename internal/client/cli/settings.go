package cli

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
)

func (a *App) setURL(ctx context.Context, args []string) error {
	url := strings.Join(args, "")
	if err := a.settings.SetEndpointURL(ctx, url); err != nil {
		return err
	}
	if url == "" {
		fmt.Fprintln(a.out, "Sync turned off.")
	} else {
		fmt.Fprintln(a.out, "URL saved, refreshing shortly.")
	}
	return nil
}

func (a *App) categories(ctx context.Context, args []string) error {
	if len(args) > 0 {
		if err := a.settings.SetCategories(ctx, strings.Split(strings.Join(args, " "), ",")); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, strings.Join(a.settings.Categories(), ", "))
	return nil
}

func (a *App) profile(ctx context.Context, args []string) error {
	if len(args) > 0 {
		p := models.ContractorProfile{CompanyName: strings.Join(args, " ")}
		if n := len(args); n > 1 && !isWord(args[n-1]) {
			p.CompanyName = strings.Join(args[:n-1], " ")
			p.LogoEmoji = args[n-1]
		}
		p.LogoURL = a.settings.Profile().LogoURL
		if err := a.settings.SetProfile(ctx, p); err != nil {
			return err
		}
	}
	p := a.settings.Profile()
	fmt.Fprintf(a.out, "%s %s\n", p.LogoEmoji, p.CompanyName)
	return nil
}

// isWord reports whether s contains a letter or digit, telling a company
// name token apart from a trailing emoji.
func isWord(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0
}
