package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/client/remote"
	"github.com/dmitrijs2005/contractorbook/internal/client/syncer"
)

func (a *App) push(ctx context.Context, _ []string) error {
	r := a.sync.Push(ctx)
	if !r.Ran {
		fmt.Fprintln(a.out, "Nothing was pushed: check the URL and your role, or a sync is already running.")
		return nil
	}
	fmt.Fprintf(a.out, "Pushed %d, failed %d, changed during sync %d.\n", r.Pushed, r.Failed, r.Stale)
	return nil
}

func (a *App) pull(ctx context.Context, _ []string) error {
	r := a.sync.Pull(ctx)
	switch {
	case !r.Ran:
		fmt.Fprintln(a.out, "Pull skipped: no valid URL or a pull is already running.")
	case !r.Applied:
		fmt.Fprintln(a.out, "Pull failed, local data left as it was.")
	default:
		fmt.Fprintf(a.out, "Now %d jobs and %d expenses (%d local changes kept, %d dropped).\n",
			r.Jobs, r.Expenses, r.Carried, r.Dropped)
	}
	return nil
}

func (a *App) testConnection(ctx context.Context, _ []string) error {
	if a.sync.Test(ctx) {
		fmt.Fprintln(a.out, "Connection OK.")
	} else {
		fmt.Fprintln(a.out, "Connection failed.")
	}
	return nil
}

func (a *App) syncStatus(context.Context, []string) error {
	url := a.settings.EndpointURL()
	if url == "" {
		url = "(not set)"
	} else if !remote.IsValidEndpoint(url) {
		url += " (invalid)"
	}
	fmt.Fprintf(a.out, "Mode:    %s\n", a.sync.Mode())
	fmt.Fprintf(a.out, "URL:     %s\n", url)
	fmt.Fprintf(a.out, "Pending: %d\n", a.sync.PendingCount())
	fmt.Fprintf(a.out, "Push:    %s\n", a.sync.State(syncer.DirectionPush))
	fmt.Fprintf(a.out, "Pull:    %s\n", a.sync.State(syncer.DirectionPull))
	return nil
}
