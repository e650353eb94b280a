package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/services"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
)

var errUsage = errors.New("missing argument, see help")

func (a *App) listJobs(context.Context, []string) error {
	printJobs(a.out, a.jobs.List())
	return nil
}

// promptJob asks for every job field, offering the values of j as defaults.
func (a *App) promptJob(j models.Job) (models.Job, error) {
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Name", &j.Name},
		{"Client", &j.Client},
		{"Address", &j.Address},
		{"Contact name", &j.ContactName},
		{"Phone", &j.Phone},
		{"Email", &j.Email},
	}
	for _, f := range fields {
		v, err := GetDefault(a.reader, f.prompt, *f.dst, a.out)
		if err != nil {
			return j, err
		}
		*f.dst = v
	}

	budget, err := GetAmount(a.reader, "Budget", j.Budget, a.out)
	if err != nil {
		return j, err
	}
	j.Budget = budget

	for {
		s, err := GetDefault(a.reader, "Status (active/completed/pending)", string(j.Status), a.out)
		if err != nil {
			return j, err
		}
		status, err := models.ParseJobStatus(s)
		if err == nil {
			j.Status = status
			return j, nil
		}
		fmt.Fprintln(a.out, err)
	}
}

func (a *App) addJob(ctx context.Context, _ []string) error {
	if !a.session.Current().IsAdmin() {
		return services.ErrForbidden
	}
	j, err := a.promptJob(models.Job{Status: models.JobStatusActive})
	if err != nil {
		return err
	}
	saved, err := a.jobs.Save(ctx, j)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Job %s saved.\n", saved.ID)
	return nil
}

func (a *App) editJob(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if !a.session.Current().IsAdmin() {
		return services.ErrForbidden
	}
	j, ok := a.jobs.Get(args[0])
	if !ok {
		return store.ErrNotFound
	}
	j, err := a.promptJob(j)
	if err != nil {
		return err
	}
	if _, err := a.jobs.Update(ctx, j); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Job %s updated.\n", j.ID)
	return nil
}

func (a *App) deleteJob(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	j, ok := a.jobs.Get(args[0])
	if !ok {
		return store.ErrNotFound
	}
	yes, err := Confirm(a.reader, fmt.Sprintf("Delete job %q on this device? The spreadsheet keeps its copy.", j.Name), a.out)
	if err != nil || !yes {
		return err
	}
	if err := a.jobs.Delete(ctx, j.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Job deleted.")
	return nil
}
