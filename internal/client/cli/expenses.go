package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/dmitrijs2005/contractorbook/internal/client/services"
	"github.com/dmitrijs2005/contractorbook/internal/client/store"
	"github.com/dmitrijs2005/contractorbook/internal/filex"
	"github.com/shopspring/decimal"
)

func (a *App) listExpenses(_ context.Context, args []string) error {
	jobID := ""
	if len(args) > 0 {
		jobID = args[0]
	}
	printExpenses(a.out, a.expenses.List(jobID), a.jobs.List())
	return nil
}

func (a *App) search(_ context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	printExpenses(a.out, a.expenses.Search(strings.Join(args, " "), ""), a.jobs.List())
	return nil
}

func (a *App) chooseJob(def string) (string, error) {
	active := a.jobs.Active()
	if def == "" && len(active) > 0 {
		def = active[0].ID
	}
	for _, j := range active {
		fmt.Fprintf(a.out, "  %-16s %s\n", j.ID, j.Name)
	}
	return GetDefault(a.reader, "Job", def, a.out)
}

// parseItem reads "description; amount[; job-id]".
func parseItem(line string) (models.LineItem, error) {
	parts := strings.Split(line, ";")
	if len(parts) < 2 {
		return models.LineItem{}, fmt.Errorf("want \"description; amount[; job-id]\", got %q", line)
	}
	amount, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(parts[1])))
	if err != nil {
		return models.LineItem{}, fmt.Errorf("item amount %q: %w", parts[1], err)
	}
	it := models.LineItem{Description: strings.TrimSpace(parts[0]), Amount: amount}
	if len(parts) > 2 {
		it.JobID = strings.TrimSpace(parts[2])
	}
	return it, nil
}

// promptExpense edits the user-facing fields of e in place.
func (a *App) promptExpense(e models.Expense, withItems bool) (models.Expense, error) {
	var err error
	if e.JobID, err = a.chooseJob(e.JobID); err != nil {
		return e, err
	}
	if e.MerchantName, err = GetDefault(a.reader, "Merchant", e.MerchantName, a.out); err != nil {
		return e, err
	}
	if e.Date == "" {
		e.Date = time.Now().Format(time.DateOnly)
	}
	if e.Date, err = GetDefault(a.reader, "Date (YYYY-MM-DD)", e.Date, a.out); err != nil {
		return e, err
	}

	if withItems {
		lines, err := GetMultiline(a.reader, "Items, one per line: description; amount[; job-id]", a.out)
		if err != nil {
			return e, err
		}
		for _, l := range lines {
			it, err := parseItem(l)
			if err != nil {
				fmt.Fprintln(a.out, "Skipped:", err)
				continue
			}
			e.Items = append(e.Items, it)
		}
		if e.TotalAmount.IsZero() {
			e.TotalAmount = e.ItemsTotal()
		}
	}

	if e.TotalAmount, err = GetAmount(a.reader, "Total", e.TotalAmount, a.out); err != nil {
		return e, err
	}
	if e.TaxAmount, err = GetAmount(a.reader, "Tax", e.TaxAmount, a.out); err != nil {
		return e, err
	}
	fmt.Fprintln(a.out, "Categories:", strings.Join(a.settings.Categories(), ", "))
	if e.Category, err = GetDefault(a.reader, "Category", e.Category, a.out); err != nil {
		return e, err
	}
	if e.Notes, err = GetDefault(a.reader, "Notes", e.Notes, a.out); err != nil {
		return e, err
	}
	return e, nil
}

func (a *App) addExpense(ctx context.Context, _ []string) error {
	if a.session.Current() == nil {
		return services.ErrNotSignedIn
	}
	e, err := a.promptExpense(models.Expense{}, true)
	if err != nil {
		return err
	}
	saved, err := a.expenses.Save(ctx, e)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense %s saved, it will sync shortly.\n", saved.ID)
	return nil
}

func (a *App) scan(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if a.session.Current() == nil {
		return services.ErrNotSignedIn
	}
	data, err := filex.ReadImage(args[0])
	if err != nil {
		return err
	}
	jobID := ""
	if len(args) > 1 {
		jobID = args[1]
	}

	fmt.Fprintln(a.out, "Reading receipt...")
	draft, err := a.expenses.Scan(ctx, data, jobID)
	if err != nil {
		return err
	}
	printExpense(a.out, draft, a.jobs.List())

	if draft, err = a.promptExpense(draft, false); err != nil {
		return err
	}
	yes, err := Confirm(a.reader, "Save this expense?", a.out)
	if err != nil || !yes {
		return err
	}
	saved, err := a.expenses.Save(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Expense %s saved, it will sync shortly.\n", saved.ID)
	return nil
}

func (a *App) deleteExpense(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	e, ok := a.expenses.Get(args[0])
	if !ok {
		return store.ErrNotFound
	}
	yes, err := Confirm(a.reader, fmt.Sprintf("Delete %s %s on this device?", e.MerchantName, money(e.Currency, e.TotalAmount)), a.out)
	if err != nil || !yes {
		return err
	}
	if err := a.expenses.Delete(ctx, e.ID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Expense deleted.")
	return nil
}

func (a *App) reconcile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	e, err := a.expenses.Reconcile(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Total set to %s.\n", money(e.Currency, e.TotalAmount))
	return nil
}

func (a *App) dashboard(context.Context, []string) error {
	d := a.expenses.Dashboard()
	p := a.settings.Profile()

	fmt.Fprintf(a.out, "%s %s\n", p.LogoEmoji, p.CompanyName)
	fmt.Fprintf(a.out, "Total spent: %s   Pending sync: %d\n\n", money("", d.TotalSpent), d.Pending)
	for _, js := range d.Jobs {
		flag := ""
		if js.OverBudget() {
			flag = "  OVER BUDGET"
		}
		fmt.Fprintf(a.out, "%-28s %12s of %12s%s\n", truncate(js.Job.Name, 28),
			money("", js.Spent), money("", js.Job.Budget), flag)
	}
	if len(d.Recent) > 0 {
		fmt.Fprintln(a.out, "\nRecent:")
		printExpenses(a.out, d.Recent, a.jobs.List())
	}
	return nil
}
