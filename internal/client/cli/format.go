package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/shopspring/decimal"
)

func money(currency string, d decimal.Decimal) string {
	if currency == "" {
		currency = models.DefaultCurrency
	}
	return currency + d.StringFixed(2)
}

func syncMark(synced bool) string {
	if synced {
		return " "
	}
	return "*"
}

func printJobs(w io.Writer, jobs []models.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs.")
		return
	}
	width := terminalWidth()
	name := max(12, width-60)
	for _, j := range jobs {
		fmt.Fprintf(w, "%s %-16s %-*s %-10s %12s  %s\n",
			syncMark(j.IsSynced), j.ID, name, truncate(j.Name, name), j.Status,
			money("", j.Budget), truncate(j.Client, 20))
	}
}

func printExpenses(w io.Writer, expenses []models.Expense, jobs []models.Job) {
	if len(expenses) == 0 {
		fmt.Fprintln(w, "No expenses.")
		return
	}
	width := terminalWidth()
	merchant := max(12, width-80)
	for _, e := range expenses {
		fmt.Fprintf(w, "%s %-36s %-10s %-*s %12s  %-14s %s\n",
			syncMark(e.IsSynced), e.ID, e.Date, merchant, truncate(e.MerchantName, merchant),
			money(e.Currency, e.TotalAmount), truncate(e.Category, 14),
			truncate(models.JobName(jobs, e.JobID, "Unknown Job"), 20))
	}
}

func printExpense(w io.Writer, e models.Expense, jobs []models.Job) {
	fmt.Fprintf(w, "Merchant: %s\n", e.MerchantName)
	fmt.Fprintf(w, "Date:     %s\n", e.Date)
	fmt.Fprintf(w, "Job:      %s\n", models.JobName(jobs, e.JobID, "Unknown Job"))
	fmt.Fprintf(w, "Category: %s\n", e.Category)
	fmt.Fprintf(w, "Total:    %s (tax %s)\n", money(e.Currency, e.TotalAmount), money(e.Currency, e.TaxAmount))
	for i, it := range e.Items {
		job := ""
		if it.JobID != "" && it.JobID != e.JobID {
			job = " -> " + models.JobName(jobs, it.JobID, it.JobID)
		}
		fmt.Fprintf(w, "  %d. %-30s %10s%s\n", i+1, truncate(it.Description, 30), money(e.Currency, it.Amount), job)
	}
	if !e.ItemsTotal().Equal(e.TotalAmount) && len(e.Items) > 0 {
		fmt.Fprintf(w, "Items add up to %s (use reconcile to fix the total)\n", money(e.Currency, e.ItemsTotal()))
	}
	if strings.TrimSpace(e.Notes) != "" {
		fmt.Fprintf(w, "Notes:    %s\n", e.Notes)
	}
	if e.ImageURL != "" {
		fmt.Fprintf(w, "Image:    %s\n", e.ImageURL)
	}
}
