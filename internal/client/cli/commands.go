package cli

import "context"

// commands is the REPL table. Handlers print their own results; failures
// go through report.
func (a *App) commands() []command {
	wrap := func(fn func(ctx context.Context, args []string) error) func(context.Context, []string) error {
		return func(ctx context.Context, args []string) error {
			err := fn(ctx, args)
			a.report(err)
			return err
		}
	}

	return []command{
		{name: "login", args: "[email|id]", help: "sign in as a built-in account", run: wrap(a.login)},
		{name: "logout", help: "sign out", run: wrap(a.logout)},
		{name: "whoami", help: "show the signed-in user", run: wrap(a.whoami)},

		{name: "jobs", help: "list jobs", run: wrap(a.listJobs)},
		{name: "addjob", help: "create a job", admin: true, run: wrap(a.addJob)},
		{name: "editjob", args: "<job-id>", help: "edit a job", admin: true, run: wrap(a.editJob)},
		{name: "deljob", args: "<job-id>", help: "delete a job on this device", admin: true, run: wrap(a.deleteJob)},

		{name: "expenses", args: "[job-id]", help: "list expenses, optionally for one job", run: wrap(a.listExpenses)},
		{name: "addexpense", help: "record an expense by hand", run: wrap(a.addExpense)},
		{name: "scan", args: "<image> [job-id]", help: "read a receipt photo into a new expense", run: wrap(a.scan)},
		{name: "delexpense", args: "<expense-id>", help: "delete an expense on this device", admin: true, run: wrap(a.deleteExpense)},
		{name: "reconcile", args: "<expense-id>", help: "set the total to the sum of the items", run: wrap(a.reconcile)},
		{name: "dashboard", help: "spending overview", run: wrap(a.dashboard)},
		{name: "search", args: "<text>", help: "find expenses by merchant, job or notes", run: wrap(a.search)},

		{name: "sync", help: "push pending changes now", admin: true, run: wrap(a.push)},
		{name: "pull", help: "refresh from the spreadsheet", run: wrap(a.pull)},
		{name: "test", help: "test the spreadsheet connection", run: wrap(a.testConnection)},
		{name: "status", help: "show sync status", run: wrap(a.syncStatus)},
		{name: "seturl", args: "<url>", help: "set the spreadsheet web app URL", admin: true, run: wrap(a.setURL)},
		{name: "categories", args: "[a, b, ...]", help: "show or replace expense categories", run: wrap(a.categories)},
		{name: "profile", args: "[name] [emoji]", help: "show or change the company profile", run: wrap(a.profile)},
	}
}
