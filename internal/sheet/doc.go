// Package sheet is a reference implementation of the spreadsheet web app the
// client syncs with. It keeps a Jobs sheet and an Expenses sheet, accepts the
// job, expense_batch and test payloads over POST and serves both sheets over
// GET, answering the way the hosted script does.
package sheet
