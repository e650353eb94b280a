// Package images keeps receipt photos, either in a local directory or in an
// S3-compatible bucket, and hands back a reference for Expense.ImageURL.
package images

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contractorbook/internal/filex"
	"github.com/google/uuid"
)

type Store interface {
	// Put stores data and returns the reference to keep on the expense.
	Put(ctx context.Context, data []byte) (string, error)
	// Link turns a reference returned by Put into something a user can open.
	Link(ctx context.Context, ref string) (string, error)
}

// storageKey lays receipts out by day.
func storageKey(now time.Time, data []byte) (key, contentType string) {
	contentType = http.DetectContentType(data)
	return fmt.Sprintf("receipts/%d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(), uuid.New(), filex.ExtFor(contentType)), contentType
}
