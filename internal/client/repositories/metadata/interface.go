// Package metadata stores small key/value settings of the local book.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeyUser        = "user"
	KeyCategories  = "categories"
	KeyProfile     = "profile"
	KeyEndpointURL = "endpoint_url"
	KeyJobsSeeded  = "jobs_seeded"
)
