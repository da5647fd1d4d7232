// Package http holds the chi handlers for the inventory API. Mutating
// handlers identify the caller from the X-User-Id header and append an
// audit record for every committed change.
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bryngwalad/inventory/internal/history"
	"github.com/bryngwalad/inventory/internal/uploader"
)

// Audit is the append-only history sink. *history.Repo satisfies it.
type Audit interface {
	Append(ctx context.Context, rec history.Record) error
}

// Enqueuer hands jobs to the background uploader. Never blocks.
type Enqueuer interface {
	Enqueue(job uploader.Job)
}

func actorID(r *http.Request) string {
	if v := r.Header.Get("X-User-Id"); v != "" {
		return v
	}
	return "system"
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}
