package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/bryngwalad/inventory/internal/history"
)

type HistoryLister interface {
	List(ctx context.Context, f history.Filter) ([]history.Record, error)
}

// ListHistoryHandler serves the audit log. Only callers whose X-User-Id
// passes isAdmin may read it.
func ListHistoryHandler(repo HistoryLister, isAdmin func(userID string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(actorID(r)) {
			http.Error(w, "admin user required to access history", http.StatusForbidden)
			return
		}

		q := r.URL.Query()
		f := history.Filter{
			ActorID:    q.Get("user_id"),
			EntityType: q.Get("entity_type"),
			Limit:      100,
		}

		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 1000 {
				http.Error(w, "limit must be between 1 and 1000", http.StatusBadRequest)
				return
			}
			f.Limit = n
		}
		if v := q.Get("offset"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				http.Error(w, "offset must be >= 0", http.StatusBadRequest)
				return
			}
			f.Offset = n
		}

		if v := q.Get("date_from"); v != "" {
			t, _, err := parseISO(v)
			if err != nil {
				http.Error(w, "date_from must be ISO format (YYYY-MM-DD or full ISO datetime)", http.StatusBadRequest)
				return
			}
			f.From = t
		}
		if v := q.Get("date_to"); v != "" {
			t, dateOnly, err := parseISO(v)
			if err != nil {
				http.Error(w, "date_to must be ISO format (YYYY-MM-DD or full ISO datetime)", http.StatusBadRequest)
				return
			}
			if dateOnly {
				// include the whole day
				t = t.Add(24*time.Hour - time.Microsecond)
			}
			f.To = t
		}

		recs, err := repo.List(r.Context(), f)
		if err != nil {
			http.Error(w, "list history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(recs)
	}
}

func parseISO(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse("2006-01-02", s); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t, false, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	return t, false, err
}
