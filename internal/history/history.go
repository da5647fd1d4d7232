// Package history is the append-only audit log for state-changing
// operations on categories and items.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Record struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`   // add|update|delete
	EntityType string    `json:"entity_type"` // Category|Item
	EntityID   int64     `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// ComposeID builds the natural key for a record:
// EntityType:operation:actor:YYYYMMDDTHHMMSS<micros>. The microsecond
// suffix keeps keys collision-resistant and sortable without a sequence.
func ComposeID(entityType, operation, actorID string, ts time.Time) string {
	ts = ts.UTC()
	return fmt.Sprintf("%s:%s:%s:%s%06d",
		entityType, operation, actorID,
		ts.Format("20060102T150405"), ts.Nanosecond()/1000)
}

// New builds a record for one committed state change.
func New(operation, entityType string, entityID int64, actorID string, ts time.Time) Record {
	return Record{
		ID:         ComposeID(entityType, operation, actorID, ts),
		Operation:  operation,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Timestamp:  ts.UTC(),
	}
}

// Filter narrows List results. Zero values mean "no filter".
type Filter struct {
	ActorID    string
	EntityType string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Append inserts one record. There is no update or delete.
func (r *Repo) Append(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO history (id, operation, entity_type, entity_id, actor_id, timestamp)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Operation, rec.EntityType, rec.EntityID, rec.ActorID,
		rec.Timestamp.UTC().UnixMicro())
	return err
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Record, error) {
	q := `SELECT id, operation, entity_type, entity_id, actor_id, timestamp FROM history`
	where := ""
	args := []any{}
	add := func(cond string, v any) {
		args = append(args, v)
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, len(args))
	}

	if f.ActorID != "" {
		add("actor_id=$%d", f.ActorID)
	}
	if f.EntityType != "" {
		add("entity_type=$%d", f.EntityType)
	}
	if !f.From.IsZero() {
		add("timestamp>=$%d", f.From.UTC().UnixMicro())
	}
	if !f.To.IsZero() {
		add("timestamp<=$%d", f.To.UTC().UnixMicro())
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	q += where + fmt.Sprintf(" ORDER BY timestamp DESC LIMIT $%d", len(args))
	args = append(args, f.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		var micros int64
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.EntityType, &rec.EntityID, &rec.ActorID, &micros); err != nil {
			return nil, err
		}
		rec.Timestamp = time.UnixMicro(micros).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountFor reports how many records exist for one entity. Used by tests
// to assert the at-most-one-commit property.
func (r *Repo) CountFor(ctx context.Context, entityType string, entityID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM history WHERE entity_type=$1 AND entity_id=$2`,
		entityType, entityID).Scan(&n)
	return n, err
}
