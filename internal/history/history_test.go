package history_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bryngwalad/inventory/internal/db"
	"github.com/bryngwalad/inventory/internal/history"
)

func newRepo(t *testing.T) *history.Repo {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return history.NewRepo(dbh)
}

func TestComposeID(t *testing.T) {
	ts := time.Date(2025, 1, 1, 12, 30, 45, 123456000, time.UTC)
	got := history.ComposeID("Item", "update", "alice", ts)
	want := "Item:update:alice:20250101T123045123456"
	if got != want {
		t.Fatalf("ComposeID = %q, want %q", got, want)
	}
}

func TestAppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seed := []history.Record{
		history.New("add", "Category", 1, "alice", base),
		history.New("update", "Item", 42, "bob", base.Add(time.Hour)),
		history.New("update", "Item", 42, "alice", base.Add(2*time.Hour)),
		history.New("delete", "Category", 1, "alice", base.Add(48*time.Hour)),
	}
	for _, rec := range seed {
		if err := repo.Append(ctx, rec); err != nil {
			t.Fatalf("append %s: %v", rec.ID, err)
		}
	}

	all, err := repo.List(ctx, history.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records, got %d", len(all))
	}
	// most recent first
	if all[0].Operation != "delete" || all[3].Operation != "add" {
		t.Fatalf("unexpected order: %+v", all)
	}

	byActor, err := repo.List(ctx, history.Filter{ActorID: "bob"})
	if err != nil || len(byActor) != 1 || byActor[0].EntityID != 42 {
		t.Fatalf("actor filter: %v %+v", err, byActor)
	}

	byType, err := repo.List(ctx, history.Filter{EntityType: "Item"})
	if err != nil || len(byType) != 2 {
		t.Fatalf("entity filter: %v %+v", err, byType)
	}

	window, err := repo.List(ctx, history.Filter{
		From: base.Add(30 * time.Minute),
		To:   base.Add(3 * time.Hour),
	})
	if err != nil || len(window) != 2 {
		t.Fatalf("window filter: %v %+v", err, window)
	}

	paged, err := repo.List(ctx, history.Filter{Limit: 2, Offset: 1})
	if err != nil || len(paged) != 2 {
		t.Fatalf("pagination: %v %+v", err, paged)
	}
	if paged[0].ID != all[1].ID {
		t.Fatalf("offset not applied: got %s want %s", paged[0].ID, all[1].ID)
	}
}

func TestCountFor(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	now := time.Now()
	_ = repo.Append(ctx, history.New("update", "Item", 42, "alice", now))
	_ = repo.Append(ctx, history.New("update", "Item", 42, "alice", now.Add(time.Second)))
	_ = repo.Append(ctx, history.New("update", "Item", 7, "alice", now))

	n, err := repo.CountFor(ctx, "Item", 42)
	if err != nil || n != 2 {
		t.Fatalf("CountFor = %d, %v", n, err)
	}
}
