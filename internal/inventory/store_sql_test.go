package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bryngwalad/inventory/internal/db"
	"github.com/bryngwalad/inventory/internal/inventory"
)

func newStore(t *testing.T) *inventory.SQLStore {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return inventory.NewSQLStore(dbh)
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c, err := s.CreateCategory(ctx, inventory.Category{Name: "tools", Description: "hand tools"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	got, err := s.GetCategory(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "tools" || got.Description != "hand tools" {
		t.Fatalf("unexpected category: %+v", got)
	}

	c.Name = "power tools"
	if _, err := s.UpdateCategory(ctx, c); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = s.GetCategory(ctx, c.ID)
	if got.Name != "power tools" {
		t.Fatalf("update not persisted: %+v", got)
	}

	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 1 {
		t.Fatalf("list: %v (%d)", err, len(cats))
	}

	if err := s.DeleteCategory(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetCategory(ctx, c.ID); !errors.Is(err, inventory.ErrCategoryNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := s.DeleteCategory(ctx, c.ID); !errors.Is(err, inventory.ErrCategoryNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCreateItemValidatesCategory(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	missing := int64(999)
	_, err := s.CreateItem(ctx, inventory.Item{Name: "hammer", CategoryID: &missing})
	if !errors.Is(err, inventory.ErrCategoryNotFound) {
		t.Fatalf("expected category validation error, got %v", err)
	}

	// without a category it is fine
	it, err := s.CreateItem(ctx, inventory.Item{Name: "hammer"})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if it.CategoryID != nil {
		t.Fatalf("expected nil category id")
	}
}

func TestListItemsByCategory(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c, _ := s.CreateCategory(ctx, inventory.Category{Name: "tools"})
	_, _ = s.CreateItem(ctx, inventory.Item{Name: "hammer", CategoryID: &c.ID})
	_, _ = s.CreateItem(ctx, inventory.Item{Name: "stray"})

	all, err := s.ListItems(ctx, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v (%d)", err, len(all))
	}
	inCat, err := s.ListItems(ctx, &c.ID)
	if err != nil || len(inCat) != 1 || inCat[0].Name != "hammer" {
		t.Fatalf("list by category: %v %+v", err, inCat)
	}
}

func TestSetImageFile(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	it, _ := s.CreateItem(ctx, inventory.Item{Name: "hammer"})

	if err := s.SetImageFile(ctx, it.ID, "0-1-20250101T000000.png"); err != nil {
		t.Fatalf("set local filename: %v", err)
	}
	got, _ := s.GetItem(ctx, it.ID)
	if got.ImageFile != "0-1-20250101T000000.png" {
		t.Fatalf("image file not set: %+v", got)
	}

	// local -> remote transition
	if err := s.SetImageFile(ctx, it.ID, "abc123"); err != nil {
		t.Fatalf("set file id: %v", err)
	}
	got, _ = s.GetItem(ctx, it.ID)
	if got.ImageFile != "abc123" {
		t.Fatalf("file id not committed: %+v", got)
	}

	if err := s.SetImageFile(ctx, 404, "abc123"); !errors.Is(err, inventory.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	c, _ := s.CreateCategory(ctx, inventory.Category{Name: "tools"})
	_, _ = s.CreateItem(ctx, inventory.Item{Name: "hammer", CategoryID: &c.ID})
	_, _ = s.CreateItem(ctx, inventory.Item{Name: "saw", CategoryID: &c.ID})
	_, _ = s.CreateItem(ctx, inventory.Item{Name: "stray"})

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(sum) != 2 {
		t.Fatalf("expected category row plus unassigned bucket, got %+v", sum)
	}
	if sum[0].CategoryID == nil || *sum[0].CategoryID != c.ID || sum[0].ItemCount != 2 {
		t.Fatalf("unexpected category row: %+v", sum[0])
	}
	if sum[1].CategoryID != nil || sum[1].CategoryName != "Unassigned" || sum[1].ItemCount != 1 {
		t.Fatalf("unexpected unassigned row: %+v", sum[1])
	}
}
