package inventory

import (
	"context"
	"errors"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrItemNotFound     = errors.New("item not found")
)

type Store interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateItem(ctx context.Context, it Item) (Item, error)
	ListItems(ctx context.Context, categoryID *int64) ([]Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)

	// SetImageFile replaces the item's image reference in a short-lived
	// statement of its own. Returns ErrItemNotFound when the item is gone.
	SetImageFile(ctx context.Context, itemID int64, ref string) error

	Summary(ctx context.Context) ([]CategoryCount, error)
}
