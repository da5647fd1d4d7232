package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) CreateCategory(ctx context.Context, c Category) (Category, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description) VALUES ($1,$2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *SQLStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, description FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetCategory(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM categories WHERE id=$1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return Category{}, err
	}
	return c, nil
}

func (s *SQLStore) UpdateCategory(ctx context.Context, c Category) (Category, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name=$1, description=$2 WHERE id=$3`,
		c.Name, c.Description, c.ID)
	if err != nil {
		return Category{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Category{}, err
	}
	if n == 0 {
		return Category{}, ErrCategoryNotFound
	}
	return c, nil
}

func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *SQLStore) CreateItem(ctx context.Context, it Item) (Item, error) {
	if it.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *it.CategoryID); err != nil {
			return Item{}, fmt.Errorf("create item: %w", err)
		}
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO items (name, category_id, description, image_file) VALUES ($1,$2,$3,$4) RETURNING id`,
		it.Name, it.CategoryID, it.Description, it.ImageFile).Scan(&it.ID)
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *SQLStore) ListItems(ctx context.Context, categoryID *int64) ([]Item, error) {
	q := `SELECT id, name, category_id, description, image_file FROM items`
	args := []any{}
	if categoryID != nil {
		q += ` WHERE category_id=$1`
		args = append(args, *categoryID)
	}
	q += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetItem(ctx context.Context, id int64) (Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, category_id, description, image_file FROM items WHERE id=$1`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

func (s *SQLStore) SetImageFile(ctx context.Context, itemID int64, ref string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET image_file=$1 WHERE id=$2`, ref, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (s *SQLStore) Summary(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, COUNT(i.id)
		 FROM categories c LEFT JOIN items i ON i.category_id = c.id
		 GROUP BY c.id, c.name ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var cc CategoryCount
		var id int64
		if err := rows.Scan(&id, &cc.CategoryName, &cc.ItemCount); err != nil {
			return nil, err
		}
		cc.CategoryID = &id
		out = append(out, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var unassigned int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE category_id IS NULL`).Scan(&unassigned); err != nil {
		return nil, err
	}
	if unassigned > 0 {
		out = append(out, CategoryCount{CategoryName: "Unassigned", ItemCount: unassigned})
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (Item, error) {
	var it Item
	var cat sql.NullInt64
	if err := row.Scan(&it.ID, &it.Name, &cat, &it.Description, &it.ImageFile); err != nil {
		return Item{}, err
	}
	if cat.Valid {
		it.CategoryID = &cat.Int64
	}
	return it, nil
}
