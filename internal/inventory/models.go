package inventory

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Item struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CategoryID  *int64 `json:"category_id"`
	Description string `json:"description"`
	// ImageFile holds the local filename right after an upload request is
	// accepted, and the Drive file id once the background upload commits.
	// It never goes back from file id to filename.
	ImageFile string `json:"image_file"`
}

// CategoryCount is one row of the inventory summary. CategoryID is nil for
// the bucket of items without a category.
type CategoryCount struct {
	CategoryID   *int64 `json:"category_id"`
	CategoryName string `json:"category_name"`
	ItemCount    int    `json:"item_count"`
}
