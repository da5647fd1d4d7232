package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bryngwalad/inventory/internal/history"
	"github.com/bryngwalad/inventory/internal/inventory"
	"github.com/bryngwalad/inventory/internal/storage"
	"github.com/bryngwalad/inventory/internal/uploader"
)

func CreateItemHandler(store inventory.Store, hist Audit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var it inventory.Item
		if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
			http.Error(w, "bad item payload", http.StatusBadRequest)
			return
		}
		created, err := store.CreateItem(r.Context(), it)
		if errors.Is(err, inventory.ErrCategoryNotFound) {
			http.Error(w, "category does not exist", http.StatusBadRequest)
			return
		}
		if err != nil {
			http.Error(w, "create item: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := hist.Append(r.Context(), history.New("add", "Item", created.ID, actorID(r), time.Now())); err != nil {
			http.Error(w, "history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(created)
	}
}

func ListItemsHandler(store inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var categoryID *int64
		if v := r.URL.Query().Get("category_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, "bad category_id", http.StatusBadRequest)
				return
			}
			categoryID = &id
		}
		items, err := store.ListItems(r.Context(), categoryID)
		if err != nil {
			http.Error(w, "list items: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(items)
	}
}

func GetItemHandler(store inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "itemID")
		if err != nil {
			http.Error(w, "bad item id", http.StatusBadRequest)
			return
		}
		it, err := store.GetItem(r.Context(), id)
		if errors.Is(err, inventory.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "get item: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(it)
	}
}

// UploadItemImageHandler saves the upload locally, points the item at the
// local filename right away, and enqueues a background job that will swap
// the reference for a Drive file id. The request never waits on Drive.
func UploadItemImageHandler(store inventory.Store, blobs storage.BlobStore, q Enqueuer, hist Audit, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "itemID")
		if err != nil {
			http.Error(w, "bad item id", http.StatusBadRequest)
			return
		}
		it, err := store.GetItem(r.Context(), id)
		if errors.Is(err, inventory.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "get item: "+err.Error(), http.StatusInternalServerError)
			return
		}

		f, fh, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		var categoryID int64
		if it.CategoryID != nil {
			categoryID = *it.CategoryID
		}
		now := time.Now().UTC()
		filename := fmt.Sprintf("%d-%d-%s%06d%s",
			categoryID, it.ID,
			now.Format("20060102T150405"), now.Nanosecond()/1000,
			filepath.Ext(fh.Filename))

		if _, err := blobs.Put(filename, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		// Local filename first, so the item always has an image reference
		// even if the background upload never succeeds.
		if err := store.SetImageFile(r.Context(), it.ID, filename); err != nil {
			http.Error(w, "update item: "+err.Error(), http.StatusInternalServerError)
			return
		}

		actor := actorID(r)
		q.Enqueue(uploader.Job{
			ItemID:      it.ID,
			LocalPath:   blobs.Path(filename),
			RemoteName:  filename,
			ContentType: fh.Header.Get("Content-Type"),
			ActorID:     actor,
			EnqueuedAt:  now,
		})

		if err := hist.Append(r.Context(), history.New("update", "Item", it.ID, actor, time.Now())); err != nil {
			http.Error(w, "history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename": filename,
			"url":      imageBaseURL + filename,
		})
	}
}

// GetItemImageURLHandler returns the image URL built from the configured
// base and the stored reference (local filename or Drive file id).
func GetItemImageURLHandler(store inventory.Store, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "itemID")
		if err != nil {
			http.Error(w, "bad item id", http.StatusBadRequest)
			return
		}
		it, err := store.GetItem(r.Context(), id)
		if errors.Is(err, inventory.ErrItemNotFound) {
			http.Error(w, "item not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "get item: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if it.ImageFile == "" {
			http.Error(w, "no image for item", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"filename": it.ImageFile,
			"url":      imageBaseURL + it.ImageFile,
		})
	}
}

func InventorySummaryHandler(store inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sum, err := store.Summary(r.Context())
		if err != nil {
			http.Error(w, "summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(sum)
	}
}
