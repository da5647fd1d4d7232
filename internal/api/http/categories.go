package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bryngwalad/inventory/internal/history"
	"github.com/bryngwalad/inventory/internal/inventory"
)

func CreateCategoryHandler(store inventory.Store, hist Audit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c inventory.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad category payload", http.StatusBadRequest)
			return
		}
		created, err := store.CreateCategory(r.Context(), c)
		if err != nil {
			http.Error(w, "create category: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := hist.Append(r.Context(), history.New("add", "Category", created.ID, actorID(r), time.Now())); err != nil {
			http.Error(w, "history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(created)
	}
}

func ListCategoriesHandler(store inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := store.ListCategories(r.Context())
		if err != nil {
			http.Error(w, "list categories: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(cats)
	}
}

func GetCategoryHandler(store inventory.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "categoryID")
		if err != nil {
			http.Error(w, "bad category id", http.StatusBadRequest)
			return
		}
		c, err := store.GetCategory(r.Context(), id)
		if errors.Is(err, inventory.ErrCategoryNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "get category: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(c)
	}
}

func UpdateCategoryHandler(store inventory.Store, hist Audit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "categoryID")
		if err != nil {
			http.Error(w, "bad category id", http.StatusBadRequest)
			return
		}
		var c inventory.Category
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad category payload", http.StatusBadRequest)
			return
		}
		c.ID = id
		updated, err := store.UpdateCategory(r.Context(), c)
		if errors.Is(err, inventory.ErrCategoryNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "update category: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := hist.Append(r.Context(), history.New("update", "Category", id, actorID(r), time.Now())); err != nil {
			http.Error(w, "history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(updated)
	}
}

func DeleteCategoryHandler(store inventory.Store, hist Audit) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "categoryID")
		if err != nil {
			http.Error(w, "bad category id", http.StatusBadRequest)
			return
		}
		err = store.DeleteCategory(r.Context(), id)
		if errors.Is(err, inventory.ErrCategoryNotFound) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "delete category: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if err := hist.Append(r.Context(), history.New("delete", "Category", id, actorID(r), time.Now())); err != nil {
			http.Error(w, "history: "+err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}
}
