package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/bryngwalad/inventory/internal/api/http"
	"github.com/bryngwalad/inventory/internal/config"
	"github.com/bryngwalad/inventory/internal/db"
	"github.com/bryngwalad/inventory/internal/gdrive"
	"github.com/bryngwalad/inventory/internal/history"
	"github.com/bryngwalad/inventory/internal/inventory"
	"github.com/bryngwalad/inventory/internal/logging"
	"github.com/bryngwalad/inventory/internal/storage"
	"github.com/bryngwalad/inventory/internal/uploader"
)

func main() {
	cfg := config.FromEnv()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Error("db open failed", "error", err)
		os.Exit(1)
	}
	store := inventory.NewSQLStore(dbh)
	hist := history.NewRepo(dbh)

	blobs, err := storage.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.Error("upload dir", "error", err)
		os.Exit(1)
	}

	// --- Background uploader ---
	// The queue and worker are owned here and passed in explicitly; no
	// package reaches for them as globals.
	drvCfg := gdrive.Config{
		TokenPath:   cfg.DriveTokenPath,
		CredsPath:   cfg.DriveCredsPath,
		FolderID:    cfg.DriveFolderID,
		Impersonate: cfg.DriveImpersonate,
	}
	remote := func(ctx context.Context) (uploader.RemoteStore, error) {
		return gdrive.Resolve(ctx, drvCfg, log)
	}
	if !cfg.DriveEnabled {
		log.Warn("drive uploads disabled; enqueued jobs will be dropped with an error")
		remote = func(context.Context) (uploader.RemoteStore, error) {
			return gdrive.Unavailable{}, nil
		}
	}

	queue := uploader.NewQueue(cfg.QueueCapacity, log)
	proc := uploader.NewProcessor(remote, store, hist, log)
	worker := uploader.NewWorker(queue, proc, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go worker.Run(workerCtx)

	log.Info("drive uploader started",
		"credentials", cfg.DriveCredsPath, "token", cfg.DriveTokenPath,
		"folder", cfg.DriveFolderID, "queue_capacity", cfg.QueueCapacity)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-User-Id"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/categories/", api.CreateCategoryHandler(store, hist))
	r.Get("/categories/", api.ListCategoriesHandler(store))
	r.Get("/categories/{categoryID}", api.GetCategoryHandler(store))
	r.Put("/categories/{categoryID}", api.UpdateCategoryHandler(store, hist))
	r.Delete("/categories/{categoryID}", api.DeleteCategoryHandler(store, hist))

	r.Post("/items/", api.CreateItemHandler(store, hist))
	r.Get("/items/", api.ListItemsHandler(store))
	r.Get("/items/{itemID}", api.GetItemHandler(store))
	r.Post("/items/{itemID}/image", api.UploadItemImageHandler(store, blobs, queue, hist, cfg.ImageBaseURL))
	r.Get("/items/{itemID}/image", api.GetItemImageURLHandler(store, cfg.ImageBaseURL))

	r.Get("/history/", api.ListHistoryHandler(hist, cfg.IsAdmin))
	r.Get("/inventory/", api.InventorySummaryHandler(store))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	// --- Shutdown: stop ingress, close the queue, then wait for the
	// worker to finish its in-flight job within the grace period. ---
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}

	queue.Close()
	stopWorker()
	if !worker.Wait(cfg.ShutdownGrace) {
		log.Warn("upload worker did not stop in time; in-flight upload continues detached")
	}
}
