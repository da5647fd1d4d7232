package uploader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/bryngwalad/inventory/internal/gdrive"
	"github.com/bryngwalad/inventory/internal/history"
	"github.com/bryngwalad/inventory/internal/inventory"
)

// RemoteStore is the slice of the Drive API the processor needs.
// gdrive.Client implements it; gdrive.Unavailable stands in when uploads
// are disabled.
type RemoteStore interface {
	CreateFile(ctx context.Context, localPath, name, contentType string) (string, error)
	SetPublicRead(ctx context.Context, fileID string) error
}

// RemoteFactory resolves credentials and builds a client. Called once per
// job: credentials are not cached across jobs.
type RemoteFactory func(ctx context.Context) (RemoteStore, error)

// ItemUpdater commits the remote reference onto the owning item.
// Returns inventory.ErrItemNotFound when the item vanished after enqueue.
type ItemUpdater interface {
	SetImageFile(ctx context.Context, itemID int64, ref string) error
}

type AuditLog interface {
	Append(ctx context.Context, rec history.Record) error
}

// Processor runs one job end to end: resolve credentials, upload, commit
// the file id plus one history record, clean up the local file. Any error
// before the commit leaves the item untouched; the local filename remains
// its image reference.
type Processor struct {
	Remote RemoteFactory
	Items  ItemUpdater
	Audit  AuditLog
	Log    *slog.Logger

	Remove func(path string) error // local cleanup, defaults to os.Remove
	Now    func() time.Time
}

func NewProcessor(remote RemoteFactory, items ItemUpdater, audit AuditLog, log *slog.Logger) *Processor {
	return &Processor{
		Remote: remote,
		Items:  items,
		Audit:  audit,
		Log:    log,
		Remove: os.Remove,
		Now:    time.Now,
	}
}

func (p *Processor) Process(ctx context.Context, job Job) error {
	remote, err := p.Remote(ctx)
	if err != nil {
		return fmt.Errorf("resolve drive credentials: %w", err)
	}

	fileID, err := remote.CreateFile(ctx, job.LocalPath, job.RemoteName, job.ContentType)
	if err != nil {
		return err
	}
	if fileID == "" {
		// Never commit an empty reference.
		return gdrive.ErrEmptyFileID
	}

	// Best effort: the file is stored either way, public read just makes
	// the IMAGE_BASE_URL link work without auth.
	if err := remote.SetPublicRead(ctx, fileID); err != nil {
		p.Log.Warn("could not set public permission", "item_id", job.ItemID, "file_id", fileID, "error", err)
	}

	if err := p.Items.SetImageFile(ctx, job.ItemID, fileID); err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) {
			return fmt.Errorf("item %d no longer exists, dropping uploaded file %s: %w",
				job.ItemID, fileID, err)
		}
		return fmt.Errorf("commit file id for item %d: %w", job.ItemID, err)
	}

	rec := history.New("update", "Item", job.ItemID, job.ActorID, p.Now())
	if err := p.Audit.Append(ctx, rec); err != nil {
		// The image reference is already committed; report the gap rather
		// than undo a correct state.
		return fmt.Errorf("append history for item %d: %w", job.ItemID, err)
	}

	if err := p.Remove(job.LocalPath); err != nil {
		p.Log.Warn("could not remove local file after upload", "path", job.LocalPath, "error", err)
	}

	p.Log.Info("image synced to drive", "item_id", job.ItemID, "file_id", fileID)
	return nil
}
