// Package gdrive wraps the two Google Drive calls the background uploader
// needs: create a file with content, and grant public read access.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

var (
	// ErrEmptyFileID is returned when the create call succeeds but the
	// response carries no file id. Committing an empty reference would
	// corrupt the owning record, so this is a hard failure.
	ErrEmptyFileID = errors.New("drive did not return a file id")

	// ErrUnavailable is returned by the Unavailable client.
	ErrUnavailable = errors.New("drive uploads are disabled")
)

// PermissionError classifies 403-class upload failures: authorization or
// storage-quota problems, as opposed to generic transport failures. Hint
// carries remediation guidance for the log.
type PermissionError struct {
	Code int
	Hint string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("drive permission or quota failure (HTTP %d): %v", e.Code, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

const quotaHint = "service accounts have no personal Drive storage quota; " +
	"point GDRIVE_FOLDER_ID at a Shared Drive folder the account can write to, " +
	"or use delegated-user credentials (GDRIVE_TOKEN_PATH / domain-wide delegation)"

type Client struct {
	svc      *drive.Service
	folderID string
}

// CreateFile uploads localPath under name and returns the Drive file id.
// SupportsAllDrives is always set: harmless for My Drive targets and
// required for Shared Drive folders, which are the only place a service
// account without personal quota can write.
func (c *Client) CreateFile(ctx context.Context, localPath, name, contentType string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer f.Close()

	meta := &drive.File{Name: name}
	if c.folderID != "" {
		meta.Parents = []string{c.folderID}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	created, err := c.svc.Files.Create(meta).
		Media(f, googleapi.ContentType(contentType)).
		Fields("id").
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return "", classify(err)
	}
	if created.Id == "" {
		return "", ErrEmptyFileID
	}
	return created.Id, nil
}

// SetPublicRead grants anyone read access to the file. Callers treat a
// failure as a warning: the file is already stored and reachable by
// authenticated means.
func (c *Client) SetPublicRead(ctx context.Context, fileID string) error {
	_, err := c.svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("set public read on %s: %w", fileID, err)
	}
	return nil
}

func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusForbidden {
		return &PermissionError{Code: gerr.Code, Hint: quotaHint, Err: err}
	}
	return fmt.Errorf("drive upload: %w", err)
}

// Unavailable stands in for the real client when drive uploads are
// disabled or cannot be constructed, so call sites stay free of
// availability checks.
type Unavailable struct{}

func (Unavailable) CreateFile(ctx context.Context, localPath, name, contentType string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) SetPublicRead(ctx context.Context, fileID string) error {
	return ErrUnavailable
}
