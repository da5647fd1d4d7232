// Package uploader is the background pipeline that pushes locally saved
// item images to Google Drive and swaps the item's image reference for the
// Drive file id. One queue, one worker, one job in flight at a time.
package uploader

import "time"

// Job describes one pending image upload. Built once by the upload
// handler, consumed exactly once by the worker, never mutated.
type Job struct {
	ItemID      int64
	LocalPath   string // where the handler wrote the file
	RemoteName  string // desired Drive file name
	ContentType string
	ActorID     string
	EnqueuedAt  time.Time
}
