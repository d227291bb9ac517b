// Package container opens media files and exposes their metadata tag bags.
//
// Two implementations are provided: MemoryOpener keeps everything in memory
// and FileOpener persists through TagLib. Both buffer every mutation until
// Save, so a failed tagging pass never leaves a half-written file behind.
package container

import "errors"

var (
	// ErrNotFound is returned when the target file does not exist.
	ErrNotFound = errors.New("container: file not found")
	// ErrClosed is returned when a closed file is used.
	ErrClosed = errors.New("container: file closed")
	// ErrBusy is returned when another process holds the file open for
	// tagging.
	ErrBusy = errors.New("container: file is being tagged elsewhere")
)

// Properties are the decoded stream properties of a container.
type Properties struct {
	VideoWidth  int
	VideoHeight int
}

// Opener opens containers by path.
type Opener interface {
	Open(path string) (File, error)
}

// File is one opened container. A File must not be shared between
// goroutines.
type File interface {
	// Name returns the path the file was opened with.
	Name() string
	// RemoveAllTags drops every tag bag of every kind.
	RemoveAllTags()
	// AppleTag returns the iTunes-style tag bag, creating it when create is
	// true and none exists. It returns nil otherwise.
	AppleTag(create bool) *AppleTag
	// MatroskaTag returns the Matroska tag bag, creating it when create is
	// true and none exists. It returns nil otherwise.
	MatroskaTag(create bool) *MatroskaTag
	Properties() Properties
	// Save persists the buffered tag state.
	Save() error
	Close() error
}
