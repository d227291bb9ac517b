package container

import (
	"sync"
)

// MemoryOpener serves containers held entirely in memory. Files opened from
// it work on a private copy of the stored state; Save publishes the copy
// back. It is safe for concurrent use.
type MemoryOpener struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	props    Properties
	apple    *AppleTag
	matroska *MatroskaTag
	openErr  error
	saveErr  error
	opens    int
	saves    int
}

// NewMemoryOpener creates an empty MemoryOpener.
func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{entries: make(map[string]*memoryEntry)}
}

// Put registers an untagged container at path.
func (o *MemoryOpener) Put(path string, props Properties) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries[path] = &memoryEntry{props: props}
}

// FailOpen makes every Open of path return err.
func (o *MemoryOpener) FailOpen(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entry(path).openErr = err
}

// FailSave makes every Save of a file opened from path return err.
func (o *MemoryOpener) FailSave(path string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entry(path).saveErr = err
}

// Open implements Opener.
func (o *MemoryOpener) Open(path string) (File, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	e, ok := o.entries[path]
	if !ok {
		return nil, ErrNotFound
	}
	e.opens++
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &memoryFile{
		opener:   o,
		path:     path,
		props:    e.props,
		apple:    e.apple.clone(),
		matroska: e.matroska.clone(),
	}, nil
}

// AppleTag returns a copy of the saved Apple tag bag at path.
func (o *MemoryOpener) AppleTag(path string) *AppleTag {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[path]; ok {
		return e.apple.clone()
	}
	return nil
}

// MatroskaTag returns a copy of the saved Matroska tag bag at path.
func (o *MemoryOpener) MatroskaTag(path string) *MatroskaTag {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[path]; ok {
		return e.matroska.clone()
	}
	return nil
}

// Opens reports how many times path was opened.
func (o *MemoryOpener) Opens(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[path]; ok {
		return e.opens
	}
	return 0
}

// Saves reports how many times path was saved successfully.
func (o *MemoryOpener) Saves(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[path]; ok {
		return e.saves
	}
	return 0
}

// entry must be called with mu held.
func (o *MemoryOpener) entry(path string) *memoryEntry {
	e, ok := o.entries[path]
	if !ok {
		e = &memoryEntry{}
		o.entries[path] = e
	}
	return e
}

func (o *MemoryOpener) save(f *memoryFile) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	e := o.entry(f.path)
	if e.saveErr != nil {
		return e.saveErr
	}
	e.apple = f.apple.clone()
	e.matroska = f.matroska.clone()
	e.saves++
	return nil
}

type memoryFile struct {
	opener   *MemoryOpener
	path     string
	props    Properties
	apple    *AppleTag
	matroska *MatroskaTag
	closed   bool
}

func (f *memoryFile) Name() string { return f.path }

func (f *memoryFile) RemoveAllTags() {
	f.apple = nil
	f.matroska = nil
}

func (f *memoryFile) AppleTag(create bool) *AppleTag {
	if f.apple == nil && create {
		f.apple = &AppleTag{}
	}
	return f.apple
}

func (f *memoryFile) MatroskaTag(create bool) *MatroskaTag {
	if f.matroska == nil && create {
		f.matroska = &MatroskaTag{}
	}
	return f.matroska
}

func (f *memoryFile) Properties() Properties { return f.props }

func (f *memoryFile) Save() error {
	if f.closed {
		return ErrClosed
	}
	return f.opener.save(f)
}

func (f *memoryFile) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	return nil
}
