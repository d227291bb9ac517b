package tagging

import (
	"errors"
	"fmt"
)

// The closed set of tagging failure kinds. Every error returned by a Tagger
// is a *TagError whose Kind is one of these.
var (
	ErrUnsupportedFormat = errors.New("unsupported container format")
	ErrPayload           = errors.New("invalid payload")
	ErrOpen              = errors.New("open container")
	ErrClear             = errors.New("clear tags")
	ErrTagBag            = errors.New("obtain tag bag")
	ErrApply             = errors.New("apply tags")
	ErrSave              = errors.New("save container")
)

var kindNames = map[error]string{
	ErrUnsupportedFormat: "unsupported_format",
	ErrPayload:           "payload",
	ErrOpen:              "open",
	ErrClear:             "clear",
	ErrTagBag:            "tag_bag",
	ErrApply:             "apply",
	ErrSave:              "save",
}

// TagError reports why tagging one file failed.
type TagError struct {
	Kind error
	Path string
	Err  error
}

func (e *TagError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tag %s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("tag %s: %v: %v", e.Path, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *TagError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// KindName returns a short stable name for the error kind, for logs.
func (e *TagError) KindName() string {
	if name, ok := kindNames[e.Kind]; ok {
		return name
	}
	return "unknown"
}
