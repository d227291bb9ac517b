// Package tagging writes movie and TV episode metadata into MP4 and Matroska
// tag containers.
package tagging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Aftnet/NetMediaInfoLib/internal/container"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	"github.com/sirupsen/logrus"
)

// Tagger replaces all tags of a file with those derived from a movie or an
// episode. It holds no state between calls, so one Tagger can serve many
// goroutines as long as they never tag the same file at the same time.
type Tagger struct {
	opener container.Opener
	logger logrus.FieldLogger
}

// Option configures a Tagger.
type Option func(*Tagger)

// WithLogger sets the logger failures are reported to.
func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Tagger) {
		t.logger = l
	}
}

// NewTagger creates a Tagger that opens files through opener.
func NewTagger(opener container.Opener, opts ...Option) *Tagger {
	t := &Tagger{opener: opener, logger: log.Logger()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TagMovie tags path with movie and reports whether it succeeded. Failure
// details are logged.
func (t *Tagger) TagMovie(movie *media.Movie, path string) bool {
	return t.TagMovieErr(movie, path) == nil
}

// TagEpisode tags path with ep and reports whether it succeeded. Failure
// details are logged.
func (t *Tagger) TagEpisode(ep *media.TVEpisode, path string) bool {
	return t.TagEpisodeErr(ep, path) == nil
}

// TagMovieErr is TagMovie returning the failure as a *TagError.
func (t *Tagger) TagMovieErr(movie *media.Movie, path string) error {
	return t.tag(path, media.KindMovie, func() (Fields, error) {
		return MovieFields(movie)
	})
}

// TagEpisodeErr is TagEpisode returning the failure as a *TagError.
func (t *Tagger) TagEpisodeErr(ep *media.TVEpisode, path string) error {
	return t.tag(path, media.KindEpisode, func() (Fields, error) {
		return EpisodeFields(ep)
	})
}

func (t *Tagger) tag(path string, kind media.Kind, build func() (Fields, error)) error {
	format, ok := FormatFor(path)
	if !ok {
		err := fmt.Errorf("extension %q is not one of %s", filepath.Ext(path), strings.Join(SupportedExtensions(), " "))
		return t.fail(&TagError{Kind: ErrUnsupportedFormat, Path: path, Err: err}, format, kind)
	}
	if err := t.run(path, format, build); err != nil {
		return t.fail(err, format, kind)
	}
	return nil
}

// run performs one open, clear, apply and save transaction. Panics raised by
// collaborators are converted into the error kind of the stage they hit.
func (t *Tagger) run(path string, format Format, build func() (Fields, error)) (err error) {
	stage := ErrPayload
	defer func() {
		if r := recover(); r != nil {
			err = &TagError{Kind: stage, Path: path, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	fields, err := build()
	if err != nil {
		return &TagError{Kind: ErrPayload, Path: path, Err: err}
	}

	stage = ErrOpen
	file, err := t.opener.Open(path)
	if err != nil {
		return &TagError{Kind: ErrOpen, Path: path, Err: err}
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			t.logger.WithFields(logrus.Fields{"file": path, "error": cerr}).Debug("Failed to close container")
		}
	}()

	stage = ErrClear
	file.RemoveAllTags()

	stage = ErrTagBag
	target := format.target(file)
	if target == nil {
		return &TagError{Kind: ErrTagBag, Path: path, Err: fmt.Errorf("no %s tag", format)}
	}

	stage = ErrApply
	applyBasic(target, fields)
	target.applyExtra(fields, file.Properties())

	stage = ErrSave
	if err := file.Save(); err != nil {
		return &TagError{Kind: ErrSave, Path: path, Err: err}
	}
	return nil
}

func (t *Tagger) fail(err error, format Format, kind media.Kind) error {
	var te *TagError
	if !errors.As(err, &te) {
		return err
	}
	entry := t.logger.WithFields(logrus.Fields{
		"file":    te.Path,
		"format":  format.String(),
		"kind":    te.KindName(),
		"payload": string(kind),
	})
	if te.Err != nil {
		entry = entry.WithError(te.Err)
	}
	entry.Warn("Tagging failed")
	return te
}
