package container

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Aftnet/NetMediaInfoLib/internal/log"
)

// TagLib has no Matroska support, so .mkv files go through MKVToolNix.
const (
	mkvmergeCommand    = "mkvmerge"
	mkvextractCommand  = "mkvextract"
	mkvpropeditCommand = "mkvpropedit"

	mkvToolTimeout = 2 * time.Minute
)

// ErrMatroskaTools is returned when an MKVToolNix binary is not installed.
var ErrMatroskaTools = errors.New("container: MKVToolNix (mkvmerge, mkvextract, mkvpropedit) is required for Matroska files")

// commandRunner executes an external tool and returns its standard output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output() //nolint:gosec
	if err == nil {
		return out, nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s not found", ErrMatroskaTools, name)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// MKVToolNix exits with 1 when it only emitted warnings.
		if exitErr.ExitCode() == 1 {
			log.Logger().WithField("command", name).Warnf("%s reported warnings: %s", name, strings.TrimSpace(string(exitErr.Stderr)))
			return out, nil
		}
		detail := strings.TrimSpace(string(exitErr.Stderr))
		if detail == "" {
			detail = strings.TrimSpace(string(out))
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, detail)
	}
	return nil, fmt.Errorf("%s: %w", name, err)
}

// mkvIdentity is the part of `mkvmerge -J` output the tagger needs.
type mkvIdentity struct {
	Container struct {
		Recognized bool   `json:"recognized"`
		Type       string `json:"type"`
	} `json:"container"`
	Attachments []mkvAttachment `json:"attachments"`
	GlobalTags  []struct {
		NumEntries int `json:"num_entries"`
	} `json:"global_tags"`
}

type mkvAttachment struct {
	ID          int    `json:"id"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Properties  struct {
		UID uint64 `json:"uid"`
	} `json:"properties"`
}

// isCover matches the cover.jpg / cover.png attachment naming convention.
func (a mkvAttachment) isCover() bool {
	return strings.HasPrefix(strings.ToLower(a.FileName), "cover") &&
		strings.HasPrefix(a.ContentType, "image/")
}

// Tags XML as read by mkvpropedit --tags and written by mkvextract tags.
type mkvTags struct {
	XMLName xml.Name `xml:"Tags"`
	Tags    []mkvTag `xml:"Tag"`
}

type mkvTag struct {
	Targets mkvTargets  `xml:"Targets"`
	Simple  []mkvSimple `xml:"Simple"`
}

type mkvTargets struct {
	TargetTypeValue int      `xml:"TargetTypeValue,omitempty"`
	TrackUID        []string `xml:"TrackUID"`
	EditionUID      []string `xml:"EditionUID"`
	ChapterUID      []string `xml:"ChapterUID"`
	AttachmentUID   []string `xml:"AttachmentUID"`
}

// global reports whether the tag applies to the whole file.
func (t mkvTargets) global() bool {
	return len(t.TrackUID)+len(t.EditionUID)+len(t.ChapterUID)+len(t.AttachmentUID) == 0
}

type mkvSimple struct {
	Name   string `xml:"Name"`
	String string `xml:"String"`
}

const mkvTagsDoctype = `<!DOCTYPE Tags SYSTEM "matroskatags.dtd">` + "\n"

// mkvToolNix reads and writes global simple tags and the cover attachment.
type mkvToolNix struct {
	run commandRunner
}

func (m mkvToolNix) identify(ctx context.Context, path string) (*mkvIdentity, error) {
	out, err := m.run(ctx, mkvmergeCommand, "-J", path)
	if err != nil {
		return nil, err
	}
	var id mkvIdentity
	if err := json.Unmarshal(out, &id); err != nil {
		return nil, fmt.Errorf("decode mkvmerge identification: %w", err)
	}
	if !id.Container.Recognized || id.Container.Type != "Matroska" {
		return nil, fmt.Errorf("%s is not a Matroska file", path)
	}
	return &id, nil
}

// read decodes the global simple tags and the first cover attachment.
func (m mkvToolNix) read(path string) (*MatroskaTag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mkvToolTimeout)
	defer cancel()

	id, err := m.identify(ctx, path)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "mediatag-mkv-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	t := &MatroskaTag{}
	if len(id.GlobalTags) > 0 {
		xmlPath := filepath.Join(scratch, "tags.xml")
		if _, err := m.run(ctx, mkvextractCommand, path, "tags", xmlPath); err != nil {
			return nil, err
		}
		doc, err := readTagsXML(xmlPath)
		if err != nil {
			return nil, err
		}
		for _, tag := range doc.Tags {
			if !tag.Targets.global() {
				continue
			}
			for _, s := range tag.Simple {
				t.tags = append(t.tags, SimpleTag{Name: s.Name, Value: s.String})
			}
		}
	}

	for _, a := range id.Attachments {
		if !a.isCover() {
			continue
		}
		coverPath := filepath.Join(scratch, "cover")
		if _, err := m.run(ctx, mkvextractCommand, path, "attachments", strconv.Itoa(a.ID)+":"+coverPath); err != nil {
			return nil, err
		}
		cover, err := os.ReadFile(coverPath)
		if err != nil {
			return nil, err
		}
		t.SetCover(cover)
		break
	}
	return t, nil
}

func readTagsXML(path string) (*mkvTags, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &mkvTags{}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc mkvTags
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode tags xml: %w", err)
	}
	return &doc, nil
}

// write replaces every tag in path with the global simple tags of t and swaps
// the cover attachment in one mkvpropedit run.
func (m mkvToolNix) write(path string, t *MatroskaTag) error {
	ctx, cancel := context.WithTimeout(context.Background(), mkvToolTimeout)
	defer cancel()

	id, err := m.identify(ctx, path)
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "mediatag-mkv-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(scratch)

	args := []string{path}
	var simple []SimpleTag
	var cover []byte
	if t != nil {
		simple = t.SimpleTags()
		cover = t.Cover()
	}
	if len(simple) == 0 {
		args = append(args, "--tags", "all:")
	} else {
		xmlPath := filepath.Join(scratch, "tags.xml")
		if err := writeTagsXML(xmlPath, simple); err != nil {
			return err
		}
		args = append(args, "--tags", "all:"+xmlPath)
	}

	for _, a := range id.Attachments {
		if a.isCover() {
			args = append(args, "--delete-attachment", "="+strconv.FormatUint(a.Properties.UID, 10))
		}
	}
	if cover != nil {
		name, mime := coverName(cover)
		coverPath := filepath.Join(scratch, name)
		if err := os.WriteFile(coverPath, cover, 0o600); err != nil {
			return err
		}
		args = append(args,
			"--attachment-name", name,
			"--attachment-mime-type", mime,
			"--add-attachment", coverPath)
	}

	_, err = m.run(ctx, mkvpropeditCommand, args...)
	return err
}

func writeTagsXML(path string, simple []SimpleTag) error {
	doc := mkvTags{Tags: []mkvTag{{}}}
	for _, s := range simple {
		doc.Tags[0].Simple = append(doc.Tags[0].Simple, mkvSimple{Name: s.Name, String: s.Value})
	}
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data := append([]byte(xml.Header+mkvTagsDoctype), body...)
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// coverName picks the attachment file name and MIME type from the image
// bytes. Matroska players look for cover.jpg or cover.png.
func coverName(image []byte) (string, string) {
	if http.DetectContentType(image) == "image/png" {
		return "cover.png", "image/png"
	}
	return "cover.jpg", "image/jpeg"
}
