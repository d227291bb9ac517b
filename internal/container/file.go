package container

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Aftnet/NetMediaInfoLib/internal/apple"
	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
	"go.senan.xyz/taglib"
	"gopkg.in/vansante/go-ffprobe.v2"
)

const dimensionsTimeout = 30 * time.Second

// dimensionsFunc defines the function signature used to execute ffprobe.
type dimensionsFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// tagIO groups the MP4 tag entry points so tests can substitute them. TagLib
// covers the atoms it maps to properties, the rest go through the ilst box
// rewriter.
type tagIO struct {
	readTags   func(path string) (map[string][]string, error)
	readImage  func(path string) ([]byte, error)
	writeTags  func(path string, tags map[string][]string, opts taglib.WriteOption) error
	writeImage func(path string, image []byte) error
	readAtoms  func(path string) ([]Atom, error)
	writeAtoms func(path string, atoms []Atom) error
}

var defaultTagIO = tagIO{
	readTags:   taglib.ReadTags,
	readImage:  taglib.ReadImage,
	writeTags:  taglib.WriteTags,
	writeImage: taglib.WriteImage,
	readAtoms:  readIlstAtoms,
	writeAtoms: writeIlstAtoms,
}

// isMatroska matches extensions exactly, like the tagging dispatcher.
func isMatroska(path string) bool {
	return filepath.Ext(path) == ".mkv"
}

// FileOpener opens containers on disk. MP4 tags are read and written with
// TagLib and go-mp4, Matroska tags with MKVToolNix. Video dimensions come
// from ffprobe.
type FileOpener struct {
	// AtomicSave writes tags into a copy of the file next to the original and
	// renames it over the original once every write succeeded.
	AtomicSave bool

	dimensions dimensionsFunc
	io         tagIO
	mkv        mkvToolNix
	rename     func(oldpath, newpath string) error
}

// NewFileOpener creates a FileOpener.
func NewFileOpener(atomicSave bool) *FileOpener {
	return &FileOpener{
		AtomicSave: atomicSave,
		dimensions: ffprobe.ProbeURL,
		io:         defaultTagIO,
		mkv:        mkvToolNix{run: runCommand},
		rename:     os.Rename,
	}
}

// Open implements Opener. Existing tags are decoded into the tag bag that
// matches the file extension: .mkv files get a MatroskaTag, anything else an
// AppleTag.
func (o *FileOpener) Open(path string) (File, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("open %s: is a directory", path)
	}

	// Held until Close so two processes never tag the same file at once.
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrBusy, path)
	}

	f := &diskFile{opener: o, path: path, lock: lock}
	if isMatroska(path) {
		f.matroska, err = o.mkv.read(path)
	} else {
		f.apple, err = o.readApple(path)
	}
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}
	f.props = o.readDimensions(path)
	return f, nil
}

func (o *FileOpener) readApple(path string) (*AppleTag, error) {
	tags, err := o.io.readTags(path)
	if err != nil {
		return nil, err
	}
	atoms, err := o.io.readAtoms(path)
	if err != nil {
		return nil, err
	}
	image, err := o.io.readImage(path)
	if err != nil {
		log.Logger().WithError(err).WithField("file", path).Warn("Failed to read cover image")
		image = nil
	}
	return decodeApple(tags, atoms, image), nil
}

// readDimensions never fails: without ffprobe the dimensions are zero and
// the file is treated as standard definition.
func (o *FileOpener) readDimensions(path string) Properties {
	ctx, cancel := context.WithTimeout(context.Background(), dimensionsTimeout)
	defer cancel()

	data, err := o.dimensions(ctx, path)
	if err != nil {
		log.Logger().WithFields(logrus.Fields{"file": path, "error": err}).Warn("ffprobe failed, assuming zero video dimensions")
		return Properties{}
	}
	if data == nil {
		return Properties{}
	}
	stream := data.FirstVideoStream()
	if stream == nil {
		return Properties{}
	}
	return Properties{VideoWidth: stream.Width, VideoHeight: stream.Height}
}

func (o *FileOpener) save(f *diskFile) error {
	if !o.AtomicSave {
		return o.write(f, f.path)
	}

	dir, name := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}
	// TagLib and the Matroska check pick the codec by extension, so the temp
	// copy keeps it.
	tmp, err := os.CreateTemp(dir, "."+strings.TrimSuffix(name, filepath.Ext(name))+".tmp-*"+filepath.Ext(name))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := copyInto(tmp, f.path); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := o.write(f, tmpName); err != nil {
		return err
	}
	return o.rename(tmpName, f.path)
}

// write persists the tag bag matching the container of f into path.
func (o *FileOpener) write(f *diskFile, path string) error {
	if isMatroska(f.path) {
		if err := o.mkv.write(path, f.matroska); err != nil {
			return fmt.Errorf("write tags: %w", err)
		}
		return nil
	}

	tags, atoms, image := encodeApple(f.apple)
	if err := o.io.writeTags(path, tags, taglib.Clear); err != nil {
		return fmt.Errorf("write tags: %w", err)
	}
	if err := o.io.writeImage(path, image); err != nil {
		return fmt.Errorf("write cover: %w", err)
	}
	if err := o.io.writeAtoms(path, atoms); err != nil {
		return fmt.Errorf("write atoms: %w", err)
	}
	return nil
}

func copyInto(dst *os.File, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, in); err != nil {
		return err
	}
	if err := dst.Chmod(st.Mode().Perm()); err != nil {
		return err
	}
	return dst.Sync()
}

// diskFile only persists the tag bag that matches its container.
type diskFile struct {
	opener   *FileOpener
	path     string
	lock     *flock.Flock
	props    Properties
	apple    *AppleTag
	matroska *MatroskaTag
	closed   bool
}

func (f *diskFile) Name() string { return f.path }

func (f *diskFile) RemoveAllTags() {
	f.apple = nil
	f.matroska = nil
}

func (f *diskFile) AppleTag(create bool) *AppleTag {
	if f.apple == nil && create {
		f.apple = &AppleTag{}
	}
	return f.apple
}

func (f *diskFile) MatroskaTag(create bool) *MatroskaTag {
	if f.matroska == nil && create {
		f.matroska = &MatroskaTag{}
	}
	return f.matroska
}

func (f *diskFile) Properties() Properties { return f.props }

func (f *diskFile) Save() error {
	if f.closed {
		return ErrClosed
	}
	return f.opener.save(f)
}

func (f *diskFile) Close() error {
	if f.closed {
		return ErrClosed
	}
	f.closed = true
	if err := f.lock.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", f.path, err)
	}
	return nil
}

// appleProperty binds an atom to its TagLib property name. Integer atoms are
// exchanged as decimal strings and stored with the given byte width.
type appleProperty struct {
	key   apple.AtomKey
	name  string
	width int
}

var appleProperties = []appleProperty{
	{key: apple.Title, name: "TITLE"},
	{key: apple.Genre, name: "GENRE"},
	{key: apple.Description, name: "PODCASTDESC"},
	{key: apple.Album, name: "ALBUM"},
	{key: apple.Artist, name: "ARTIST"},
	{key: apple.AlbumArtist, name: "ALBUMARTIST"},
	{key: apple.Comment, name: "COMMENT"},
	{key: apple.Date, name: "DATE"},
	{key: apple.Composer, name: "COMPOSER"},
	{key: apple.Copyright, name: "COPYRIGHT"},
	{key: apple.Lyrics, name: "LYRICS"},
	{key: apple.Work, name: "WORK"},
	{key: apple.TvShowName, name: "TVSHOW"},
	{key: apple.SortTvShowName, name: "SHOWSORT"},
	{key: apple.TvNetworkName, name: "TVNETWORK"},
	{key: apple.TvEpisodeID, name: "TVEPISODEID"},
	{key: apple.TvSeasonNumber, name: "TVSEASON", width: 4},
	{key: apple.TvEpisodeNumber, name: "TVEPISODE", width: 4},
}

// encodeApple splits t into TagLib properties, ilst atoms and the first cover
// picture.
func encodeApple(t *AppleTag) (map[string][]string, []Atom, []byte) {
	tags := make(map[string][]string)
	if t == nil {
		return tags, nil, nil
	}
	for _, p := range appleProperties {
		a, ok := t.Atom(p.key)
		if !ok {
			continue
		}
		if p.width == 0 {
			if len(a.Text) > 0 {
				tags[p.name] = a.Text
			}
			continue
		}
		if n, ok := decodeInt(a.Data); ok {
			tags[p.name] = []string{strconv.FormatInt(n, 10)}
		}
	}

	var atoms []Atom
	for _, key := range ilstAtoms {
		if a, ok := t.Atom(key); ok {
			atoms = append(atoms, a)
		}
	}
	var image []byte
	if pics := t.Pictures(); len(pics) > 0 {
		image = pics[0]
	}
	return tags, atoms, image
}

func decodeApple(tags map[string][]string, atoms []Atom, image []byte) *AppleTag {
	t := &AppleTag{}
	for _, p := range appleProperties {
		values := tags[p.name]
		if len(values) == 0 {
			continue
		}
		if p.width == 0 {
			t.SetText(p.key, values...)
			continue
		}
		n, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil {
			continue
		}
		t.SetData(p.key, encodeInt(n, p.width), FlagInteger)
	}
	for _, a := range atoms {
		t.put(a)
	}
	if image != nil {
		t.SetPictures(image)
	}
	return t
}

func encodeInt(n int64, width int) []byte {
	switch width {
	case 1:
		return []byte{byte(n)}
	case 2:
		return binary.BigEndian.AppendUint16(nil, uint16(n))
	case 8:
		return binary.BigEndian.AppendUint64(nil, uint64(n))
	default:
		return binary.BigEndian.AppendUint32(nil, uint32(int32(n)))
	}
}

func decodeInt(data []byte) (int64, bool) {
	switch len(data) {
	case 1:
		return int64(data[0]), true
	case 2:
		return int64(int16(binary.BigEndian.Uint16(data))), true
	case 4:
		return int64(int32(binary.BigEndian.Uint32(data))), true
	case 8:
		return int64(binary.BigEndian.Uint64(data)), true
	}
	return 0, false
}
