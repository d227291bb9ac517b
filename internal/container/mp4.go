package container

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/Aftnet/NetMediaInfoLib/internal/apple"
	"github.com/abema/go-mp4"
)

// ilstAtoms have no TagLib property, so they are written straight into
// moov/udta/meta/ilst after TagLib saved everything else.
var ilstAtoms = []apple.AtomKey{apple.URL, apple.ITunesHDVideo, apple.ITunesMediaType}

var ilstPath = mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeUdta(), mp4.BoxTypeMeta(), mp4.BoxTypeIlst()}

// ilstItemContext lets go-mp4 marshal data boxes below an ilst item.
var ilstItemContext = mp4.Context{UnderIlst: true, UnderIlstMeta: true}

var errNoMoov = errors.New("no moov box")

func isIlstAtom(key apple.AtomKey) bool {
	return slices.Contains(ilstAtoms, key)
}

// hasPrefix reports whether path starts with prefix.
func hasPrefix(path, prefix mp4.BoxPath) bool {
	if len(path) < len(prefix) {
		return false
	}
	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}
	return true
}

// readIlstAtoms returns the ilstAtoms stored in path, in file order.
func readIlstAtoms(path string) ([]Atom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var atoms []Atom
	_, err = mp4.ReadBoxStructure(f, func(h *mp4.ReadHandle) (interface{}, error) {
		switch {
		case len(h.Path) <= len(ilstPath) && hasPrefix(ilstPath, h.Path):
			return h.Expand()
		case len(h.Path) == len(ilstPath)+1 && hasPrefix(h.Path, ilstPath):
			key := apple.AtomKey(h.BoxInfo.Type)
			if !isIlstAtom(key) {
				return nil, nil
			}
			var payload bytes.Buffer
			if _, err := h.ReadData(&payload); err != nil {
				return nil, err
			}
			a, err := decodeIlstItem(key, payload.Bytes())
			if err != nil {
				return nil, fmt.Errorf("ilst %s: %w", key, err)
			}
			atoms = append(atoms, a)
		}
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return atoms, nil
}

// decodeIlstItem parses the data boxes of one ilst item. UTF-8 items become
// text atoms, anything else keeps its raw payload and flags.
func decodeIlstItem(key apple.AtomKey, payload []byte) (Atom, error) {
	r := bytes.NewReader(payload)
	a := Atom{Key: key}
	_, err := mp4.ReadBoxStructure(r, func(h *mp4.ReadHandle) (interface{}, error) {
		if h.BoxInfo.Type != mp4.BoxTypeData() {
			return nil, nil
		}
		if _, err := h.BoxInfo.SeekToPayload(r); err != nil {
			return nil, err
		}
		var data mp4.Data
		if _, err := mp4.Unmarshal(r, h.BoxInfo.Size-h.BoxInfo.HeaderSize, &data, ilstItemContext); err != nil {
			return nil, err
		}
		if data.DataType == FlagText {
			a.Text = append(a.Text, string(data.Data))
			a.Flags = FlagText
			return nil, nil
		}
		if a.Data == nil {
			a.Data = slices.Clone(data.Data)
			a.Flags = data.DataType
		}
		return nil, nil
	})
	return a, err
}

// writeIlstAtoms replaces every ilstAtom in path with atoms. The file is
// rewritten into a sibling and renamed over path. Chunk offsets are shifted
// when moov sits in front of the media data it indexes.
func writeIlstAtoms(path string, atoms []Atom) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	st, err := src.Stat()
	if err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	rw := &ilstRewriter{r: src, atoms: atoms}
	if err := rw.run(tmp); err != nil {
		return err
	}
	if rw.moovFirst && rw.moovDelta != 0 {
		if err := tmp.Truncate(0); err != nil {
			return err
		}
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return err
		}
		rw = &ilstRewriter{r: src, atoms: atoms, shift: rw.moovDelta}
		if err := rw.run(tmp); err != nil {
			return err
		}
	}

	if err := tmp.Chmod(st.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// ilstRewriter copies an MP4 box by box, rebuilding the moov/udta/meta/ilst
// chain on the way. Missing links of the chain are created.
type ilstRewriter struct {
	r     io.ReadSeeker
	w     *mp4.Writer
	atoms []Atom
	shift int64

	sawMdat, sawMoov          bool
	sawUdta, sawMeta, sawIlst bool
	moovFirst                 bool
	moovDelta                 int64
}

func (rw *ilstRewriter) run(dst io.WriteSeeker) error {
	rw.w = mp4.NewWriter(dst)
	if _, err := mp4.ReadBoxStructure(rw.r, rw.handle); err != nil {
		return err
	}
	if !rw.sawMoov {
		return errNoMoov
	}
	return nil
}

func (rw *ilstRewriter) handle(h *mp4.ReadHandle) (interface{}, error) {
	path := h.Path
	typ := h.BoxInfo.Type
	switch {
	case len(path) == 1 && typ == mp4.BoxTypeMdat():
		rw.sawMdat = true
	case len(path) == 1 && typ == mp4.BoxTypeMoov():
		rw.sawMoov = true
		rw.moovFirst = !rw.sawMdat
		bi, err := rw.rebuild(h, func() error {
			if rw.sawUdta {
				return nil
			}
			return rw.writeUdta()
		})
		if err != nil {
			return nil, err
		}
		rw.moovDelta = int64(bi.Size) - int64(h.BoxInfo.Size)
		return nil, nil
	case slices.Equal(path, ilstPath[:2]):
		rw.sawUdta = true
		_, err := rw.rebuild(h, func() error {
			if rw.sawMeta {
				return nil
			}
			return rw.writeMeta()
		})
		return nil, err
	case slices.Equal(path, ilstPath[:3]):
		rw.sawMeta = true
		_, err := rw.rebuild(h, func() error {
			if rw.sawIlst {
				return nil
			}
			return rw.writeIlst()
		})
		return nil, err
	case slices.Equal(path, ilstPath):
		rw.sawIlst = true
		_, err := rw.rebuild(h, rw.writeItems)
		return nil, err
	case len(path) == len(ilstPath)+1 && hasPrefix(path, ilstPath) && isIlstAtom(apple.AtomKey(typ)):
		// Dropped here and written again by writeItems.
		return nil, nil
	case rw.shift != 0 && path[0] == mp4.BoxTypeMoov():
		switch typ {
		case mp4.BoxTypeTrak(), mp4.BoxTypeMdia(), mp4.BoxTypeMinf(), mp4.BoxTypeStbl():
			_, err := rw.rebuild(h, nil)
			return nil, err
		case mp4.BoxTypeStco(), mp4.BoxTypeCo64():
			return nil, rw.shiftChunkOffsets(h)
		}
	}
	return nil, rw.w.CopyBox(rw.r, &h.BoxInfo)
}

// rebuild writes a container box with its children, calling tail before the
// box is closed.
func (rw *ilstRewriter) rebuild(h *mp4.ReadHandle, tail func() error) (*mp4.BoxInfo, error) {
	if _, err := rw.w.StartBox(&h.BoxInfo); err != nil {
		return nil, err
	}
	box, n, err := h.ReadPayload()
	if err != nil {
		return nil, err
	}
	// QuickTime meta boxes carry no version and flags.
	if n > 0 {
		if _, err := mp4.Marshal(rw.w, box, h.BoxInfo.Context); err != nil {
			return nil, err
		}
	}
	if _, err := h.Expand(); err != nil {
		return nil, err
	}
	if tail != nil {
		if err := tail(); err != nil {
			return nil, err
		}
	}
	return rw.w.EndBox()
}

func (rw *ilstRewriter) shiftChunkOffsets(h *mp4.ReadHandle) error {
	box, _, err := h.ReadPayload()
	if err != nil {
		return err
	}
	switch b := box.(type) {
	case *mp4.Stco:
		for i, off := range b.ChunkOffset {
			b.ChunkOffset[i] = uint32(int64(off) + rw.shift)
		}
	case *mp4.Co64:
		for i, off := range b.ChunkOffset {
			b.ChunkOffset[i] = uint64(int64(off) + rw.shift)
		}
	}
	if _, err := rw.w.StartBox(&h.BoxInfo); err != nil {
		return err
	}
	if _, err := mp4.Marshal(rw.w, box, h.BoxInfo.Context); err != nil {
		return err
	}
	_, err = rw.w.EndBox()
	return err
}

func (rw *ilstRewriter) writeUdta() error {
	if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeUdta()}); err != nil {
		return err
	}
	if err := rw.writeMeta(); err != nil {
		return err
	}
	_, err := rw.w.EndBox()
	return err
}

func (rw *ilstRewriter) writeMeta() error {
	if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeMeta()}); err != nil {
		return err
	}
	if _, err := mp4.Marshal(rw.w, &mp4.Meta{}, mp4.Context{}); err != nil {
		return err
	}
	if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeHdlr()}); err != nil {
		return err
	}
	hdlr := &mp4.Hdlr{HandlerType: [4]byte{'m', 'd', 'i', 'r'}}
	if _, err := mp4.Marshal(rw.w, hdlr, mp4.Context{}); err != nil {
		return err
	}
	if _, err := rw.w.EndBox(); err != nil {
		return err
	}
	if err := rw.writeIlst(); err != nil {
		return err
	}
	_, err := rw.w.EndBox()
	return err
}

func (rw *ilstRewriter) writeIlst() error {
	if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeIlst()}); err != nil {
		return err
	}
	if err := rw.writeItems(); err != nil {
		return err
	}
	_, err := rw.w.EndBox()
	return err
}

func (rw *ilstRewriter) writeItems() error {
	for _, a := range rw.atoms {
		if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxType(a.Key)}); err != nil {
			return err
		}
		values := [][]byte{a.Data}
		flags := a.Flags
		if a.Data == nil {
			values = values[:0]
			for _, s := range a.Text {
				values = append(values, []byte(s))
			}
			flags = FlagText
		}
		for _, v := range values {
			if _, err := rw.w.StartBox(&mp4.BoxInfo{Type: mp4.BoxTypeData()}); err != nil {
				return err
			}
			data := &mp4.Data{DataType: flags, Data: v}
			if _, err := mp4.Marshal(rw.w, data, ilstItemContext); err != nil {
				return err
			}
			if _, err := rw.w.EndBox(); err != nil {
				return err
			}
		}
		if _, err := rw.w.EndBox(); err != nil {
			return err
		}
	}
	return nil
}
