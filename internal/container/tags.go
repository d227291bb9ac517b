package container

import (
	"slices"

	"github.com/Aftnet/NetMediaInfoLib/internal/apple"
)

// Atom flag values for data atoms.
const (
	FlagImplicit uint32 = 0
	FlagText     uint32 = 1
	FlagJPEG     uint32 = 13
	FlagPNG      uint32 = 14
	FlagInteger  uint32 = 21
)

// Atom is one metadata item in an AppleTag. Text atoms carry Text, data
// atoms carry Data and Flags.
type Atom struct {
	Key   apple.AtomKey
	Text  []string
	Data  []byte
	Flags uint32
}

// AppleTag is an ordered list of metadata atoms plus cover pictures.
type AppleTag struct {
	atoms    []Atom
	pictures [][]byte
}

// SetText replaces the text atom key with values. No values removes it.
func (t *AppleTag) SetText(key apple.AtomKey, values ...string) {
	if len(values) == 0 {
		t.Remove(key)
		return
	}
	t.put(Atom{Key: key, Text: slices.Clone(values), Flags: FlagText})
}

// Text returns the values of a text atom.
func (t *AppleTag) Text(key apple.AtomKey) []string {
	if a, ok := t.Atom(key); ok {
		return slices.Clone(a.Text)
	}
	return nil
}

// SetData replaces the data atom key.
func (t *AppleTag) SetData(key apple.AtomKey, data []byte, flags uint32) {
	t.put(Atom{Key: key, Data: slices.Clone(data), Flags: flags})
}

// Data returns the payload and flags of a data atom.
func (t *AppleTag) Data(key apple.AtomKey) ([]byte, uint32, bool) {
	a, ok := t.Atom(key)
	if !ok || a.Data == nil {
		return nil, 0, false
	}
	return slices.Clone(a.Data), a.Flags, true
}

// Atom returns the atom stored under key.
func (t *AppleTag) Atom(key apple.AtomKey) (Atom, bool) {
	for _, a := range t.atoms {
		if a.Key == key {
			return a, true
		}
	}
	return Atom{}, false
}

// Remove deletes the atom stored under key.
func (t *AppleTag) Remove(key apple.AtomKey) {
	t.atoms = slices.DeleteFunc(t.atoms, func(a Atom) bool { return a.Key == key })
}

// Keys lists atom keys in insertion order.
func (t *AppleTag) Keys() []apple.AtomKey {
	keys := make([]apple.AtomKey, 0, len(t.atoms))
	for _, a := range t.atoms {
		keys = append(keys, a.Key)
	}
	return keys
}

// SetPictures replaces the cover pictures.
func (t *AppleTag) SetPictures(pictures ...[]byte) {
	t.pictures = t.pictures[:0]
	for _, p := range pictures {
		t.pictures = append(t.pictures, slices.Clone(p))
	}
}

// Pictures returns the cover pictures.
func (t *AppleTag) Pictures() [][]byte {
	out := make([][]byte, 0, len(t.pictures))
	for _, p := range t.pictures {
		out = append(out, slices.Clone(p))
	}
	return out
}

func (t *AppleTag) put(a Atom) {
	for i := range t.atoms {
		if t.atoms[i].Key == a.Key {
			t.atoms[i] = a
			return
		}
	}
	t.atoms = append(t.atoms, a)
}

func (t *AppleTag) clone() *AppleTag {
	if t == nil {
		return nil
	}
	c := &AppleTag{atoms: make([]Atom, 0, len(t.atoms))}
	for _, a := range t.atoms {
		c.atoms = append(c.atoms, Atom{Key: a.Key, Text: slices.Clone(a.Text), Data: slices.Clone(a.Data), Flags: a.Flags})
	}
	c.SetPictures(t.pictures...)
	return c
}

// Standard Matroska simple tag names.
const (
	TagTitle       = "TITLE"
	TagGenre       = "GENRE"
	TagDescription = "DESCRIPTION"
)

// SimpleTag is one flat name/value record.
type SimpleTag struct {
	Name  string
	Value string
}

// MatroskaTag is an ordered list of simple tags plus an optional cover
// attachment.
type MatroskaTag struct {
	tags  []SimpleTag
	cover []byte
}

// Set replaces every simple tag called name with one tag per value. No values
// removes them.
func (t *MatroskaTag) Set(name string, values ...string) {
	t.tags = slices.DeleteFunc(t.tags, func(s SimpleTag) bool { return s.Name == name })
	for _, v := range values {
		t.tags = append(t.tags, SimpleTag{Name: name, Value: v})
	}
}

// Get returns the values of every simple tag called name, in order.
func (t *MatroskaTag) Get(name string) []string {
	var out []string
	for _, s := range t.tags {
		if s.Name == name {
			out = append(out, s.Value)
		}
	}
	return out
}

// First returns the first value of name.
func (t *MatroskaTag) First(name string) (string, bool) {
	for _, s := range t.tags {
		if s.Name == name {
			return s.Value, true
		}
	}
	return "", false
}

// SimpleTags returns a copy of every simple tag.
func (t *MatroskaTag) SimpleTags() []SimpleTag {
	return slices.Clone(t.tags)
}

// SetCover replaces the cover attachment.
func (t *MatroskaTag) SetCover(data []byte) {
	t.cover = slices.Clone(data)
}

// Cover returns the cover attachment, or nil.
func (t *MatroskaTag) Cover() []byte {
	return slices.Clone(t.cover)
}

func (t *MatroskaTag) clone() *MatroskaTag {
	if t == nil {
		return nil
	}
	return &MatroskaTag{tags: slices.Clone(t.tags), cover: slices.Clone(t.cover)}
}
