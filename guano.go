package wavmeta

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// GuanoLookup finds a single GUANO value in a file. Absent keys return an
// error matching ErrGuanoKeyNotFound; files without a GUANO block return
// the error that explains why (ErrNotRiff, ErrChunkNotFound, ...).
type GuanoLookup interface {
	Lookup(path, key string) (string, error)
}

// Guano holds the fields of a GUANO metadata block.
//
// Keys are stored as written, with whitespace around the namespace
// separator removed: "WA|Serial" for vendor fields, "Serial" for
// well-known ones.
type Guano struct {
	fields map[string]string
	keys   []string
}

// ParseGuano parses the text of a guan chunk. Lines are "Key: Value";
// lines without a colon are ignored, trailing NUL padding is dropped and
// invalid UTF-8 is replaced.
func ParseGuano(data []byte) *Guano {
	g := &Guano{fields: make(map[string]string)}

	text := trimPadding(string(data))
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(line, "\x00 \t\r")
		if line == "" {
			continue
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key := guanoKey(name)
		if key == "" {
			continue
		}

		if _, seen := g.fields[key]; !seen {
			g.keys = append(g.keys, key)
		}

		g.fields[key] = strings.TrimSpace(value)
	}

	return g
}

func guanoKey(name string) string {
	parts := strings.Split(name, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return strings.Join(parts, "|")
}

// Get returns the value stored under key.
func (g *Guano) Get(key string) (string, bool) {
	if g == nil {
		return "", false
	}

	v, ok := g.fields[key]

	return v, ok
}

// Keys returns the keys in file order.
func (g *Guano) Keys() []string {
	if g == nil {
		return nil
	}

	return slices.Clone(g.keys)
}

// Version returns the GUANO format version.
func (g *Guano) Version() string {
	v, _ := g.Get("GUANO|Version")
	return v
}

// ReadGuano reads and parses the guan chunk of the file at path.
func ReadGuano(path string) (*Guano, error) {
	f, c, err := openContainerFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	chunk, err := c.Find(CIDGuano)
	if err != nil {
		return nil, err
	}

	body, err := c.ReadBody(chunk)
	if err != nil {
		return nil, err
	}

	return ParseGuano(body), nil
}

// GuanoReader is the GuanoLookup backed by the file's guan chunk.
type GuanoReader struct{}

// Lookup implements GuanoLookup.
func (GuanoReader) Lookup(path, key string) (string, error) {
	g, err := ReadGuano(path)
	if err != nil {
		return "", fmt.Errorf("read guano: %w", err)
	}

	v, ok := g.Get(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrGuanoKeyNotFound, key)
	}

	return v, nil
}
