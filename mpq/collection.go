package mpq

import "strings"

// Collection aggregates multiple archives into one virtual filesystem.
// Archives are consulted in the order they were opened; later archives
// override earlier ones for the same normalized logical name, which is
// how patch archives are expected to shadow base content.
//
// A Collection is read-only after Open and safe for concurrent Read/List
// calls: its precedence map is built once and never mutated afterward,
// and each underlying Archive uses positional reads.
type Collection struct {
	archives []*Archive

	// byName maps a normalized (lowercase, forward-slash) logical name to
	// the archive index that should serve it, plus the original-casing
	// name to pass to that archive's hash-based lookup.
	byName map[string]ownedName
}

type ownedName struct {
	archiveIndex int
	original     string
}

// Open opens each archive in paths, in order, and builds the precedence
// map from their (listfile) entries.
func Open(paths ...string) (*Collection, error) {
	c := &Collection{
		byName: make(map[string]ownedName),
	}

	for _, p := range paths {
		a, err := OpenArchive(p)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.addArchive(a)
	}

	return c, nil
}

func (c *Collection) addArchive(a *Archive) {
	idx := len(c.archives)
	c.archives = append(c.archives, a)

	for _, name := range a.ListedNames() {
		c.byName[normalizeName(name)] = ownedName{archiveIndex: idx, original: name}
	}
}

// normalizeName lowercases and forward-slashes a logical name purely for
// use as a precedence-map key; the underlying archive lookup hashes the
// name and tolerates case/separator differences on its own.
func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

// List returns the set of logical names known to the collection, from the
// union of every archive's (listfile), normalized.
func (c *Collection) List() []string {
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	return out
}

// Read resolves name to its owning archive per precedence and returns its
// decoded content. Returns ErrNotFound if no archive's listfile carries
// the name.
func (c *Collection) Read(name string) ([]byte, error) {
	owned, ok := c.byName[normalizeName(name)]
	if !ok {
		return nil, ErrNotFound
	}
	return c.archives[owned.archiveIndex].Read(owned.original)
}

// Close closes every archive in the collection, returning the first
// error encountered, if any.
func (c *Collection) Close() error {
	var first error
	for _, a := range c.archives {
		if err := a.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
