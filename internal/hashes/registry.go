package hashes

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/gigaHours/madmax-gsrc-editor/internal/utils"
)

// The registry maps lookup3 hashes back to the strings that produced
// them, for display only. It is an immutable map behind an atomic
// pointer: readers never take a lock, and Reload swaps the whole
// table in one store. Registration is expected to finish before
// decoding starts; concurrent Register calls may drop entries.
type table = map[uint32]string

var current atomic.Pointer[table]

func init() {
	t := defaultTable()
	current.Store(&t)
}

// Register inserts s into the registry and returns its hash. A prior
// entry for the same hash is never overwritten: first registration
// wins, which disambiguates rare collisions between the curated list
// and the bulk dictionary.
func Register(s string) uint32 {
	h := Hash(s)
	old := *current.Load()
	if _, ok := old[h]; ok {
		return h
	}
	next := make(table, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[h] = s
	current.Store(&next)
	return h
}

// Resolve returns the registered string for h, or the canonical
// fallback "0xXXXXXXXX" when the hash is unknown.
func Resolve(h uint32) string {
	if s, ok := Resolved(h); ok {
		return s
	}
	return fmt.Sprintf("0x%08X", h)
}

// Resolved returns the registered string for h and whether one exists.
func Resolved(h uint32) (string, bool) {
	s, ok := (*current.Load())[h]
	return s, ok
}

// LoadDictionary merges newline-separated names from r into the
// registry. Blank lines and lines starting with '#' are skipped.
// Existing entries are preserved (first registration wins).
func LoadDictionary(r io.Reader) error {
	old := *current.Load()
	next := make(table, len(old))
	for k, v := range old {
		next[k] = v
	}
	if err := mergeInto(next, r); err != nil {
		return err
	}
	current.Store(&next)
	return nil
}

// Reload rebuilds the registry from the curated list and the embedded
// dictionary, then merges extra (which may be nil). The swap is
// atomic: concurrent readers observe either the old table or the
// fully rebuilt one, never a partial state.
func Reload(extra io.Reader) error {
	t := defaultTable()
	if extra != nil {
		if err := mergeInto(t, extra); err != nil {
			return err
		}
	}
	current.Store(&t)
	return nil
}

func mergeInto(t table, r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		h := Hash(line)
		if _, ok := t[h]; !ok {
			t[h] = line
		}
	}
	return utils.WrapError("reading dictionary", sc.Err())
}

// Len reports the number of registered names.
func Len() int {
	return len(*current.Load())
}
