package lockfile

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Hash is a single pinned artifact digest in "algorithm:digest" form,
// e.g. "sha256:54a07c09...".
type Hash struct {
	Algorithm string
	Digest    string
}

// ParseHash splits an "algorithm:digest" string into a Hash. A string
// without the separator is rejected.
func ParseHash(s string) (Hash, error) {
	algorithm, digest, ok := strings.Cut(s, ":")
	if !ok {
		return Hash{}, fmt.Errorf("malformed hash %q: expected <algorithm>:<digest>", s)
	}
	return Hash{Algorithm: algorithm, Digest: digest}, nil
}

// String renders the hash back into its lock-document form.
func (h Hash) String() string {
	return h.Algorithm + ":" + h.Digest
}

func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Hashes is a set of pinned digests for one package. Lock documents may list
// several valid digests (sdist plus wheels); pip accepts an artifact when any
// one of them matches, so duplicates carry no information and are dropped.
type Hashes struct {
	set map[Hash]struct{}
}

// NewHashes builds a set from the given hashes, deduplicating them.
func NewHashes(hashes ...Hash) *Hashes {
	set := make(map[Hash]struct{}, len(hashes))
	for _, h := range hashes {
		set[h] = struct{}{}
	}
	return &Hashes{set: set}
}

// Len reports the number of distinct hashes in the set.
func (hs *Hashes) Len() int {
	return len(hs.set)
}

// Contains reports whether the exact algorithm+digest pair is in the set.
func (hs *Hashes) Contains(h Hash) bool {
	_, ok := hs.set[h]
	return ok
}

// List returns the hashes sorted by their rendered form, so requirement
// lines come out the same across runs.
func (hs *Hashes) List() []Hash {
	list := make([]Hash, 0, len(hs.set))
	for h := range hs.set {
		list = append(list, h)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].String() < list[j].String()
	})
	return list
}

func (hs *Hashes) UnmarshalJSON(data []byte) error {
	var parsed []Hash
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}
	*hs = *NewHashes(parsed...)
	return nil
}
