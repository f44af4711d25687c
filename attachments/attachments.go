package attachments

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/apex/log"
)

// DefaultMaxImages matches the submission form limit.
const DefaultMaxImages = 5

// ErrIndexOutOfRange is returned by RemoveAt for an index outside the set.
var ErrIndexOutOfRange = errors.New("attachment index out of range")

// Candidate is a file-like input offered for attachment. ContentType may be
// empty, in which case the type is sniffed from the leading bytes.
type Candidate struct {
	Name        string
	ContentType string
	Data        []byte
}

func (c Candidate) isImage() bool {
	ct := c.ContentType
	if ct == "" {
		ct = http.DetectContentType(c.Data)
	}
	return strings.HasPrefix(ct, "image/")
}

// Resolver turns an accepted candidate into a storable URI. Real upload and
// storage live behind this boundary.
type Resolver interface {
	Resolve(c Candidate) (string, error)
}

// PlaceholderResolver produces stable demo URLs, one per accepted
// candidate, for environments without a storage backend.
type PlaceholderResolver struct{}

func (PlaceholderResolver) Resolve(c Candidate) (string, error) {
	return fmt.Sprintf("https://placehold.co/600x400?name=%s", c.Name), nil
}

// Set is an ordered, capacity-bounded collection of image URIs. All
// mutations return a new Set; the receiver is never changed.
type Set struct {
	uris []string
	max  int
}

// NewSet returns an empty set capped at maxImages. Non-positive caps fall
// back to DefaultMaxImages.
func NewSet(maxImages int) Set {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	return Set{max: maxImages}
}

// FromURIs rebuilds a set from already-resolved URIs, for example ones a
// client obtained from an earlier upload. The capacity bound still holds:
// URIs past the cap are dropped.
func FromURIs(maxImages int, uris []string) Set {
	s := NewSet(maxImages)
	for _, uri := range uris {
		if len(s.uris) >= s.max {
			break
		}
		s.uris = append(s.uris, uri)
	}
	return s
}

func (s Set) Len() int { return len(s.uris) }

func (s Set) MaxImages() int { return s.max }

// URIs returns the attachment URIs in insertion order.
func (s Set) URIs() []string {
	out := make([]string, len(s.uris))
	copy(out, s.uris)
	return out
}

// Add accepts image-typed candidates up to the remaining capacity, in input
// order. Non-image candidates and overflow past capacity are dropped
// silently; partial acceptance is the contract, not a failure.
func (s Set) Add(r Resolver, candidates ...Candidate) Set {
	next := Set{max: s.max, uris: append([]string(nil), s.uris...)}
	for _, c := range candidates {
		if len(next.uris) >= next.max {
			break
		}
		if !c.isImage() {
			log.Debugf("Skipping non-image attachment candidate %q", c.Name)
			continue
		}
		uri, err := r.Resolve(c)
		if err != nil {
			log.Errorf("Failed to resolve attachment %q: %v", c.Name, err)
			continue
		}
		next.uris = append(next.uris, uri)
	}
	return next
}

// RemoveAt excises the element at index i, shifting later elements down.
func (s Set) RemoveAt(i int) (Set, error) {
	if i < 0 || i >= len(s.uris) {
		return s, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(s.uris))
	}
	next := Set{max: s.max, uris: make([]string, 0, len(s.uris)-1)}
	next.uris = append(next.uris, s.uris[:i]...)
	next.uris = append(next.uris, s.uris[i+1:]...)
	return next, nil
}
