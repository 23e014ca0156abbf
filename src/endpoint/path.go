// Package endpoint resolves loosely-specified Space paths to callable
// endpoints and drives tool invocations end to end.
package endpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// Ref identifies one remote callable: owner, space, and either a
// slash-prefixed endpoint name or a positional function index.
type Ref struct {
	Owner string
	Space string
	// Name is the slash-prefixed endpoint name; empty when the endpoint
	// is only addressable by index.
	Name  string
	Index int
}

// Named reports whether the endpoint is addressed by name.
func (r Ref) Named() bool { return r.Name != "" }

// SpaceID returns the owner/space identifier.
func (r Ref) SpaceID() string { return r.Owner + "/" + r.Space }

// designator is the raw third path segment: the slash-prefixed name or
// the stringified index.
func (r Ref) designator() string {
	if r.Named() {
		return r.Name
	}
	return "/" + strconv.Itoa(r.Index)
}

// ToolName derives the host-facing tool identifier: space and designator
// joined by a hyphen, restricted to [A-Za-z0-9_-], capped at 64 runes.
func (r Ref) ToolName() string {
	name := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
			return c
		default:
			return '_'
		}
	}, r.Space+"-"+r.designator())
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// DisplayName derives the human-readable endpoint name.
func (r Ref) DisplayName() string {
	return fmt.Sprintf("%s endpoint %s", r.Space, r.designator())
}

// splitPath normalizes a path by stripping one leading separator and
// splitting on "/".
func splitPath(path string) []string {
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// ParsePath parses a fully-specified owner/space/endpoint reference. The
// endpoint segment is positional if and only if it parses fully as a
// number; otherwise it is a name and gains a leading separator.
func ParsePath(path string) (Ref, error) {
	segs := splitPath(path)
	if len(segs) != 3 {
		return Ref{}, &PathFormatError{Path: path}
	}
	ref := Ref{Owner: segs[0], Space: segs[1]}
	if idx, err := strconv.Atoi(segs[2]); err == nil {
		ref.Index = idx
	} else {
		ref.Name = "/" + segs[2]
	}
	return ref, nil
}

// HasExplicitEndpoint reports whether the path names an endpoint segment.
func HasExplicitEndpoint(path string) bool {
	return len(splitPath(path)) == 3
}
