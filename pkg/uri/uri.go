// Package uri parses git repository locators into their components.
//
// It supports standard URLs (https://github.com/user/repo.git), ssh URLs
// (ssh://git@github.com/user/repo.git), SCP-style ssh shorthand
// (git@github.com:user/repo.git), and file URLs (file:///path/to/repo).
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	ErrEmptyURI      = errors.New("empty URI")
	ErrMissingScheme = errors.New("missing protocol/scheme")
	ErrMissingHost   = errors.New("missing host")
	ErrMissingPath   = errors.New("missing path")
	ErrUnparsableURI = errors.New("unparsable URI")

	// SCP-style ssh shorthand: git@host:path.
	scpPattern = regexp.MustCompile(`^(?P<user>[^@]+)@(?P<host>[^:]+):(?P<path>.+)$`)
)

// URI holds the decomposed components of a git repository locator.
// Values are immutable after [Parse].
type URI struct {
	// Raw is the original URI string.
	Raw string
	// Protocol is the lowercased scheme (http, https, ssh, git, file).
	Protocol string
	// Host is the hostname or IP address.
	Host string
	// Port is the port as a string, empty if not specified.
	Port string

	segments []string
}

// Parse decomposes a git repository URI.
func Parse(raw string) (*URI, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyURI
	}

	if m := scpPattern.FindStringSubmatch(raw); m != nil {
		return &URI{
			Raw:      raw,
			Protocol: "ssh",
			Host:     m[scpPattern.SubexpIndex("host")],
			segments: splitSegments(m[scpPattern.SubexpIndex("path")]),
		}, nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnparsableURI, raw, err)
	}

	if parsed.Scheme == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingScheme, raw)
	}
	if parsed.Host == "" && parsed.Scheme != "file" {
		return nil, fmt.Errorf("%w: %q", ErrMissingHost, raw)
	}

	u := &URI{
		Raw:      raw,
		Protocol: strings.ToLower(parsed.Scheme),
		Host:     parsed.Hostname(),
		Port:     parsed.Port(),
		segments: splitSegments(parsed.Path),
	}

	if len(u.segments) == 0 && u.Protocol != "file" {
		return nil, fmt.Errorf("%w: %q", ErrMissingPath, raw)
	}

	return u, nil
}

// splitSegments strips leading/trailing slashes, drops empty segments, and
// removes a .git suffix from the final segment.
func splitSegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) > 0 {
		last := segments[len(segments)-1]
		segments[len(segments)-1] = strings.TrimSuffix(last, ".git")
	}

	return segments
}

// Segments returns a copy of the ordered path segments.
func (u *URI) Segments() []string {
	out := make([]string, len(u.segments))
	copy(out, u.segments)

	return out
}

// Segment returns the path segment at the given index. Negative indices count
// from the end (-1 is the last segment). Out-of-range indices return an empty
// string; configuration authors rely on this for optional segments.
func (u *URI) Segment(i int) string {
	n := len(u.segments)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return ""
	}

	return u.segments[i]
}

// RepoName returns the repository name (last path segment, .git stripped).
func (u *URI) RepoName() string {
	return u.Segment(-1)
}

// Owner returns the owner/organization (second-to-last path segment),
// or an empty string if the path has fewer than two segments.
func (u *URI) Owner() string {
	if len(u.segments) < 2 {
		return ""
	}

	return u.Segment(-2)
}

func (u *URI) String() string {
	return u.Raw
}
