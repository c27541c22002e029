// Package coord translates maven-style library coordinates
// (group:artifact:version[:classifier]) into repository paths and URLs.
package coord

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrMalformedCoordinate is returned when a coordinate does not have at least
// group, artifact and version parts.
var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Coordinate is a parsed maven library identifier.
type Coordinate struct {
	Group      string
	Artifact   string
	Version    string
	Classifier string
}

// Parse splits a coordinate string on ':'.
func Parse(s string) (Coordinate, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
	}
	for _, p := range parts[:3] {
		if p == "" {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
		}
	}
	c := Coordinate{
		Group:    parts[0],
		Artifact: parts[1],
		Version:  parts[2],
	}
	if len(parts) == 4 {
		if parts[3] == "" {
			return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, s)
		}
		c.Classifier = parts[3]
	}
	return c, nil
}

// FileName returns artifact-version[-classifier].jar.
func (c Coordinate) FileName() string {
	name := c.Artifact + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + ".jar"
}

// Path returns the repository-relative path using forward slashes.
func (c Coordinate) Path() string {
	group := strings.ReplaceAll(c.Group, ".", "/")
	return path.Join(group, c.Artifact, c.Version, c.FileName())
}

// URL joins a repository base URL with Path.
func (c Coordinate) URL(base string) string {
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + c.Path()
}

func (c Coordinate) String() string {
	s := c.Group + ":" + c.Artifact + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

// ResolvePath parses s and returns its repository path.
func ResolvePath(s string) (string, error) {
	c, err := Parse(s)
	if err != nil {
		return "", err
	}
	return c.Path(), nil
}

// ResolveURL parses s and returns its download URL under base.
func ResolveURL(base, s string) (string, error) {
	c, err := Parse(s)
	if err != nil {
		return "", err
	}
	return c.URL(base), nil
}
