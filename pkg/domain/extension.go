package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidExtension is returned when a file extension fails validation.
var ErrInvalidExtension = errors.New("domain: invalid file extension")

// FileExtension identifies which files a rule scans (e.g. ".py").
// A valid extension is non-empty, starts with a dot and holds no path separator.
type FileExtension string

// NewFileExtension validates s and returns it as a FileExtension.
func NewFileExtension(s string) (FileExtension, error) {
	ext := FileExtension(s)
	if err := ext.Validate(); err != nil {
		return "", err
	}
	return ext, nil
}

// MustFileExtension is like NewFileExtension but panics on invalid input.
// Use it for extensions hard-coded in rule tables.
func MustFileExtension(s string) FileExtension {
	ext, err := NewFileExtension(s)
	if err != nil {
		panic(err)
	}
	return ext
}

// Validate reports whether the extension is well-formed.
func (e FileExtension) Validate() error {
	s := string(e)
	switch {
	case s == "" || s == ".":
		return fmt.Errorf("%w: %q is empty", ErrInvalidExtension, s)
	case !strings.HasPrefix(s, "."):
		return fmt.Errorf("%w: %q must start with '.'", ErrInvalidExtension, s)
	case strings.ContainsAny(s, `/\`):
		return fmt.Errorf("%w: %q must not contain a path separator", ErrInvalidExtension, s)
	case strings.TrimSpace(s) != s:
		return fmt.Errorf("%w: %q contains surrounding whitespace", ErrInvalidExtension, s)
	}
	return nil
}

// Matches reports whether the file name ends with the extension.
func (e FileExtension) Matches(name string) bool {
	return strings.HasSuffix(name, string(e))
}

func (e FileExtension) String() string {
	return string(e)
}
