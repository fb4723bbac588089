// Package naming maps kinds and identifiers to filesystem-safe names.
package naming

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Ext is the file extension of every record file.
const Ext = ".dat"

// MaxNameLength bounds kinds and identifiers, leaving room for Ext and a
// temp-file suffix within the usual 255 byte limit.
const MaxNameLength = 200

// invalidChars cannot appear in a single path element on common file systems.
const invalidChars = `/\:*?"<>|`

var (
	consecutiveUnderscores = regexp.MustCompile(`_+`)

	ErrEmpty    = errors.New("name is empty")
	ErrTooLong  = errors.New("name is too long")
	ErrReserved = errors.New("name is reserved")
	ErrInvalid  = errors.New("name contains invalid characters")
)

// Sanitize replaces characters that are invalid in file names with underscores.
// Consecutive underscores are compressed and leading/trailing spaces,
// underscores and dots are trimmed.
//
// Example:
//   - "github.com/acme/app.Widget" -> "github.com_acme_app.Widget"
//   - "a//b::c" -> "a_b_c"
func Sanitize(name string) string {
	result := strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidChars, r) || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)

	result = consecutiveUnderscores.ReplaceAllString(result, "_")
	result = strings.Trim(result, " _.")

	if result == "" {
		result = "unnamed"
	}

	return result
}

// EscapeKind turns an arbitrary type name into a directory name.
// Names that are already valid pass through unchanged. Otherwise the
// sanitized form gets a hash of the original appended, so two different
// names never escape to the same directory.
func EscapeKind(name string) string {
	if Validate(name) == nil {
		return name
	}

	sanitized := Sanitize(name)
	if len(sanitized) > MaxNameLength-7 {
		sanitized = sanitized[:MaxNameLength-7]
	}
	return sanitized + "_" + hashString(name)
}

// Validate reports whether name can be used verbatim as a kind directory or
// record identifier.
func Validate(name string) error {
	switch {
	case name == "":
		return ErrEmpty
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLong, len(name), MaxNameLength)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q", ErrReserved, name)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has surrounding spaces", ErrInvalid, name)
	}

	for _, r := range name {
		if strings.ContainsRune(invalidChars, r) || unicode.IsControl(r) {
			return fmt.Errorf("%w: %q", ErrInvalid, name)
		}
	}

	return nil
}

// FileName returns the record file name for an identifier.
func FileName(id string) string {
	return id + Ext
}

// IDFromFileName extracts the identifier from a record file name.
// It reports false for files that are not record files.
func IDFromFileName(fileName string) (string, bool) {
	if !strings.HasSuffix(fileName, Ext) {
		return "", false
	}
	id := strings.TrimSuffix(fileName, Ext)
	if Validate(id) != nil {
		return "", false
	}
	return id, true
}

// hashString generates a short hash of a string.
// Uses first 6 characters of SHA256 hash.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:3])
}
