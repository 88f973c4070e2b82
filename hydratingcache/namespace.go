package hydratingcache

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Namespace returns the store key namespace of the cache called name: its
// snake case form followed by a hash of the exact name. Names that only
// differ in case or punctuation, such as "ProjectDiagrams" and
// "project-diagrams", get different namespaces. It returns "" for names
// without a letter or digit.
func Namespace(name string) string {
	readable := toSnake(name)
	if readable == "" {
		return ""
	}
	return fmt.Sprintf("%s_%08x", readable, uint32(xxhash.Sum64String(name)))
}

// toSnake turns a cache name into the readable part of its namespace: lower
// case ASCII letters and digits separated by single underscores. Word
// boundaries in camel case names become underscores, so "ProjectDiagrams" and
// "project-diagrams" both read "project_diagrams".
func toSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	pending := false
	var prev rune
	for i, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			boundary := unicode.IsUpper(r) && i > 0 && (unicode.IsLower(prev) || unicode.IsDigit(prev))
			if (pending || boundary) && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pending = true
		}
		prev = r
	}
	return b.String()
}
