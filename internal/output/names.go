package output

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

// Name length limits, in characters.
const (
	UnitNameLimit    = 40
	SectionNameLimit = 60
)

// SafeName replaces every character that is not a letter, a digit, an
// underscore or in the Arabic block with "_" and truncates the result to
// limit characters.
func SafeName(s string, limit int) string {
	var sb strings.Builder
	n := 0
	for _, r := range s {
		if limit > 0 && n >= limit {
			break
		}
		if isNameRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
		n++
	}
	return sb.String()
}

func isNameRune(r rune) bool {
	return r == '_' ||
		unicode.IsLetter(r) ||
		unicode.IsDigit(r) ||
		(r >= 0x0600 && r <= 0x06FF)
}

// SurahFile names a unit file, e.g. "001_سورة_الفاتحة.md".
func SurahFile(num int, title string) string {
	return fmt.Sprintf("%03d_%s.md", num, SafeName(title, UnitNameLimit))
}

// BranchFile names a tree branch file.
func BranchFile(title string) string {
	return SafeName(title, UnitNameLimit) + ".md"
}

// SectionFile names an aggregated section file from its key.
func SectionFile(key string) string {
	return SafeName(key, SectionNameLimit) + ".md"
}

// NameSet hands out file names that are unique within one output directory.
// It is not safe for concurrent use.
type NameSet struct {
	used map[string]bool
}

// NewNameSet returns a set with reserved already taken.
func NewNameSet(reserved ...string) *NameSet {
	s := &NameSet{used: make(map[string]bool)}
	for _, name := range reserved {
		s.used[name] = true
	}
	return s
}

// Unique returns name, or name with "_2", "_3", ... inserted before its
// extension when it is already taken, and marks the result taken.
func (s *NameSet) Unique(name string) string {
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	out := name
	for i := 2; s.used[out]; i++ {
		out = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	s.used[out] = true
	return out
}
