package image

import (
	"path"
	"strings"
	"unicode"
)

const (
	Ext       = ".jpg"
	URLPrefix = "/image/"
)

// stripped is removed from titles along with every white space rune.
const stripped = "!@#$%^&*()_+={}[];:'\",.<>?/\\|`~-"

// DeriveFilename lower-cases title, drops white space and the stripped
// punctuation set and appends Ext. Equal titles always give equal names.
func DeriveFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title) + len(Ext))
	for _, r := range strings.ToLower(title) {
		if unicode.IsSpace(r) || strings.ContainsRune(stripped, r) {
			continue
		}
		b.WriteRune(r)
	}
	b.WriteString(Ext)
	return b.String()
}

// PublicPath is the URL path the file is served under.
func PublicPath(filename string) string {
	return URLPrefix + filename
}

// FilenameFromPath is the inverse of PublicPath. It returns "" for an empty path.
func FilenameFromPath(p string) string {
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// Naming decides the storage key of a book cover.
type Naming string

const (
	// NamingTitle keys the cover by DeriveFilename(title).
	NamingTitle Naming = "title"
	// NamingID keys the cover by book id, so renaming a book keeps its cover.
	NamingID Naming = "id"
)

func ParseNaming(s string) Naming {
	if Naming(strings.ToLower(strings.TrimSpace(s))) == NamingID {
		return NamingID
	}
	return NamingTitle
}

func (n Naming) Filename(id, title string) string {
	if n == NamingID {
		return id + Ext
	}
	return DeriveFilename(title)
}
