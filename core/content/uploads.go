package content

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// AllowedExtensions is the upload allow-list; anything else is dropped.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"zip":  {},
}

// FileStore persists accepted upload files. Save returns the path to
// record on the submission row.
type FileStore interface {
	Save(name string, r io.Reader) (string, error)
}

// AllowedFile reports whether the declared filename carries an
// extension from the allow-list.
func AllowedFile(filename string) bool {
	ext := filepath.Ext(filename)
	if ext == "" {
		return false
	}
	_, ok := AllowedExtensions[strings.ToLower(ext[1:])]
	return ok
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SanitizeFilename strips any path components and rewrites characters
// that are unsafe in a filesystem path.
func SanitizeFilename(filename string) string {
	name := filepath.Base(filepath.ToSlash(filename))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		return "file"
	}
	return name
}

// StoredName namespaces an upload by uploader and assignment so two
// students submitting "hw.pdf" never collide.
func StoredName(studentID, assignmentID, filename string) string {
	return fmt.Sprintf("%s_%s_%s", studentID, assignmentID, SanitizeFilename(filename))
}
