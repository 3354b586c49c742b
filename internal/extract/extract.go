// Package extract turns uploaded files and fetched pages into plain text
// ready for chunking and indexing.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// mimeByExt maps supported file extensions to MIME types.
var mimeByExt = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".pdf":  "application/pdf",
	".html": "text/html",
	".htm":  "text/html",
}

// MIMEType returns the MIME type for a filename based on its extension.
// Unknown extensions map to application/octet-stream.
func MIMEType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := mimeByExt[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Supported reports whether the MIME type can be ingested.
func Supported(mimeType string) bool {
	switch mimeType {
	case "text/plain", "text/markdown", "text/html", "application/pdf":
		return true
	}
	return false
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
	underscores = regexp.MustCompile(`_+`)
)

// SanitizeFilename reduces a filename to a safe character set, bounded to
// 200 characters.
func SanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	if len(name) > 200 {
		name = name[:200]
	}
	return name
}

// Text extracts plain text from a stored file according to its MIME type.
func Text(path, mimeType string) (string, error) {
	switch mimeType {
	case "application/pdf":
		return pdfText(path)
	case "text/html":
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return HTMLToText(string(raw))
	default:
		// txt, md, and other text files
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return string(raw), nil
	}
}
