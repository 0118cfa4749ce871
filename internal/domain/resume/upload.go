// Package resume holds the rules an uploaded resume file has to satisfy
// before anything is stored or parsed.
package resume

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	DefaultMaxBytes int64 = 5 * 1024 * 1024
)

var (
	ErrInvalidFileType = errors.New("invalid file type")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedTypes = map[string]string{
	MimePDF:  "pdf",
	MimeDOC:  "doc",
	MimeDOCX: "docx",
}

var extensionTypes = map[string]string{
	".pdf":  MimePDF,
	".doc":  MimeDOC,
	".docx": MimeDOCX,
}

// IsAllowed reports whether mimeType is one of the accepted document types.
func IsAllowed(mimeType string) bool {
	_, ok := allowedTypes[normalizeType(mimeType)]
	return ok
}

// IsGeneric reports whether a declared type carries no information and has
// to be resolved some other way.
func IsGeneric(mimeType string) bool {
	t := normalizeType(mimeType)
	return t == "" || t == "application/octet-stream"
}

// ValidateUpload checks the declared metadata of an upload and returns the
// effective MIME type. A generic declared type is resolved from the file
// extension; when that fails too the returned type is empty and the caller
// has to resolve it from the content. Nothing here touches the network.
func ValidateUpload(filename, contentType string, size, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	mimeType := normalizeType(contentType)
	generic := IsGeneric(mimeType)
	if generic {
		mimeType = extensionTypes[strings.ToLower(filepath.Ext(filename))]
	}
	if !IsAllowed(mimeType) && !(generic && mimeType == "") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileType, contentType)
	}
	if size > maxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, maxBytes)
	}
	return mimeType, nil
}

// SizeLabel renders a byte count the way the upload form states its limit:
// whole MB or KB when exact, one decimal otherwise.
func SizeLabel(n int64) string {
	const kb, mb = 1024, 1024 * 1024
	switch {
	case n >= mb:
		return unitLabel(n, mb, "MB")
	case n >= kb:
		return unitLabel(n, kb, "KB")
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

func unitLabel(n, unit int64, suffix string) string {
	if n%unit == 0 {
		return fmt.Sprintf("%d%s", n/unit, suffix)
	}
	return strconv.FormatFloat(float64(n)/float64(unit), 'f', 1, 64) + suffix
}

// IsContainer reports whether a sniffed type is a generic container that an
// accepted document can legitimately be detected as.
func IsContainer(mimeType string) bool {
	switch normalizeType(mimeType) {
	case "application/octet-stream", "application/zip", "application/x-ole-storage":
		return true
	}
	return false
}

// SniffContentType detects the document type from its leading bytes.
func SniffContentType(data []byte) string {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if IsAllowed(m.String()) {
			return normalizeType(m.String())
		}
	}
	return normalizeType(mt.String())
}

// Extension returns the canonical file extension for an accepted type.
func Extension(mimeType string) string {
	if ext, ok := allowedTypes[normalizeType(mimeType)]; ok {
		return ext
	}
	return "bin"
}

// StorageKey is the object key for the raw file: <id>/resume_<unix-ms>.<ext>.
func StorageKey(identifier, mimeType string, now time.Time) string {
	return fmt.Sprintf("%s/resume_%d.%s", identifier, now.UnixMilli(), Extension(mimeType))
}

func normalizeType(contentType string) string {
	t, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}
