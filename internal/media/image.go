// Package media turns local image files into the data URLs stored in
// timelines and contact avatars.
package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// MaxImageSize is the largest file accepted for inlining (5 MB)
const MaxImageSize = 5 * 1024 * 1024

const dataURLPrefix = "data:"

// SupportedImageTypes returns the accepted MIME type prefixes
func SupportedImageTypes() []string {
	return []string{
		"image/png",
		"image/jpeg",
		"image/gif",
		"image/webp",
	}
}

// IsDataURL reports whether ref is an inline data URL
func IsDataURL(ref string) bool {
	return strings.HasPrefix(ref, dataURLPrefix)
}

// IsRemote reports whether ref is an http(s) URL
func IsRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// LoadDataURL reads an image file and encodes it as a base64 data URL
func LoadDataURL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxImageSize {
		return "", fmt.Errorf("file size exceeds maximum %d bytes", MaxImageSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !isSupportedType(mimeType) {
		return "", fmt.Errorf("unsupported image type: %s", mimeType)
	}

	return dataURLPrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// ResolveImageRef returns ref unchanged when it is already a URL or data
// URL, and otherwise loads it as a local file
func ResolveImageRef(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty image reference")
	}
	if IsDataURL(ref) || IsRemote(ref) {
		return ref, nil
	}
	return LoadDataURL(ref)
}

// Describe returns a short human label for an image reference
func Describe(ref string) string {
	switch {
	case ref == "":
		return "no image"
	case IsDataURL(ref):
		header, payload, _ := strings.Cut(strings.TrimPrefix(ref, dataURLPrefix), ",")
		mimeType, _, _ := strings.Cut(header, ";")
		size := base64.StdEncoding.DecodedLen(len(payload))
		return fmt.Sprintf("%s, %s", mimeType, formatSize(size))
	default:
		return ref
	}
}

func formatSize(n int) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%d KB", n/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func isSupportedType(mimeType string) bool {
	for _, supported := range SupportedImageTypes() {
		if strings.HasPrefix(mimeType, supported) {
			return true
		}
	}
	return false
}
