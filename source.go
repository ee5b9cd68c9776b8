package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// SourceFile describes the file picked for conversion.
type SourceFile struct {
	Path         string
	Name         string
	Size         int64
	MimeType     string
	LastModified time.Time
	Extension    string
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".avi": true, ".webm": true,
	".m4v": true, ".wmv": true, ".flv": true, ".mpeg": true, ".mpg": true,
	".3gp": true, ".ts": true, ".mxf": true,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".webp": true, ".tiff": true, ".tif": true, ".heic": true,
}

var mimeTypes = map[string]string{
	".mp4": "video/mp4", ".m4v": "video/x-m4v", ".mov": "video/quicktime",
	".mkv": "video/x-matroska", ".avi": "video/x-msvideo", ".webm": "video/webm",
	".wmv": "video/x-ms-wmv", ".flv": "video/x-flv", ".mpeg": "video/mpeg",
	".mpg": "video/mpeg", ".3gp": "video/3gpp", ".ts": "video/mp2t",
	".mxf": "application/mxf",
	".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
	".gif": "image/gif", ".bmp": "image/bmp", ".webp": "image/webp",
	".tiff": "image/tiff", ".tif": "image/tiff", ".heic": "image/heic",
}

// AllowedExtensions feeds the file picker filter.
func AllowedExtensions() []string {
	exts := make([]string, 0, len(videoExtensions)+len(imageExtensions))
	for ext := range videoExtensions {
		exts = append(exts, ext)
	}
	for ext := range imageExtensions {
		exts = append(exts, ext)
	}
	return exts
}

func mimeTypeFor(name string) string {
	if mt, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return mt
	}
	return "video/unknown"
}

// IsSupported reports whether name looks like a video or image file.
func IsSupported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return videoExtensions[ext] || imageExtensions[ext]
}

// StatSource reads the metadata of the file at path.
func StatSource(path string) (SourceFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return SourceFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return SourceFile{}, fmt.Errorf("%s is a directory", path)
	}
	name := filepath.Base(path)
	return SourceFile{
		Path:         path,
		Name:         name,
		Size:         info.Size(),
		MimeType:     mimeTypeFor(name),
		LastModified: info.ModTime(),
		Extension:    extension(name),
	}, nil
}

// CheckSource applies the input rejection rules: unsupported types and
// files over maxSize never reach the network.
func CheckSource(src SourceFile, maxSize int64) error {
	if !IsSupported(src.Name) {
		return ErrUnsupportedType(src.Name)
	}
	if maxSize > 0 && src.Size > maxSize {
		return ErrFileTooLarge(humanize.IBytes(uint64(src.Size)), fmt.Sprintf("%d MB", maxSize/(1024*1024)))
	}
	return nil
}

// HumanSize formats the file size for the analysis panel.
func (s SourceFile) HumanSize() string {
	if s.Size == 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(s.Size))
}
