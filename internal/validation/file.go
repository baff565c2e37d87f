package validation

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

// FileConstraints restricts uploads by sniffed content type, extension and
// size.
type FileConstraints struct {
	AllowedMimeTypes  map[string]bool
	AllowedExtensions map[string]bool
	MaxSize           int64
}

var (
	DocumentConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"application/pdf":           true,
			"text/plain; charset=utf-8": true,
			// docx, xlsx and pptx are zip containers.
			"application/zip": true,
		},
		AllowedExtensions: map[string]bool{
			".pdf":  true,
			".txt":  true,
			".md":   true,
			".csv":  true,
			".docx": true,
			".xlsx": true,
			".pptx": true,
		},
		MaxSize: 20 << 20,
	}

	ImageConstraints = FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/gif":  true,
		},
		AllowedExtensions: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
			".webp": true,
			".gif":  true,
		},
		MaxSize: 5 << 20,
	}
)

// ValidateFile accepts the upload if it satisfies any of the constraint sets.
func ValidateFile(header *multipart.FileHeader, constraints ...FileConstraints) error {
	if len(constraints) == 0 {
		return fmt.Errorf("no file constraints provided")
	}

	sniffed, err := sniff(header)
	if err != nil {
		return err
	}

	var lastErr error
	for _, c := range constraints {
		if err := c.check(header, sniffed); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (c FileConstraints) check(header *multipart.FileHeader, sniffed string) error {
	if header.Size > c.MaxSize {
		return fmt.Errorf("file too large: maximum size is %d MB", c.MaxSize/(1<<20))
	}
	if !c.AllowedMimeTypes[sniffed] {
		return fmt.Errorf("invalid file type (detected: %s)", sniffed)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !c.AllowedExtensions[ext] {
		return fmt.Errorf("invalid file extension: %s", ext)
	}
	return nil
}

// sniff detects the content type from the first 512 bytes, so a forged
// Content-Type header is ignored.
func sniff(header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return http.DetectContentType(buffer[:n]), nil
}
