package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// maxUploadSize bounds multipart uploads (8 MiB).
const maxUploadSize = 8 << 20

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// saveUploadedImage writes an uploaded image under web/static/<subdir>
// with a random filename and returns the public URL path.
func saveUploadedImage(file multipart.File, header *multipart.FileHeader, subdir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(workDir, "web", "static", subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return "/static/" + subdir + "/" + name, nil
}
