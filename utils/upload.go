package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Olga07122007/yatube-project/config"
)

// MaxImageSize caps uploaded post images at 5MB.
const MaxImageSize = 5 << 20

var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// SaveImage validates and stores an uploaded post image under the
// configured upload directory, partitioned by date, and returns the
// public URL path. A nil header means no image was submitted.
func SaveImage(header *multipart.FileHeader) (string, error) {
	if header == nil {
		return "", nil
	}
	if header.Size > MaxImageSize {
		return "", fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !imageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	src, err := header.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	now := time.Now()
	datePath := now.Format("2006/01/02")
	baseDir := filepath.Join(config.Get().UploadDir, filepath.FromSlash(datePath))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dstPath := filepath.Join(baseDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Cap the copy as well; the header size is client supplied.
	written, err := io.Copy(dst, io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if written > MaxImageSize {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("image exceeds %d bytes", MaxImageSize)
	}

	return "/" + path.Join(filepath.ToSlash(config.Get().UploadDir), datePath, name), nil
}
