package filemgr

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"labhive/utils"

	"github.com/disintegration/imaging"
)

const (
	UploadDir = "uploads"
	thumbDir  = "uploads/thumbs"
	// thumbnail width in pixels; height follows aspect ratio
	thumbWidth = 200
)

// SaveUploadedFile writes a multipart upload under dir with a
// timestamped, sanitized name and returns the relative path.
func SaveUploadedFile(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixNano(), utils.SanitizeFilename(header.Filename))
	dst := filepath.Join(dir, name)

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return dst, nil
}

// SaveImageWithThumb stores an image upload and renders a thumbnail
// next to it. Returns the image path; a thumbnail failure only loses
// the thumbnail, not the upload.
func SaveImageWithThumb(file multipart.File, header *multipart.FileHeader) (string, error) {
	path, err := SaveUploadedFile(file, header, UploadDir)
	if err != nil {
		return "", err
	}

	img, err := imaging.Open(path)
	if err != nil {
		return path, nil
	}

	if err := utils.EnsureDir(thumbDir); err != nil {
		return path, nil
	}
	thumbImg := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	_ = imaging.Save(thumbImg, filepath.Join(thumbDir, filepath.Base(path)))

	return path, nil
}
