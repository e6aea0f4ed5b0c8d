package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/drawit-cms/drawit-go/models"
)

// Intermediate widths generated for raster attachments.
var thumbnailWidths = []int{1024, 300, 150}

const thumbnailQuality = 85

// Probe returns the pixel dimensions of a stored raster file. Vector files
// and undecodable content report zero dimensions without error.
func Probe(path string) (width, height int) {
	img, err := imaging.Open(path)
	if err != nil {
		return 0, 0
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy()
}

// GenerateSizes produces webp intermediate sizes for a stored raster
// attachment. Failures leave the attachment usable with just the original
// file, so errors only skip the affected size.
func (l *Library) GenerateSizes(sourcePath, filename string) []models.ImageSize {
	src, err := imaging.Open(sourcePath)
	if err != nil {
		return nil
	}

	thumbsDir := filepath.Join(l.uploadsPath, "sizes")
	if err := os.MkdirAll(thumbsDir, 0755); err != nil {
		return nil
	}

	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	var sizes []models.ImageSize

	for _, width := range thumbnailWidths {
		if src.Bounds().Dx() <= width {
			continue
		}

		resized := imaging.Resize(src, width, 0, imaging.Lanczos)
		thumbName := fmt.Sprintf("%s_%dpx.webp", stem, width)
		thumbPath := filepath.Join(thumbsDir, thumbName)

		// Save as WebP using the webp library, NOT imaging.Save()
		if err := webp.Save(thumbPath, resized, &webp.Options{Quality: thumbnailQuality}); err != nil {
			continue
		}

		sizes = append(sizes, models.ImageSize{
			Width:    width,
			Height:   resized.Bounds().Dy(),
			FilePath: thumbPath,
			URL:      l.uploadsURL + "/sizes/" + thumbName,
		})
	}

	return sizes
}
