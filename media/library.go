package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/drawit-cms/drawit-go/models"
)

// Library owns the uploads directory and the temp-file workflow around
// attachment creation.
type Library struct {
	uploadsPath string
	uploadsURL  string
}

// NewLibrary creates a media library rooted at the given uploads path.
func NewLibrary(uploadsPath, uploadsURL string) *Library {
	return &Library{
		uploadsPath: uploadsPath,
		uploadsURL:  strings.TrimSuffix(uploadsURL, "/"),
	}
}

// UploadsPath returns the library root on disk.
func (l *Library) UploadsPath() string { return l.uploadsPath }

// TempDir resolves the configured temporary-storage choice. The uploads-based
// directory is created on demand; any failure falls back to the system temp.
func (l *Library) TempDir(choice string) string {
	if choice == models.TempDirUploads {
		dir := filepath.Join(l.uploadsPath, models.PluginSlug+"_temp")
		if err := os.MkdirAll(dir, 0755); err != nil {
			return os.TempDir()
		}
		return dir
	}
	return os.TempDir()
}

// WriteTempFile writes decoded image bytes to a fresh file in dir. The caller
// removes the file after the sideload hand-off, success or failure.
func (l *Library) WriteTempFile(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, models.PluginSlug+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close temp file: %w", closeErr)
	}
	return f.Name(), nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	dashRuns            = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename reduces a title to a safe filename stem. An empty result
// means the caller should fall back to the generic diagram name.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "-")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = dashRuns.ReplaceAllString(name, "-")
	return strings.Trim(name, "-._")
}

// SafeFilename builds the stored filename from a title and extension,
// applying the generic fallback name.
func SafeFilename(title, ext string) string {
	stem := SanitizeFilename(title)
	if stem == "" {
		stem = models.PluginSlug + "_diagram"
	}
	return stem + "." + strings.ToLower(ext)
}

// Sideload moves a temp file into the uploads directory under the requested
// name, avoiding collisions, and returns the stored path, public URL, and
// final filename.
func (l *Library) Sideload(tempPath, filename string) (path, url, finalName string, err error) {
	if err := os.MkdirAll(l.uploadsPath, 0755); err != nil {
		return "", "", "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	finalName = l.uniqueFilename(filename)
	target := filepath.Join(l.uploadsPath, finalName)

	data, err := os.ReadFile(tempPath)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to read temp file: %w", err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", "", "", fmt.Errorf("failed to store upload: %w", err)
	}

	return target, l.uploadsURL + "/" + finalName, finalName, nil
}

// uniqueFilename appends a short discriminator when the name is taken.
func (l *Library) uniqueFilename(filename string) string {
	if _, err := os.Stat(filepath.Join(l.uploadsPath, filename)); os.IsNotExist(err) {
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for i := 1; i <= 100; i++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, i, ext)
		if _, err := os.Stat(filepath.Join(l.uploadsPath, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
	return stem + "-" + ulid.Make().String() + ext
}
