package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drawit-cms/drawit-go/models"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "diagram", "diagram"},
		{"spaces become dashes", "my network diagram", "my-network-diagram"},
		{"unsafe characters dropped", `net<work>"dia'gram`, "networkdiagram"},
		{"dash runs collapsed", "a -- b", "a-b"},
		{"leading and trailing junk trimmed", "--.diagram.--", "diagram"},
		{"empty", "", ""},
		{"only junk", "<>/\\", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "flow.svg", SafeFilename("flow", "svg"))
	assert.Equal(t, "flow.png", SafeFilename("flow", "PNG"))
	assert.Equal(t, models.PluginSlug+"_diagram.png", SafeFilename("", "png"))
	assert.Equal(t, models.PluginSlug+"_diagram.svg", SafeFilename("<>", "svg"))
}

func TestTempDir(t *testing.T) {
	uploads := t.TempDir()
	lib := NewLibrary(uploads, "/uploads")

	dir := lib.TempDir(models.TempDirUploads)
	assert.Equal(t, filepath.Join(uploads, models.PluginSlug+"_temp"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.Equal(t, os.TempDir(), lib.TempDir(models.TempDirSystem))
}

func TestWriteTempFile(t *testing.T) {
	lib := NewLibrary(t.TempDir(), "/uploads")
	dir := t.TempDir()

	path, err := lib.WriteTempFile(dir, []byte("payload"))
	require.NoError(t, err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Contains(t, filepath.Base(path), models.PluginSlug+"-")
}

func TestSideload(t *testing.T) {
	uploads := t.TempDir()
	lib := NewLibrary(uploads, "/uploads/")

	temp := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(temp, []byte("first"), 0644))

	path, url, name, err := lib.Sideload(temp, "diagram.svg")
	require.NoError(t, err)
	assert.Equal(t, "diagram.svg", name)
	assert.Equal(t, filepath.Join(uploads, "diagram.svg"), path)
	assert.Equal(t, "/uploads/diagram.svg", url)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestSideloadAvoidsCollisions(t *testing.T) {
	uploads := t.TempDir()
	lib := NewLibrary(uploads, "/uploads")

	temp := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.WriteFile(temp, []byte("x"), 0644))

	_, _, first, err := lib.Sideload(temp, "diagram.svg")
	require.NoError(t, err)
	assert.Equal(t, "diagram.svg", first)

	_, _, second, err := lib.Sideload(temp, "diagram.svg")
	require.NoError(t, err)
	assert.Equal(t, "diagram-1.svg", second)

	_, _, third, err := lib.Sideload(temp, "diagram.svg")
	require.NoError(t, err)
	assert.Equal(t, "diagram-2.svg", third)
}
