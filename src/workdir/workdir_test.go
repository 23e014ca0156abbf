package workdir

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	resolved, err := d.ValidatePath("out.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(d.Root(), "out.png"), resolved)

	_, err = d.ValidatePath("../escape.png")
	var outside *PathOutsideRootError
	require.ErrorAs(t, err, &outside)

	_, err = d.ValidatePath("/etc/passwd")
	assert.Error(t, err)

	// URLs bypass containment entirely
	u, err := d.ValidatePath("https://example.com/image.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/image.png", u)
}

func TestSaveAndList(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	path, err := d.SaveFile([]byte("hello"), "greeting.txt")
	require.NoError(t, err)

	entries, err := d.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "greeting.txt", entries[0].Name)
	assert.Equal(t, int64(5), entries[0].Size)
	assert.Equal(t, FileURI(path), entries[0].URI)

	data, err := d.Read(entries[0].URI)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestSaveFileRejectsEscape(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = d.SaveFile([]byte("x"), "../../outside.txt")
	assert.Error(t, err)
}

func TestGenerateFilename(t *testing.T) {
	d, err := New(t.TempDir())
	require.NoError(t, err)

	name := d.GenerateFilename("image", "png", "flux1-schnell-/infer")
	base := filepath.Base(name)
	assert.True(t, strings.HasSuffix(base, ".png"))
	assert.Contains(t, base, "_flux1-schnell-_infer_")
	assert.True(t, strings.HasPrefix(name, d.Root()))

	other := d.GenerateFilename("image", "png", "flux1-schnell-/infer")
	assert.NotEqual(t, name, other)
}
