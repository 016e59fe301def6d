package uploads

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewStore(dir, 1024)
	require.NoError(t, err)

	name, err := store.Save(fileHeader(t, "Logo.PNG", []byte("png-bytes")), ImageExtensions)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".png"))
	require.NotContains(t, name, "Logo")

	path, err := store.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(data))

	other, err := store.Save(fileHeader(t, "logo.png", []byte("again")), ImageExtensions)
	require.NoError(t, err)
	require.NotEqual(t, name, other)
}

func TestStore_Rejects(t *testing.T) {
	store, err := NewStore(t.TempDir(), 8)
	require.NoError(t, err)

	_, err = store.Save(fileHeader(t, "big.png", bytes.Repeat([]byte("x"), 9)), ImageExtensions)
	require.ErrorIs(t, err, ErrTooLarge)
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = store.Save(fileHeader(t, "script.sh", []byte("x")), ImageExtensions)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(fileHeader(t, "noext", []byte("x")), ImageExtensions)
	require.ErrorIs(t, err, ErrUnsupportedType)

	_, err = store.Save(nil, ImageExtensions)
	require.ErrorIs(t, err, ErrNoFile)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	require.Empty(t, entries, "rejected uploads leave nothing behind")
}

func TestStore_WriteStopsAtLimit(t *testing.T) {
	store, err := NewStore(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.write(strings.NewReader("12345"), ".txt")
	require.ErrorIs(t, err, ErrTooLarge)

	name, err := store.write(strings.NewReader("1234"), ".txt")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(name, ".txt"))
}

func TestStore_Path(t *testing.T) {
	store, err := NewStore(t.TempDir(), 8)
	require.NoError(t, err)

	for _, bad := range []string{"", "../secret", "a/b.png", ".hidden"} {
		_, err := store.Path(bad)
		require.ErrorIs(t, err, ErrInvalidName, bad)
	}
}

func TestStore_Remove(t *testing.T) {
	store, err := NewStore(t.TempDir(), 64)
	require.NoError(t, err)

	name, err := store.write(strings.NewReader("data"), ".pdf")
	require.NoError(t, err)
	require.NoError(t, store.Remove(name))
	require.NoError(t, store.Remove(name), "already gone")

	path, err := store.Path(name)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
