package filestorage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func newFileHeader(t *testing.T, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="imagen"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["imagen"][0]
}

func TestLocalStorage_UploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/uploads/", zerolog.Nop())
	require.NoError(t, err)

	fh := newFileHeader(t, "photo.PNG", "image/png", pngBytes)
	asset, err := store.Upload(context.Background(), fh, FolderPublications)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.AssetID, "publications/"))
	assert.True(t, strings.HasSuffix(asset.AssetID, ".png"))
	assert.Equal(t, "http://localhost:8080/uploads/"+asset.AssetID, asset.URL)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(asset.AssetID)))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored)

	require.NoError(t, store.Delete(context.Background(), asset.AssetID))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(asset.AssetID)))
	assert.True(t, os.IsNotExist(err))

	// Idempotent
	assert.NoError(t, store.Delete(context.Background(), asset.AssetID))
}

func TestLocalStorage_DeleteRejectsTraversal(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), "http://localhost/uploads", zerolog.Nop())
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "../etc/passwd"), ErrInvalidAssetID)
	assert.ErrorIs(t, store.Delete(context.Background(), ""), ErrInvalidAssetID)
}

func TestValidateImage(t *testing.T) {
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, bytes.Repeat([]byte{0}, 64)...)

	assert.NoError(t, ValidateImage(newFileHeader(t, "a.png", "image/png", pngBytes)))
	assert.NoError(t, ValidateImage(newFileHeader(t, "a.jpg", "image/jpeg", jpeg)))

	assert.ErrorIs(t, ValidateImage(newFileHeader(t, "a.gif", "image/gif", []byte("GIF89a......"))), ErrUnsupportedFormat)
	// Declared as PNG but the bytes are text
	assert.ErrorIs(t, ValidateImage(newFileHeader(t, "a.png", "image/png", []byte("hello world"))), ErrUnsupportedFormat)

	big := newFileHeader(t, "big.png", "image/png", pngBytes)
	big.Size = 6 << 20
	assert.ErrorIs(t, ValidateImage(big), ErrFileTooLarge)

	assert.ErrorIs(t, ValidateImage(nil), ErrUnreadableUpload)
}
