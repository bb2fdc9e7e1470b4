package blob

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/openfleet/fleetgate/internal/common/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fileHeader builds a multipart.FileHeader the way an HTTP upload would.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, "/", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["photo"][0]
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestStore_SaveAndRemove(t *testing.T) {
	s := testStore(t)

	rel, err := s.Save("tenant-1", fileHeader(t, "receipt.JPG", []byte("jpeg-bytes")))
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", filepath.Dir(rel))
	assert.Equal(t, ".jpg", filepath.Ext(rel))

	data, err := os.ReadFile(filepath.Join(s.Root(), rel))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	require.NoError(t, s.Remove(rel))
	_, err = os.Stat(filepath.Join(s.Root(), rel))
	assert.True(t, os.IsNotExist(err))
}

func TestStore_RejectsNonImage(t *testing.T) {
	s := testStore(t)

	for _, name := range []string{"evil.php", "note.txt", "archive.tar.gz", "noext"} {
		_, err := s.Save("tenant-1", fileHeader(t, name, []byte("x")))
		assert.True(t, errorx.IsKind(err, errorx.KindValidation), name)
	}
}

func TestStore_UniqueNames(t *testing.T) {
	s := testStore(t)

	a, err := s.Save("tenant-1", fileHeader(t, "same.png", []byte("a")))
	require.NoError(t, err)
	b, err := s.Save("tenant-1", fileHeader(t, "same.png", []byte("b")))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestStore_SaveAll_RollsBackOnRejection(t *testing.T) {
	s := testStore(t)

	_, err := s.SaveAll("tenant-1", []*multipart.FileHeader{
		fileHeader(t, "ok.jpg", []byte("a")),
		fileHeader(t, "bad.exe", []byte("b")),
	})
	assert.True(t, errorx.IsKind(err, errorx.KindValidation))

	entries, err := os.ReadDir(filepath.Join(s.Root(), "tenant-1"))
	if err == nil {
		assert.Empty(t, entries, "partial uploads must be cleaned up")
	}
}

func TestStore_RemovePathTraversal(t *testing.T) {
	s := testStore(t)
	err := s.Remove("../outside.jpg")
	assert.True(t, errorx.IsKind(err, errorx.KindValidation))
}
