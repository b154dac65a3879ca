package uploads

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confhub/internal/core/apperror"
)

// fileHeader builds a real multipart.FileHeader by parsing a one-part form.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func testStore(t *testing.T, maxBytes int64) *Store {
	s := NewStore(t.TempDir(), maxBytes)
	s.now = func() time.Time { return time.UnixMilli(1767225600000) }
	return s
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"proof.pdf", "proof.pdf"},
		{"my receipt (1).PDF", "my_receipt_1_.PDF"},
		{"../../etc/passwd", "passwd"},
		{"été photo.jpg", "_t_photo.jpg"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.in), tt.in)
	}

	long := strings.Repeat("a", 150) + ".pdf"
	assert.Len(t, SanitizeName(long), 100)
}

func TestStore_SaveOpenRemove(t *testing.T) {
	s := testStore(t, 1024)

	stored, err := s.Save(CategoryPaymentProofs, "payment_proof", fileHeader(t, "bank slip.pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, "uploads/payment-proofs/1767225600000-bank_slip.pdf", stored)

	f, err := s.Open(stored)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, s.Remove(stored))
	_, err = os.Stat(filepath.Join(s.root, "payment-proofs", "1767225600000-bank_slip.pdf"))
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, s.Remove(stored))

	_, err = s.Open(stored)
	assert.True(t, apperror.IsNotFound(err))
}

func TestStore_Check(t *testing.T) {
	s := testStore(t, 4)

	err := s.Check("abstract_file", nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = s.Save(CategoryAbstracts, "abstract_file", fileHeader(t, "run.exe", []byte("MZ")))
	assert.True(t, apperror.IsValidation(err))

	_, err = s.Save(CategoryAbstracts, "abstract_file", fileHeader(t, "big.pdf", []byte("0123456789")))
	assert.True(t, apperror.IsValidation(err))

	entries, err := os.ReadDir(s.root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_RejectsEscapes(t *testing.T) {
	s := testStore(t, 1024)

	for _, p := range []string{"../secret.txt", "uploads/../../secret.txt", "other/file.pdf", "uploads/"} {
		_, err := s.Open(p)
		assert.True(t, apperror.IsValidation(err), p)
	}
}

func TestStore_Ready(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "uploads")
	s := NewStore(root, 1024)

	require.NoError(t, s.Ready())

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
