package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadText_UTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.py")
	content := "def greet():\n    return \"héllo\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := ReadText(NewFilesystem(), path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestReadText_Latin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.py")
	// "café" encoded as Latin-1: 0xE9 is not valid UTF-8 on its own.
	raw := []byte{'c', 'a', 'f', 0xE9}
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	data, err := ReadText(NewFilesystem(), path)
	require.NoError(t, err)
	assert.Equal(t, "café", string(data))
}

func TestReadText_Missing(t *testing.T) {
	_, err := ReadText(NewFilesystem(), filepath.Join(t.TempDir(), "absent.py"))
	require.Error(t, err)

	var readErr *ReadError
	assert.True(t, errors.As(err, &readErr))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadText_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.py")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	data, err := ReadText(NewFilesystem(), path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

type stubSource struct {
	data map[string][]byte
}

func (s *stubSource) Read(path string) ([]byte, error) {
	if d, ok := s.data[path]; ok {
		return d, nil
	}
	return nil, os.ErrNotExist
}

func TestReadText_CustomSource(t *testing.T) {
	src := &stubSource{data: map[string][]byte{
		"virtual.py": []byte("x = 1\n"),
	}}

	data, err := ReadText(src, "virtual.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(data))
}
