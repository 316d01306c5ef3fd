package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "photo.png", want: "photo.png"},
		{in: "my photo (1).jpg", want: "my_photo__1_.jpg"},
		{in: "../../etc/passwd", want: ".._.._etc_passwd"},
		{in: "รูปภาพ.png", want: "______.png"},
		{in: "a-b_c.D9", want: "a-b_c.D9"},
		{in: "", want: "upload.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestLocalStorePath(t *testing.T) {
	s := NewLocalStore("uploads")

	p1 := s.Path("a b.png")
	p2 := s.Path("a b.png")

	assert.True(t, strings.HasPrefix(p1, "uploads/"))
	assert.True(t, strings.HasSuffix(p1, "-a_b.png"))
	assert.NotEqual(t, p1, p2)
}

func TestLocalStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStore(dir)

	path := s.Path("hello.txt")
	require.NoError(t, s.Save(path, strings.NewReader("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestLocalStoreSaveUnwritableDir(t *testing.T) {
	// 用普通文件占住目录的位置，使 MkdirAll 失败
	base := t.TempDir()
	blocker := filepath.Join(base, "blocked")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewLocalStore(filepath.Join(blocker, "uploads"))
	err := s.Save(s.Path("a.png"), strings.NewReader("data"))
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestLocalStoreSaveRemovesPartialFile(t *testing.T) {
	s := NewLocalStore(t.TempDir())
	path := s.Path("a.png")

	err := s.Save(path, failingReader{})
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
