package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/relay/backend/internal/domain"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SanitizeFilename 把 [A-Za-z0-9._-] 以外的字符替换成下划线
func SanitizeFilename(name string) string {
	if name == "" {
		return domain.DefaultUploadFilename
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// LocalStore 在本地目录中保存上传文件的副本
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Path 为文件生成一个不会与并发上传冲突的保存路径，此时还没有写入任何内容
func (s *LocalStore) Path(filename string) string {
	prefix := uuid.New().String()[:8]
	return filepath.ToSlash(filepath.Join(s.dir, prefix+"-"+SanitizeFilename(filename)))
}

// Save 把 src 写入 path，写入失败时会删除不完整的文件
func (s *LocalStore) Save(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return fmt.Errorf("write file %s: %w", path, err)
	}

	return dst.Close()
}
