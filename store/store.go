package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type LocalStore interface {
	// List returns a list of all files in the store.
	List() ([]string, error)

	Contains(name string) (bool, error)

	// Store writes content to the named file and returns its path. The store directory is created if absent.
	Store(name string, content io.Reader) (string, error)

	// Get returns a reader for the file with the given name. The caller is responsible for closing the reader!
	Get(name string) (io.ReadCloser, error)
}

type FileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{
		dataDir: dataDir,
	}
}

// Path returns the path a file with the given name is stored at.
func (fs *FileStore) Path(name string) string {
	return filepath.Join(fs.dataDir, name)
}

func (fs *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(fs.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func (fs *FileStore) Contains(name string) (bool, error) {
	_, err := os.Stat(fs.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (fs *FileStore) Store(name string, content io.Reader) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", errors.Errorf("invalid file name %q", name)
	}

	if err := os.MkdirAll(fs.dataDir, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "failed to create store directory")
	}

	filePath := fs.Path(name)

	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", filePath)
	}

	return filePath, file.Close()
}

func (fs *FileStore) Get(name string) (io.ReadCloser, error) {
	return os.Open(fs.Path(name))
}
