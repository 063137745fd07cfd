package document

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrOutsideRoot is returned when a path escapes the configured root directory
var ErrOutsideRoot = errors.New("path is outside of document root")

// File is a filesystem document source
type File struct {
	path string
	root string
}

var _ Source = (*File)(nil)

type FileOption func(*File)

func WithFileRoot(root string) FileOption {
	return func(f *File) {
		f.root = root
	}
}

func NewFile(path string, opts ...FileOption) *File {
	ret := &File{path: path}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Path returns the resolved file path
func (f *File) Path() (string, error) {
	if f.root == "" {
		return f.path, nil
	}
	root, err := filepath.Abs(f.root)
	if err != nil {
		return "", err
	}
	fname := f.path
	if !filepath.IsAbs(fname) {
		fname = filepath.Join(root, fname)
	}
	fname = filepath.Clean(fname)
	rel, err := filepath.Rel(root, fname)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return fname, nil
}

func (f *File) Load(ctx context.Context) (*Document, error) {
	fname, err := f.Path()
	if err != nil {
		return nil, err
	}
	fileInfo, err := os.Stat(fname)
	if err != nil {
		return nil, err
	}
	if fileInfo.IsDir() {
		return nil, errors.New("FileDocument could not be a directory")
	}
	bs, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return NewDocument(bs, map[string]string{
		"source":   "file",
		"filename": fileInfo.Name(),
		"modtime":  strconv.FormatInt(fileInfo.ModTime().Unix(), 10),
	}), nil
}
