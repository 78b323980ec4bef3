package nfsmount

import (
	"os"

	billy "github.com/go-git/go-billy/v5"
)

// readOnlyFS hides every mutating operation of the wrapped filesystem.
type readOnlyFS struct {
	billy.Filesystem
}

// ReadOnly wraps fs so that writes fail with billy.ErrReadOnly.
func ReadOnly(fs billy.Filesystem) billy.Filesystem {
	return &readOnlyFS{Filesystem: fs}
}

func (fs *readOnlyFS) Create(string) (billy.File, error) { return nil, billy.ErrReadOnly }

func (fs *readOnlyFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		return nil, billy.ErrReadOnly
	}
	f, err := fs.Filesystem.OpenFile(filename, flag, perm)
	if err != nil {
		return nil, err
	}
	return readOnlyFile{f}, nil
}

func (fs *readOnlyFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

func (fs *readOnlyFS) Rename(string, string) error                 { return billy.ErrReadOnly }
func (fs *readOnlyFS) Remove(string) error                         { return billy.ErrReadOnly }
func (fs *readOnlyFS) MkdirAll(string, os.FileMode) error          { return billy.ErrReadOnly }
func (fs *readOnlyFS) Symlink(string, string) error                { return billy.ErrReadOnly }
func (fs *readOnlyFS) TempFile(string, string) (billy.File, error) { return nil, billy.ErrReadOnly }

func (fs *readOnlyFS) Chroot(path string) (billy.Filesystem, error) {
	sub, err := fs.Filesystem.Chroot(path)
	if err != nil {
		return nil, err
	}
	return ReadOnly(sub), nil
}

func (fs *readOnlyFS) Capabilities() billy.Capability {
	return billy.ReadCapability | billy.SeekCapability
}

type readOnlyFile struct {
	billy.File
}

func (readOnlyFile) Write([]byte) (int, error) { return 0, billy.ErrReadOnly }
func (readOnlyFile) Truncate(int64) error      { return billy.ErrReadOnly }
