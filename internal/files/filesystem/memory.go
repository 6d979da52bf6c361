package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content    []byte
	info       *memoryFileInfo
	unreadable bool
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths are virtual and always use forward slashes.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
	root  string
}

// NewMemoryFileSystem creates a new in-memory filesystem rooted at root.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		files: make(map[string]*memoryFile),
		root:  root,
	}
	mfs.files[root] = &memoryFile{info: dirInfo(root)}
	return mfs
}

// Root returns the root directory path.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(path string, content string) {
	mfs.AddFileWithTime(path, content, time.Now())
}

// AddFileWithTime adds a file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	mfs.add(filePath, []byte(content), modTime, false)
}

// AddUnreadableFile adds a file whose open fails with fs.ErrPermission.
func (mfs *MemoryFileSystem) AddUnreadableFile(filePath string) {
	mfs.add(filePath, nil, time.Now(), true)
}

func (mfs *MemoryFileSystem) add(filePath string, content []byte, modTime time.Time, unreadable bool) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	absPath := mfs.abs(filePath)
	mfs.files[absPath] = &memoryFile{
		content:    content,
		unreadable: unreadable,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(content)),
			mode:    0644,
			modTime: modTime,
		},
	}
	mfs.ensureDirectoriesExist(absPath)
}

func dirInfo(p string) *memoryFileInfo {
	return &memoryFileInfo{
		name:    path.Base(p),
		mode:    0755 | fs.ModeDir,
		modTime: time.Now(),
		isDir:   true,
	}
}

func (mfs *MemoryFileSystem) abs(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(filePath string) {
	dir := path.Dir(filePath)
	if dir == "." || dir == "/" {
		return
	}
	if _, exists := mfs.files[dir]; exists {
		return
	}
	mfs.files[dir] = &memoryFile{info: dirInfo(dir)}
	mfs.ensureDirectoriesExist(dir)
}

func (mfs *MemoryFileSystem) lookup(op, p string) (*memoryFile, string, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	absPath := mfs.abs(p)
	f, ok := mfs.files[absPath]
	if !ok {
		return nil, absPath, &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
	}
	return f, absPath, nil
}

// OpenFile implements FileSystemProvider.OpenFile
func (mfs *MemoryFileSystem) OpenFile(filePath string) (io.ReadCloser, error) {
	f, _, err := mfs.lookup("open", filePath)
	if err != nil {
		return nil, err
	}
	if f.unreadable {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrPermission}
	}
	if f.info.isDir {
		return nil, fmt.Errorf("%s is a directory, not a file", filePath)
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	rc, err := mfs.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	d, absPath, err := mfs.lookup("readdir", dirPath)
	if err != nil {
		return nil, err
	}
	if !d.info.isDir {
		return nil, fmt.Errorf("path is not a directory: %s", dirPath)
	}

	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var result []FileInfo
	for p, f := range mfs.files {
		if p != absPath && path.Dir(p) == absPath {
			result = append(result, f.info)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.Compare(result[i].Name(), result[j].Name()) < 0
	})
	return result, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	f, _, err := mfs.lookup("stat", statPath)
	if err != nil {
		return nil, err
	}
	return f.info, nil
}
