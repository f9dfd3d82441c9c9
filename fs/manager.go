package fs

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FileSystem wraps the Afero Fs interface
type FileSystem struct {
	Fs afero.Fs
}

// NewMemoryFileSystem creates a new in-memory file system
func NewMemoryFileSystem() *FileSystem {
	return &FileSystem{
		Fs: afero.NewMemMapFs(),
	}
}

// NewOsFileSystem creates a new OS-based file system
func NewOsFileSystem() *FileSystem {
	return &FileSystem{
		Fs: afero.NewOsFs(),
	}
}

// Exists reports whether path exists. Stat errors other than not-exist count as absent.
func (fs *FileSystem) Exists(path string) bool {
	ok, err := afero.Exists(fs.Fs, path)
	return err == nil && ok
}

// IsDir checks if a path is a directory
func (fs *FileSystem) IsDir(path string) bool {
	info, err := fs.Fs.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFile checks if a path is a regular file
func (fs *FileSystem) IsFile(path string) bool {
	info, err := fs.Fs.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// EnsureDir ensures that the specified directory exists
func (fs *FileSystem) EnsureDir(dir string) error {
	return fs.Fs.MkdirAll(dir, 0755)
}

// WriteFile creates a new file with the given content or overwrites an
// existing file with the content. Parent directories are created.
func (fs *FileSystem) WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := fs.Fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	if err := afero.WriteFile(fs.Fs, path, content, 0644); err != nil {
		return fmt.Errorf("error writing file %s: %w", path, err)
	}
	return nil
}

// ReadFile returns the content of path
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(fs.Fs, path)
}

// Remove deletes a single file or an empty directory
func (fs *FileSystem) Remove(path string) error {
	return fs.Fs.Remove(path)
}

// RemoveAll deletes path and everything below it. Missing paths are not an error.
func (fs *FileSystem) RemoveAll(path string) error {
	return fs.Fs.RemoveAll(path)
}

// ResetDir removes dir with all of its content and recreates it empty.
// Nothing that existed under dir before the call survives it.
func (fs *FileSystem) ResetDir(dir string) error {
	if err := fs.Fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("error removing directory %s: %w", dir, err)
	}
	if err := fs.Fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory %s: %w", dir, err)
	}
	return nil
}

// CopyFile copies a file from src to dst
func (fs *FileSystem) CopyFile(src, dst string) error {
	sourceFile, err := fs.Fs.Open(src)
	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}
	defer sourceFile.Close()

	mode := os.FileMode(0644)
	if info, err := sourceFile.Stat(); err == nil {
		mode = info.Mode().Perm()
	}

	if err := fs.Fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("error creating destination directory: %w", err)
	}

	dstFile, err := fs.Fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, sourceFile); err != nil {
		return fmt.Errorf("error copying file: %w", err)
	}

	return nil
}

// CopyDir recursively copies a directory tree. When overwrite is false, files
// that already exist under dst are left untouched.
func (fs *FileSystem) CopyDir(src, dst string, overwrite bool) error {
	src = filepath.Clean(src)
	dst = filepath.Clean(dst)

	si, err := fs.Fs.Stat(src)
	if err != nil {
		return err
	}
	if !si.IsDir() {
		return fmt.Errorf("source is not a directory: %s", src)
	}

	if err := fs.Fs.MkdirAll(dst, 0755); err != nil {
		return err
	}

	entries, err := afero.ReadDir(fs.Fs, src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := fs.CopyDir(srcPath, dstPath, overwrite); err != nil {
				return err
			}
			continue
		}

		// Skip symlinks
		if entry.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if !overwrite && fs.Exists(dstPath) {
			continue
		}

		if err := fs.CopyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// MoveDir moves a directory tree to dst, replacing files that collide
func (fs *FileSystem) MoveDir(src, dst string) error {
	if err := fs.CopyDir(src, dst, true); err != nil {
		return fmt.Errorf("error copying directory contents: %w", err)
	}
	if err := fs.Fs.RemoveAll(src); err != nil {
		return fmt.Errorf("error removing source directory: %w", err)
	}
	return nil
}

// MoveFile moves a single file to dst, replacing dst if present
func (fs *FileSystem) MoveFile(src, dst string) error {
	if err := fs.CopyFile(src, dst); err != nil {
		return err
	}
	if err := fs.Fs.Remove(src); err != nil {
		return fmt.Errorf("error removing source file: %w", err)
	}
	return nil
}

// ListDirs returns the names of the immediate subdirectories of dir, sorted
func (fs *FileSystem) ListDirs(dir string) ([]string, error) {
	entries, err := afero.ReadDir(fs.Fs, dir)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs, nil
}

// ListFiles returns the names of the regular files directly in dir whose
// name ends with suffix, sorted. An empty suffix matches every file.
func (fs *FileSystem) ListFiles(dir, suffix string) ([]string, error) {
	entries, err := afero.ReadDir(fs.Fs, dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

// ExtractZip unpacks the zip archive at src into dest. Entries that would
// land outside dest are rejected.
func (fs *FileSystem) ExtractZip(src, dest string) error {
	f, err := fs.Fs.Open(src)
	if err != nil {
		return fmt.Errorf("error opening archive: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("error reading archive info: %w", err)
	}

	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		return fmt.Errorf("error reading archive: %w", err)
	}

	root := filepath.Clean(dest)
	for _, zf := range r.File {
		fpath := filepath.Join(root, zf.Name)

		if fpath != root && !strings.HasPrefix(fpath, root+string(os.PathSeparator)) {
			return fmt.Errorf("invalid file path: %s", zf.Name)
		}

		if zf.FileInfo().IsDir() {
			if err := fs.Fs.MkdirAll(fpath, 0755); err != nil {
				return err
			}
			continue
		}

		if err := fs.extractEntry(zf, fpath); err != nil {
			return fmt.Errorf("error extracting %s: %w", zf.Name, err)
		}
	}
	return nil
}

func (fs *FileSystem) extractEntry(zf *zip.File, fpath string) error {
	if err := fs.Fs.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return err
	}

	mode := zf.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	outFile, err := fs.Fs.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer outFile.Close()

	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(outFile, rc)
	return err
}

// WriteToZip packs the tree under dir into a zip archive at zipPath on the
// same file system. Paths inside the archive are relative to dir. It is the
// inverse of ExtractZip and is used to build upload fixtures in tests.
func (fs *FileSystem) WriteToZip(dir, zipPath string) error {
	zipFile, err := fs.Fs.Create(zipPath)
	if err != nil {
		return fmt.Errorf("error creating zip file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)

	err = afero.Walk(fs.Fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if _, err := zipWriter.Create(rel + "/"); err != nil {
				return fmt.Errorf("error creating zip entry for directory %s: %w", rel, err)
			}
			return nil
		}

		writer, err := zipWriter.Create(rel)
		if err != nil {
			return fmt.Errorf("error creating zip entry for file %s: %w", rel, err)
		}

		file, err := fs.Fs.Open(path)
		if err != nil {
			return fmt.Errorf("error opening file %s: %w", path, err)
		}
		defer file.Close()

		if _, err := io.Copy(writer, file); err != nil {
			return fmt.Errorf("error writing file %s to zip: %w", path, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error walking file system: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("error closing zip writer: %w", err)
	}
	return nil
}
