// Package filesystem provides the file access the loader and the preflight
// validator depend on.
//
// Source files are opened as streams so COPY never buffers a whole file.
// Errors preserve io/fs semantics (fs.ErrNotExist, fs.ErrPermission) so
// callers can classify them with errors.Is.
//
// Implementations:
//   - OSFileSystem: Production implementation using OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
