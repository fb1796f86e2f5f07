// Package fs provides filesystem abstractions for testability and fault injection.
//
// The package defines two key interfaces:
//
//   - [File]: Represents an open file with read/write/sync capabilities
//   - [FileSystem]: Abstracts the operations the stores perform when saving and loading
//
// # Implementations
//
//   - [LocalFS]: Production implementation using standard os package
//   - [FaultyFS]: Test utility for fault injection (simulate I/O errors)
//
// Saves go through [WriteFileAtomic], which writes a temporary sibling file,
// syncs it and renames it over the destination:
//
//	err := fs.WriteFileAtomic(fs.Default, path, func(f fs.File) error {
//		_, err := f.Write(data)
//		return err
//	})
//
// Tests can inject [FaultyFS] to simulate failures:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 16})
//	// inject ffs into component under test
//
// Filesystem operations carry no context.Context. Local file I/O is not
// interruptible at the syscall level.
package fs
