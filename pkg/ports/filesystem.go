package ports

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories if necessary.
	WriteFile(path string, data []byte) error

	// WriteFileAtomic writes data to a temporary file next to path and renames it
	// into place, so readers never observe a partially written file.
	WriteFileAtomic(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}

// FileDialog picks source and destination paths. It replaces the separate
// primary/fallback dialog paths with a single injected capability.
type FileDialog interface {
	// SavePath returns the destination for an export. ok is false when the
	// user cancelled.
	SavePath(defaultName string) (path string, ok bool, err error)

	// OpenPath returns an animation file to import. ok is false when the user
	// cancelled.
	OpenPath() (path string, ok bool, err error)
}
