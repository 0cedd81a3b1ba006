package errors

import "errors"

// Configuration errors are fatal and abort a run before any file is touched.
var (
	// ErrInvalidConfig indicates gitseal.toml is unreadable or malformed.
	ErrInvalidConfig = errors.New("configuration is invalid")

	// ErrInvalidPattern indicates the decrypt pattern is not a valid glob.
	ErrInvalidPattern = errors.New("invalid path pattern")

	// ErrNotARepository indicates no enclosing git working tree was found.
	ErrNotARepository = errors.New("not inside a git repository")

	// ErrInvalidDateFormat indicates a --since or --until value is not YYYY-MM-DD.
	ErrInvalidDateFormat = errors.New("invalid date format")
)

// Password errors are returned before any key is derived.
var (
	// ErrEmptyPassword indicates an empty password was supplied.
	ErrEmptyPassword = errors.New("password must not be empty")

	// ErrPasswordNotSet indicates no password verifier is stored in the config.
	ErrPasswordNotSet = errors.New("no password has been set for this repository")

	// ErrWrongPassword indicates the password does not match the stored verifier.
	ErrWrongPassword = errors.New("password does not match the stored verifier")
)

// Per-file errors are isolated to the file that produced them.
var (
	// ErrIO indicates a read, write or remove failed for a single file.
	ErrIO = errors.New("file I/O failed")

	// ErrCompression indicates a corrupted compressed stream.
	ErrCompression = errors.New("decompression failed")

	// ErrAuthentication indicates the ciphertext tag did not verify. The usual
	// cause is a wrong password; tampering or corruption look the same.
	ErrAuthentication = errors.New("message authentication failed")

	// ErrPartialFailure indicates at least one file of a run failed.
	ErrPartialFailure = errors.New("some files could not be processed")
)

// Tracked-path errors are returned by add and remove.
var (
	// ErrNoFilesFound indicates the resolver selected no candidates.
	ErrNoFilesFound = errors.New("no matching files found")

	// ErrFileNotFound indicates a path given to add does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrReservedSuffix indicates a path ends in a suffix gitseal uses for artifacts.
	ErrReservedSuffix = errors.New("path carries a reserved suffix")

	// ErrInvalidPath indicates a path is absolute or escapes the repository.
	ErrInvalidPath = errors.New("path must be relative and inside the repository")

	// ErrAlreadyTracked indicates the path is already in the tracked list.
	ErrAlreadyTracked = errors.New("path is already tracked")

	// ErrNotTracked indicates the path is not in the tracked list.
	ErrNotTracked = errors.New("path is not tracked")
)
