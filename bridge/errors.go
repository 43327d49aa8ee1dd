package bridge

import "errors"

// Error kinds surfaced by the bridge. Callers match them with errors.Is.
var (
	// ErrConfigUnavailable is returned when the key/value store file cannot be loaded.
	ErrConfigUnavailable = errors.New("configuration unavailable")

	// ErrConfigWriteFailed is returned when the store file could not be rewritten.
	ErrConfigWriteFailed = errors.New("configuration write failed")

	// ErrInvalidAddress is returned when the server address is missing or malformed.
	ErrInvalidAddress = errors.New("invalid server address")

	// ErrTransportFailure is returned when the remote daemon cannot be reached.
	ErrTransportFailure = errors.New("rpc transport failure")

	// ErrAuthRejected is returned when the daemon is reachable but refuses the credentials.
	ErrAuthRejected = errors.New("rpc authentication rejected")

	// ErrNotFound is returned when a torrent id does not exist on the daemon.
	ErrNotFound = errors.New("torrent not found")

	// ErrPreconditionFailed is returned when an operation is attempted without a usable session.
	ErrPreconditionFailed = errors.New("session not usable")

	// ErrUnmodeledStatus is returned for a remote status outside the known vocabulary.
	ErrUnmodeledStatus = errors.New("unmodeled torrent status")

	// ErrInvalidTorrent is returned when a file is not a valid torrent metainfo.
	ErrInvalidTorrent = errors.New("invalid torrent file")
)
