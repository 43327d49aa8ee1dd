package bridge

import "fmt"

// StatusCode is the stable numeric torrent status exposed to consumers.
type StatusCode int

// Status codes, numbered the way the Transmission RPC reports them.
const (
	StatusStopped         StatusCode = 0
	StatusCheckPending    StatusCode = 1
	StatusChecking        StatusCode = 2
	StatusDownloadPending StatusCode = 3
	StatusDownloading     StatusCode = 4
	StatusSeedPending     StatusCode = 5
	StatusSeeding         StatusCode = 6
)

// RemoteStatus is a lifecycle status in the daemon vocabulary.
type RemoteStatus string

// Known remote statuses. Backends translate their native states into these.
const (
	RemoteStopped         RemoteStatus = "stopped"
	RemoteCheckPending    RemoteStatus = "check pending"
	RemoteChecking        RemoteStatus = "checking"
	RemoteDownloadPending RemoteStatus = "download pending"
	RemoteDownloading     RemoteStatus = "downloading"
	RemoteSeedPending     RemoteStatus = "seed pending"
	RemoteSeeding         RemoteStatus = "seeding"
)

var statusCodes = map[RemoteStatus]StatusCode{
	RemoteStopped:         StatusStopped,
	RemoteCheckPending:    StatusCheckPending,
	RemoteChecking:        StatusChecking,
	RemoteDownloadPending: StatusDownloadPending,
	RemoteDownloading:     StatusDownloading,
	RemoteSeedPending:     StatusSeedPending,
	RemoteSeeding:         StatusSeeding,
}

// MapStatus converts a remote status to its StatusCode.
// Statuses outside the seven known values return ErrUnmodeledStatus.
func MapStatus(status RemoteStatus) (StatusCode, error) {
	code, ok := statusCodes[status]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnmodeledStatus, string(status))
	}
	return code, nil
}

func (s StatusCode) String() string {
	for remote, code := range statusCodes {
		if code == s {
			return string(remote)
		}
	}
	return fmt.Sprintf("status(%d)", int(s))
}
