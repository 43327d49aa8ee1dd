package qbittorrent

import "github.com/s0up4200/trbridge/bridge"

var stateStatuses = map[string]bridge.RemoteStatus{
	"pausedDL":     bridge.RemoteStopped,
	"pausedUP":     bridge.RemoteStopped,
	"stoppedDL":    bridge.RemoteStopped,
	"stoppedUP":    bridge.RemoteStopped,
	"error":        bridge.RemoteStopped,
	"missingFiles": bridge.RemoteStopped,

	"checkingDL":         bridge.RemoteChecking,
	"checkingUP":         bridge.RemoteChecking,
	"checkingResumeData": bridge.RemoteChecking,
	"moving":             bridge.RemoteChecking,

	"unknown": bridge.RemoteCheckPending,

	"queuedDL": bridge.RemoteDownloadPending,
	"queuedUP": bridge.RemoteSeedPending,

	"downloading":  bridge.RemoteDownloading,
	"stalledDL":    bridge.RemoteDownloading,
	"forcedDL":     bridge.RemoteDownloading,
	"metaDL":       bridge.RemoteDownloading,
	"forcedMetaDL": bridge.RemoteDownloading,
	"allocating":   bridge.RemoteDownloading,

	"uploading": bridge.RemoteSeeding,
	"stalledUP": bridge.RemoteSeeding,
	"forcedUP":  bridge.RemoteSeeding,
}

// remoteStatus translates a qBittorrent state. Unknown states are returned
// unchanged so status mapping rejects them.
func remoteStatus(state string) bridge.RemoteStatus {
	if status, ok := stateStatuses[state]; ok {
		return status
	}
	return bridge.RemoteStatus(state)
}
