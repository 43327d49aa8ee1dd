// Package qbittorrent implements a bridge session backend for the
// qBittorrent Web API.
//
// This package wraps the autobrr/go-qbittorrent library. qBittorrent addresses
// torrents by info hash, so each session keeps a registry that hands out
// stable numeric ids in the order torrents were added.
//
// # State mapping
//
// qBittorrent states are folded into the Transmission-style lifecycle:
//
//   - pausedDL, pausedUP, stoppedDL, stoppedUP, error, missingFiles: stopped
//   - checkingDL, checkingUP, checkingResumeData, moving: checking
//   - unknown: check pending
//   - queuedDL: download pending
//   - queuedUP: seed pending
//   - downloading, stalledDL, forcedDL, metaDL, forcedMetaDL, allocating: downloading
//   - uploading, stalledUP, forcedUP: seeding
//
// Anything else is passed through and fails status mapping.
//
// # Usage
//
//	dialer := qbittorrent.NewDialer(logger)
//	client := bridge.NewClient(store, dialer, creds, logger)
package qbittorrent
