package qbittorrent

import "errors"

// ErrInvalidHash is returned when a torrent hash is invalid.
var ErrInvalidHash = errors.New("invalid torrent hash")
