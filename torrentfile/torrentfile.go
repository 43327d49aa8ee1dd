// Package torrentfile inspects .torrent metainfo before it is sent to a daemon.
package torrentfile

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/anacrolix/torrent/metainfo"
)

// ErrNoInfo is returned when the metainfo has no info dictionary.
var ErrNoInfo = errors.New("metainfo has no info dictionary")

// Info summarises a torrent file.
type Info struct {
	Name      string
	InfoHash  string
	TotalSize int64
	Files     int
}

// Parse decodes raw metainfo bytes.
func Parse(data []byte) (Info, error) {
	mi, err := metainfo.Load(bytes.NewReader(data))
	if err != nil {
		return Info{}, fmt.Errorf("decode metainfo: %w", err)
	}
	if len(mi.InfoBytes) == 0 {
		return Info{}, ErrNoInfo
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return Info{}, fmt.Errorf("decode info dictionary: %w", err)
	}

	files := 1
	if len(info.Files) > 0 {
		files = len(info.Files)
	}

	return Info{
		Name:      info.Name,
		InfoHash:  mi.HashInfoBytes().HexString(),
		TotalSize: info.TotalLength(),
		Files:     files,
	}, nil
}
