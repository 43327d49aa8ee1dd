package transmission

import (
	"fmt"

	"github.com/hekmon/transmissionrpc/v3"

	"github.com/s0up4200/trbridge/bridge"
)

// torrentFields is the field set requested by every torrent-get call.
var torrentFields = []string{
	"id",
	"name",
	"hashString",
	"status",
	"percentDone",
	"sizeWhenDone",
	"rateDownload",
	"downloadDir",
}

var remoteStatuses = map[int64]bridge.RemoteStatus{
	0: bridge.RemoteStopped,
	1: bridge.RemoteCheckPending,
	2: bridge.RemoteChecking,
	3: bridge.RemoteDownloadPending,
	4: bridge.RemoteDownloading,
	5: bridge.RemoteSeedPending,
	6: bridge.RemoteSeeding,
}

// remoteStatus names a Transmission status number. Numbers outside 0-6
// (such as 7, "isolated") keep a distinct name and fail mapping later.
func remoteStatus(raw int64) bridge.RemoteStatus {
	if status, ok := remoteStatuses[raw]; ok {
		return status
	}
	if raw == 7 {
		return "isolated"
	}
	return bridge.RemoteStatus(fmt.Sprintf("status %d", raw))
}

func toRemote(t transmissionrpc.Torrent) bridge.RemoteTorrent {
	remote := bridge.RemoteTorrent{
		ID:           t.ID,
		Name:         t.Name,
		PercentDone:  t.PercentDone,
		RateDownload: t.RateDownload,
		DownloadDir:  t.DownloadDir,
	}
	if t.Status != nil {
		remote.Status = remoteStatus(int64(*t.Status))
	}
	if t.SizeWhenDone != nil {
		size := int64(t.SizeWhenDone.Byte())
		remote.SizeWhenDone = &size
	}
	return remote
}
