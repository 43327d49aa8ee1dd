package bridge

// RemoteTorrent is a torrent as reported by a backend. Fields are optional
// because daemons only return the fields that were requested or known.
type RemoteTorrent struct {
	ID           *int64
	Name         *string
	Status       RemoteStatus
	PercentDone  *float64
	SizeWhenDone *int64
	RateDownload *int64
	DownloadDir  *string
}

// Record is the normalized torrent returned to consumers.
type Record struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Status       StatusCode `json:"status"`
	PercentDone  float64    `json:"percentDone"`
	SizeWhenDone int64      `json:"sizeWhenDone"`
	RateDownload int64      `json:"rateDownload"`
	DownloadDir  string     `json:"downloadDir"`
}

// AddedTorrent is the daemon acknowledgement for an added torrent.
type AddedTorrent struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Hash      string `json:"hashString"`
	Duplicate bool   `json:"duplicate"`
}

// MapRecord projects a remote torrent into a Record.
// Missing fields map to zero values; only an unmodeled status fails.
func MapRecord(t RemoteTorrent) (Record, error) {
	status, err := MapStatus(t.Status)
	if err != nil {
		return Record{}, err
	}

	record := Record{
		ID:           deref(t.ID),
		Name:         deref(t.Name),
		Status:       status,
		PercentDone:  clampFraction(deref(t.PercentDone)),
		SizeWhenDone: deref(t.SizeWhenDone),
		RateDownload: deref(t.RateDownload),
		DownloadDir:  deref(t.DownloadDir),
	}
	return record, nil
}

// MapRecords maps every torrent, stopping at the first unmodeled status.
func MapRecords(torrents []RemoteTorrent) ([]Record, error) {
	records := make([]Record, 0, len(torrents))
	for _, t := range torrents {
		record, err := MapRecord(t)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func clampFraction(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
