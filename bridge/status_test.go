package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		status RemoteStatus
		want   StatusCode
	}{
		{RemoteStopped, 0},
		{RemoteCheckPending, 1},
		{RemoteChecking, 2},
		{RemoteDownloadPending, 3},
		{RemoteDownloading, 4},
		{RemoteSeedPending, 5},
		{RemoteSeeding, 6},
	}

	seen := make(map[StatusCode]RemoteStatus)
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got, err := MapStatus(tt.status)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			prev, dup := seen[got]
			assert.False(t, dup, "code %d already used by %q", got, prev)
			seen[got] = tt.status
		})
	}
	assert.Len(t, seen, 7)
}

func TestMapStatusUnmodeled(t *testing.T) {
	for _, status := range []RemoteStatus{"", "isolated", "Seeding", "moving"} {
		_, err := MapStatus(status)
		assert.ErrorIs(t, err, ErrUnmodeledStatus, "status %q", status)
	}
}

func TestStatusCodeString(t *testing.T) {
	assert.Equal(t, "seeding", StatusSeeding.String())
	assert.Equal(t, "check pending", StatusCheckPending.String())
	assert.Equal(t, "status(9)", StatusCode(9).String())
}

func TestMapRecord(t *testing.T) {
	t.Run("full record", func(t *testing.T) {
		record, err := MapRecord(remote(7, "debian.iso", RemoteSeeding))
		require.NoError(t, err)
		assert.Equal(t, Record{
			ID:           7,
			Name:         "debian.iso",
			Status:       StatusSeeding,
			PercentDone:  0.5,
			SizeWhenDone: 1 << 20,
			RateDownload: 2048,
			DownloadDir:  "/downloads",
		}, record)
	})

	t.Run("missing fields map to zero values", func(t *testing.T) {
		record, err := MapRecord(RemoteTorrent{Status: RemoteStopped})
		require.NoError(t, err)
		assert.Equal(t, Record{Status: StatusStopped}, record)
	})

	t.Run("percent done is clamped", func(t *testing.T) {
		over := 1.3
		record, err := MapRecord(RemoteTorrent{Status: RemoteSeeding, PercentDone: &over})
		require.NoError(t, err)
		assert.Equal(t, 1.0, record.PercentDone)
	})

	t.Run("unmodeled status fails", func(t *testing.T) {
		_, err := MapRecord(remote(1, "x", "isolated"))
		assert.ErrorIs(t, err, ErrUnmodeledStatus)
	})
}

func TestMapRecords(t *testing.T) {
	records, err := MapRecords([]RemoteTorrent{
		remote(3, "c", RemoteSeeding),
		remote(1, "a", RemoteStopped),
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(3), records[0].ID)
	assert.Equal(t, int64(1), records[1].ID)

	_, err = MapRecords([]RemoteTorrent{remote(1, "a", RemoteStopped), remote(2, "b", "bogus")})
	assert.ErrorIs(t, err, ErrUnmodeledStatus)
}
