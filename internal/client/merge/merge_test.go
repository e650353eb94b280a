package merge

import (
	"testing"

	"github.com/dmitrijs2005/contractorbook/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func job(id, name string, synced bool) models.Job {
	return models.Job{ID: id, Name: name, IsSynced: synced, Status: models.JobStatusActive}
}

func names(js []models.Job) []string {
	out := make([]string, len(js))
	for i, j := range js {
		out[i] = j.ID + ":" + j.Name
	}
	return out
}

func TestMerge_PendingLocalNotInRemoteIsCarriedAhead(t *testing.T) {
	local := []models.Job{job("L2", "two", false), job("S", "old", true), job("L1", "one", false)}
	remote := []models.Job{job("R1", "r1", true), job("S", "new", true)}

	res := Merge(local, remote, RemoteWins)

	want := []string{"L2:two", "L1:one", "R1:r1", "S:new"}
	if diff := cmp.Diff(want, names(res.Records)); diff != "" {
		t.Fatalf("merged order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, res.Carried)
	assert.Zero(t, res.Dropped)
	assert.False(t, res.Records[0].IsSynced)
}

func TestMerge_RemoteWinsOverPendingEdit(t *testing.T) {
	local := []models.Job{job("J", "local edit", false)}
	remote := []models.Job{job("J", "remote", true)}

	res := Merge(local, remote, RemoteWins)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "remote", res.Records[0].Name)
	assert.True(t, res.Records[0].IsSynced)
	assert.Equal(t, 1, res.Superseded)
}

func TestMerge_KeepLocalPending(t *testing.T) {
	local := []models.Job{job("N", "new", false), job("J", "local edit", false)}
	remote := []models.Job{job("A", "a", true), job("J", "remote", true), job("B", "b", true)}

	res := Merge(local, remote, KeepLocalPending)

	assert.Equal(t, []string{"N:new", "A:a", "J:local edit", "B:b"}, names(res.Records))
	assert.False(t, res.Records[2].IsSynced)
	assert.Equal(t, 1, res.Kept)
	assert.Equal(t, 1, res.Carried)
}

func TestMerge_SyncedLocalMissingFromRemoteIsDropped(t *testing.T) {
	local := []models.Job{job("gone", "x", true), job("keep", "y", true)}
	remote := []models.Job{job("keep", "y", true)}

	res := Merge(local, remote, RemoteWins)

	assert.Equal(t, []string{"keep:y"}, names(res.Records))
	assert.Equal(t, 1, res.Dropped)
}

func TestMerge_EmptyInputs(t *testing.T) {
	res := Merge[models.Job](nil, nil, RemoteWins)
	assert.Empty(t, res.Records)

	res = Merge([]models.Job{job("p", "pending", false)}, nil, RemoteWins)
	assert.Equal(t, []string{"p:pending"}, names(res.Records))

	res = Merge(nil, []models.Job{job("r", "remote", true)}, RemoteWins)
	assert.Equal(t, []string{"r:remote"}, names(res.Records))
}

func TestMerge_NoPendingRecordIsLost(t *testing.T) {
	local := []models.Expense{
		{ID: "e1", IsSynced: false},
		{ID: "e2", IsSynced: true},
		{ID: "e3", IsSynced: false},
	}
	remote := []models.Expense{{ID: "e2_0", IsSynced: true}, {ID: "e3", IsSynced: true}}

	for _, p := range []Policy{RemoteWins, KeepLocalPending} {
		res := Merge(local, remote, p)
		ids := map[string]bool{}
		for _, r := range res.Records {
			ids[r.ID] = true
		}
		for _, l := range local {
			if !l.IsSynced {
				assert.True(t, ids[l.ID], "pending %s lost under %s", l.ID, p)
			}
		}
		assert.False(t, ids["e2"], "synced local missing from remote must be dropped")
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, RemoteWins, p)

	p, err = ParsePolicy("KEEP-LOCAL")
	require.NoError(t, err)
	assert.Equal(t, KeepLocalPending, p)
	assert.Equal(t, "keep-local", p.String())

	_, err = ParsePolicy("newest")
	require.Error(t, err)
}
