package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(hash string, created time.Time) Snapshot {
	return Snapshot{
		Hash:         hash,
		ProcessingID: "run-" + hash,
		Filename:     "divider.kicad_sch",
		Created:      created,
		Components:   3,
		Nets:         3,
		Document:     []byte(`{"nets":{}}`),
	}
}

// exerciseStore runs the behaviour every backend must share
func exerciseStore(t *testing.T, st Store) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	created, err := st.Put(ctx, sample("aaa", base))
	require.NoError(t, err)
	assert.True(t, created)

	// Same hash again keeps the first row
	dup := sample("aaa", base.Add(time.Hour))
	dup.ProcessingID = "other"
	created, err = st.Put(ctx, dup)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := st.Get(ctx, "aaa")
	require.NoError(t, err)
	assert.Equal(t, "run-aaa", got.ProcessingID)
	assert.True(t, base.Equal(got.Created))
	assert.JSONEq(t, `{"nets":{}}`, string(got.Document))

	_, err = st.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.Put(ctx, sample("bbb", base.Add(2*time.Hour)))
	require.NoError(t, err)

	list, err := st.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bbb", list[0].Hash, "newest first")
	assert.Nil(t, list[0].Document)

	list, err = st.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "snapshots.db")
	st, err := OpenSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	defer st.Close()

	exerciseStore(t, st)
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")

	st, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	_, err = st.Put(ctx, sample("ccc", time.Unix(10, 0)))
	require.NoError(t, err)
	require.NoError(t, st.Close())

	reopened, err := Open(ctx, "sqlite://"+path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "ccc")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Components)
}

func TestOpenRequiresTarget(t *testing.T) {
	_, err := Open(context.Background(), "", nil)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	url := os.Getenv("SCHNET_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SCHNET_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	st, err := OpenPostgres(ctx, url, nil)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.pool.Exec(ctx, `TRUNCATE schnet_snapshots`)
	require.NoError(t, err)

	exerciseStore(t, st)
}
