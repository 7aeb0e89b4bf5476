package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minghan-wu/litdomain/constants"
)

func newTestRepo(t *testing.T) DomainRepository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	db, dialect, err := Open(context.Background(), Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}, logger)
	require.NoError(t, err)
	require.Equal(t, DialectSQLite, dialect)
	t.Cleanup(func() { _ = db.Close() })
	return NewDomainRepository(db, dialect, logger)
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "paper.pdf")

	require.NoError(t, repo.Upsert(ctx, path, constants.LifeScienceCN))

	recs, err := repo.QueryByDomain(ctx, constants.LifeScienceCN)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "paper.pdf", recs[0].FileName)
	assert.True(t, filepath.IsAbs(recs[0].FilePath))
	assert.False(t, recs[0].UpdatedAt.IsZero())

	// re-processing the same file flips the domain in place
	require.NoError(t, repo.Upsert(ctx, path, constants.NonLifeScienceCN))

	recs, err = repo.QueryByDomain(ctx, constants.LifeScienceCN)
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = repo.QueryByDomain(ctx, constants.NonLifeScienceCN)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "paper.pdf", recs[0].FileName)
}

func TestUpsert_SamePathIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "doc.pdf")

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Upsert(ctx, path, constants.LifeScienceCN))
	}

	recs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestUpsert_RelativePathCanonicalized(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, "relative-name.pdf", constants.LifeScienceCN))

	recs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, filepath.IsAbs(recs[0].FilePath))
}

func TestQueryByDomain_OrderedByFileName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "zebra.pdf"), constants.LifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "apple.pdf"), constants.LifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "other.pdf"), constants.NonLifeScienceCN))

	recs, err := repo.QueryByDomain(ctx, constants.LifeScienceCN)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "apple.pdf", recs[0].FileName)
	assert.Equal(t, "zebra.pdf", recs[1].FileName)
}

func TestListDomains_DistinctSorted(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "a.pdf"), constants.NonLifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "b.pdf"), constants.LifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "c.pdf"), constants.LifeScienceCN))

	domains, err := repo.ListDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{constants.LifeScienceCN, constants.NonLifeScienceCN}, domains)
}

func TestListAll_ExportOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "b.pdf"), constants.NonLifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "c.pdf"), constants.LifeScienceCN))
	require.NoError(t, repo.Upsert(ctx, filepath.Join(dir, "a.pdf"), constants.LifeScienceCN))

	recs, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "a.pdf", recs[0].FileName)
	assert.Equal(t, "c.pdf", recs[1].FileName)
	assert.Equal(t, "b.pdf", recs[2].FileName)
	assert.Equal(t, constants.NonLifeScienceCN, recs[2].Domain)
}

func TestRebind_PostgresPlaceholders(t *testing.T) {
	r := &domainRepository{dialect: DialectPostgres}
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", r.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	r = &domainRepository{dialect: DialectSQLite}
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", r.rebind("SELECT * FROM t WHERE a = ?"))
}
