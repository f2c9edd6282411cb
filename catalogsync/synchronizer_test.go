package catalogsync

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mkoistinen/filamentcolors/colorspace"
	"github.com/mkoistinen/filamentcolors/core"
	"github.com/mkoistinen/filamentcolors/remote/mock"
	"github.com/mkoistinen/filamentcolors/storage"
	"github.com/mkoistinen/filamentcolors/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogPages() [][]core.RawSwatch {
	return [][]core.RawSwatch{
		{{Id: 1, HexColor: "FF0000"}, {Id: 2, HexColor: "FE0000"}},
		{{Id: 3, HexColor: "00FF00"}, {Id: 4, HexColor: "0000FF"}},
		{{Id: 5, HexColor: "FFFFFF"}},
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	cfg.PoolSize = 2
	return cfg
}

func setupSync(t *testing.T, fetcher PageFetcher, opts ...Option) (*Synchronizer, *badger.Store) {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]Option{WithConfig(testConfig()), WithCheckpoints(store)}, opts...)
	sync, err := NewSynchronizer(fetcher, store, opts...)
	require.NoError(t, err)
	t.Cleanup(sync.Release)
	return sync, store
}

func scanAll(t *testing.T, repo storage.SwatchRepository) []*core.Swatch {
	t.Helper()
	swatches, err := repo.ScanSwatches(context.Background())
	require.NoError(t, err)
	return swatches
}

func TestNewSynchronizer_Required(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()

	_, err = NewSynchronizer(nil, store)
	assert.ErrorIs(t, err, ErrFetcherRequired)

	_, err = NewSynchronizer(mock.NewMockFetcher(), nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	bad := DefaultConfig()
	bad.PoolSize = 0
	_, err = NewSynchronizer(mock.NewMockFetcher(), store, WithConfig(bad))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSync_AllPages(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, store := setupSync(t, fetcher)

	result, err := sync.Sync(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, fetcher.Calls())
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, 5, result.Created)
	assert.Zero(t, result.Updated)
	assert.Equal(t, 5, result.Total)
	assert.True(t, result.Rebuilt, "a fresh store is created on the first page")

	conv := colorspace.NewConverter()
	for _, sw := range scanAll(t, store) {
		lab, err := conv.ToLab(sw.HexColor)
		require.NoError(t, err)
		assert.Equal(t, lab, sw.Lab(), "swatch %d Lab must match its hex", sw.Id)
	}
}

func TestSync_Idempotent(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, store := setupSync(t, fetcher)
	ctx := context.Background()

	_, err := sync.Sync(ctx, false)
	require.NoError(t, err)
	first := scanAll(t, store)

	result, err := sync.Sync(ctx, false)
	require.NoError(t, err)
	second := scanAll(t, store)

	assert.False(t, result.Rebuilt)
	assert.Zero(t, result.Created)
	assert.Equal(t, 5, result.Updated)
	assert.Equal(t, len(first), result.Total)
	assert.Equal(t, first, second)
	assert.Equal(t, core.Fingerprint(first), core.Fingerprint(second))
}

func TestSync_OverwriteRecomputesLab(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, store := setupSync(t, fetcher)
	ctx := context.Background()

	_, err := sync.Sync(ctx, false)
	require.NoError(t, err)

	pages := catalogPages()
	pages[0][0].HexColor = "0000FF"
	fetcher.SetPages(pages...)

	_, err = sync.Sync(ctx, false)
	require.NoError(t, err)

	got, err := store.GetSwatch(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "0000FF", got.HexColor)

	blue, err := colorspace.NewConverter().ToLab("0000FF")
	require.NoError(t, err)
	assert.Equal(t, blue, got.Lab())
}

// eventRepo records the order of store writes relative to fetches.
type eventRepo struct {
	storage.SwatchRepository
	events *[]string
}

func (r *eventRepo) RebuildSchema(ctx context.Context) error {
	*r.events = append(*r.events, "rebuild")
	return r.SwatchRepository.RebuildSchema(ctx)
}

func (r *eventRepo) UpsertSwatches(ctx context.Context, swatches ...*core.Swatch) (int, error) {
	*r.events = append(*r.events, fmt.Sprintf("upsert %d", len(swatches)))
	return r.SwatchRepository.UpsertSwatches(ctx, swatches...)
}

type eventFetcher struct {
	inner  PageFetcher
	events *[]string
}

func (f *eventFetcher) FetchPage(ctx context.Context, page int) (*core.Page, error) {
	*f.events = append(*f.events, fmt.Sprintf("fetch %d", page))
	return f.inner.FetchPage(ctx, page)
}

func TestSync_RebuildOnlyBeforeFirstPage(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.RebuildSchema(ctx))
	_, err = store.UpsertSwatches(ctx, &core.Swatch{Id: 99, HexColor: "123456"})
	require.NoError(t, err)

	var events []string
	repo := &eventRepo{SwatchRepository: store, events: &events}
	fetcher := &eventFetcher{inner: mock.NewMockFetcher(catalogPages()...), events: &events}

	sync, err := NewSynchronizer(fetcher, repo, WithConfig(testConfig()))
	require.NoError(t, err)
	defer sync.Release()

	result, err := sync.Sync(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"fetch 1", "rebuild", "upsert 2",
		"fetch 2", "upsert 2",
		"fetch 3", "upsert 1",
	}, events)
	assert.True(t, result.Rebuilt)
	assert.Equal(t, 5, result.Total)

	_, err = store.GetSwatch(ctx, 99)
	assert.ErrorIs(t, err, storage.ErrNotFound, "rebuild drops previous records")
}

func TestSync_RebuildKeepsStoreWhenFirstFetchFails(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, store := setupSync(t, fetcher)
	ctx := context.Background()

	_, err := sync.Sync(ctx, false)
	require.NoError(t, err)

	fetcher.FailPage(1, -1, errors.New("service unavailable"))
	_, err = sync.Sync(ctx, true)
	require.ErrorIs(t, err, ErrFetchFailed)

	count, err := store.CountSwatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count, "nothing is dropped before a page arrives")
}

func TestSync_FetchErrorKeepsEarlierPages(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	cause := errors.New("connection reset")
	fetcher.FailPage(2, -1, cause)
	sync, store := setupSync(t, fetcher)
	ctx := context.Background()

	result, err := sync.Sync(ctx, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, []int{1, 2, 2}, fetcher.Calls(), "page 2 retried MaxRetries times, page 3 never requested")
	assert.Equal(t, 1, result.Pages)
	assert.Equal(t, 2, result.Total)

	ids := []core.ID{}
	for _, sw := range scanAll(t, store) {
		ids = append(ids, sw.Id)
	}
	assert.Equal(t, []core.ID{1, 2}, ids)
}

func TestSync_TransientFetchErrorRecovers(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	fetcher.FailPage(2, 1, errors.New("timeout"))
	sync, _ := setupSync(t, fetcher)

	result, err := sync.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 2, 3}, fetcher.Calls())
	assert.Equal(t, 5, result.Total)
}

func TestSync_NilPageIsFetchError(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	fetcher.FetchPageFunc = func(ctx context.Context, page int) (*core.Page, error) {
		return nil, nil
	}
	sync, store := setupSync(t, fetcher)

	result, err := sync.Sync(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrNoPage)
	assert.Equal(t, []int{1, 1}, fetcher.Calls())
	assert.Zero(t, result.Pages)

	initialized, err := store.Initialized(context.Background())
	require.NoError(t, err)
	assert.False(t, initialized)
}

func TestSync_InvalidHexAbortsPage(t *testing.T) {
	pages := catalogPages()
	pages[1] = []core.RawSwatch{{Id: 3, HexColor: "00FF00"}, {Id: 4, HexColor: "GGGGGG"}}
	fetcher := mock.NewMockFetcher(pages...)
	sync, store := setupSync(t, fetcher)

	result, err := sync.Sync(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, colorspace.ErrInvalidHexColor)
	assert.ErrorIs(t, err, core.ErrInvalidSwatch)
	assert.NotErrorIs(t, err, ErrFetchFailed)
	assert.Equal(t, 1, result.Pages)

	_, err = store.GetSwatch(context.Background(), 3)
	assert.ErrorIs(t, err, storage.ErrNotFound, "the failing page writes nothing")
}

func TestSync_Resume(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	fetcher.FailPage(3, -1, errors.New("boom"))

	cfg := testConfig()
	cfg.Resume = true
	sync, store := setupSync(t, fetcher, WithConfig(cfg))
	ctx := context.Background()

	_, err := sync.Sync(ctx, false)
	require.ErrorIs(t, err, ErrFetchFailed)

	cp, err := store.LoadCheckpoint(ctx, DefaultCheckpointName)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, 2, cp.LastPage)
	assert.False(t, cp.Complete)

	fetcher.Reset()
	result, err := sync.Sync(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, fetcher.Calls())
	assert.Equal(t, 3, result.StartPage)
	assert.Equal(t, 5, result.Total)

	cp, err = store.LoadCheckpoint(ctx, DefaultCheckpointName)
	require.NoError(t, err)
	assert.True(t, cp.Complete)

	// A completed run starts over from the first page.
	fetcher.Reset()
	_, err = sync.Sync(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, fetcher.Calls())
}

func TestSync_ResumeIgnoredOnRebuild(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	fetcher.FailPage(3, -1, errors.New("boom"))

	cfg := testConfig()
	cfg.Resume = true
	sync, _ := setupSync(t, fetcher, WithConfig(cfg))
	ctx := context.Background()

	_, err := sync.Sync(ctx, false)
	require.Error(t, err)

	fetcher.Reset()
	result, err := sync.Sync(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.StartPage)
	assert.Equal(t, []int{1, 2, 3}, fetcher.Calls())
}

func TestSync_EmptyCatalog(t *testing.T) {
	fetcher := mock.NewMockFetcher([]core.RawSwatch{})
	sync, store := setupSync(t, fetcher)
	ctx := context.Background()

	result, err := sync.Sync(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	initialized, err := store.Initialized(ctx)
	require.NoError(t, err)
	assert.True(t, initialized, "an empty catalog is still a catalog")
}

func TestSync_Canceled(t *testing.T) {
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, _ := setupSync(t, fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sync.Sync(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSync_Progress(t *testing.T) {
	var buf bytes.Buffer
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, _ := setupSync(t, fetcher, WithProgress(&buf))

	_, err := sync.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "5/5 swatches (100.0%)")
}

func TestSync_SharedConverter(t *testing.T) {
	conv := colorspace.NewConverter()
	fetcher := mock.NewMockFetcher(catalogPages()...)
	sync, _ := setupSync(t, fetcher, WithConverter(conv))

	_, err := sync.Sync(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 5, conv.Len())
}
