package service

import (
	"context"
	"errors"
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/arturoeanton/go-license-rag-ollama/internal/index"
	"github.com/stretchr/testify/require"
)

// swapSource serves whatever record set the test installed last.
type swapSource struct {
	records []domain.Record
	err     error
}

func (s *swapSource) Fetch(context.Context) ([]domain.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *swapSource) Name() string { return "test" }

func newRefreshFixture(source *swapSource) (*RefreshService, *StateHolder, *ResponseCache) {
	state := NewStateHolder()
	responses := NewResponseCache(100)
	svc := NewRefreshService(
		store.NewRecordStore(source),
		index.NewBuilder(&fakeProvider{}, 0),
		nil, // persistence disabled
		state,
		responses,
	)
	return svc, state, responses
}

func TestRefreshService_BootstrapBuildsIndex(t *testing.T) {
	source := &swapSource{records: []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
		{Software: "SPSS", Server: "SRV00002", Location: "Berlin", License: "LIC-2"},
	}}
	svc, state, _ := newRefreshFixture(source)

	require.NoError(t, svc.Bootstrap(context.Background(), false))

	require.True(t, state.Ready())
	require.Equal(t, 2, state.IndexedRecords())
}

func TestRefreshService_BootstrapLazySkipsBuild(t *testing.T) {
	source := &swapSource{records: []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
	}}
	svc, state, _ := newRefreshFixture(source)

	require.NoError(t, svc.Bootstrap(context.Background(), true))
	require.False(t, state.Ready())

	// the first scheduled refresh does the build instead
	result, err := svc.CheckAndRefresh(context.Background())
	require.NoError(t, err)
	require.True(t, result.DataChanged)
	require.True(t, state.Ready())
}

func TestRefreshService_UnchangedDataIsNoOp(t *testing.T) {
	source := &swapSource{records: []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
	}}
	svc, state, responses := newRefreshFixture(source)
	require.NoError(t, svc.Bootstrap(context.Background(), false))

	responses.Put("k", CacheEntry{Answer: "a"})
	before := state.Acquire()

	result, err := svc.CheckAndRefresh(context.Background())
	require.NoError(t, err)

	require.False(t, result.DataChanged)
	require.Equal(t, "data unchanged", result.Message)
	require.Same(t, before, state.Acquire())
	require.Equal(t, 1, responses.Len())
}

func TestRefreshService_ChangedDataRebuildsAndInvalidates(t *testing.T) {
	source := &swapSource{records: []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
	}}
	svc, state, responses := newRefreshFixture(source)
	require.NoError(t, svc.Bootstrap(context.Background(), false))

	responses.Put("k", CacheEntry{Answer: "stale"})
	before := state.Acquire()

	source.records = append(source.records, domain.Record{
		Software: "SPSS", Server: "SRV00002", Location: "Berlin", License: "LIC-2",
	})

	result, err := svc.CheckAndRefresh(context.Background())
	require.NoError(t, err)

	require.True(t, result.DataChanged)
	require.Equal(t, 2, result.IndexedRecords)
	require.NotSame(t, before, state.Acquire())
	require.Equal(t, 0, responses.Len())
}

func TestRefreshService_SourceErrorKeepsActiveState(t *testing.T) {
	source := &swapSource{records: []domain.Record{
		{Software: "MATLAB", Server: "SRV00001", Location: "Austin", License: "LIC-1"},
	}}
	svc, state, _ := newRefreshFixture(source)
	require.NoError(t, svc.Bootstrap(context.Background(), false))

	before := state.Acquire()
	source.err = errors.New("source unreachable")

	_, err := svc.CheckAndRefresh(context.Background())
	require.Error(t, err)
	require.Same(t, before, state.Acquire())
}
