package store

import (
	"context"
	"errors"
	"testing"

	"github.com/arturoeanton/go-license-rag-ollama/internal/domain"
	"github.com/stretchr/testify/require"
)

// stubSource serves a fixed record slice or a fixed error.
type stubSource struct {
	records []domain.Record
	err     error
}

func (s *stubSource) Fetch(ctx context.Context) ([]domain.Record, error) {
	return s.records, s.err
}

func (s *stubSource) Name() string { return "stub" }

func TestRecordStore_Load(t *testing.T) {
	src := &stubSource{records: []domain.Record{
		{Software: "MATLAB", Server: "s1", Location: "UK", License: "l1"},
	}}
	rs := NewRecordStore(src)

	snapshot, err := rs.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snapshot.Records, 1)
	require.NotEmpty(t, snapshot.Hash)
}

func TestRecordStore_Changed(t *testing.T) {
	src := &stubSource{records: []domain.Record{
		{Software: "MATLAB", Server: "s1", Location: "UK", License: "l1"},
	}}
	rs := NewRecordStore(src)

	snapshot, err := rs.Load(context.Background())
	require.NoError(t, err)

	changed, err := rs.Changed(context.Background(), snapshot.Hash)
	require.NoError(t, err)
	require.False(t, changed)

	src.records[0].LatestLicenseIssued = 99
	changed, err = rs.Changed(context.Background(), snapshot.Hash)
	require.NoError(t, err)
	require.True(t, changed)
}

func TestRecordStore_LoadError(t *testing.T) {
	rs := NewRecordStore(&stubSource{err: errors.New("boom")})
	_, err := rs.Load(context.Background())
	require.Error(t, err)
}
