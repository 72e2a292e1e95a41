package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KaramelBytes/dataprep-cli/internal/dataset"
)

const sample = "Company,Ram,Price\nDell,8GB,500\nHP,,700\nAsus,4GB,\n"

func dropFirstColumn(d *dataset.Dataset) (*dataset.Dataset, error) {
	cols := d.Columns()[1:]
	return dataset.NewSized(d.NumRows(), cols...)
}

func TestEmptyStoreRejectsOperations(t *testing.T) {
	s := New(WithLogger(zaptest.NewLogger(t)))
	assert.False(t, s.Loaded())

	_, err := s.Current()
	assert.ErrorIs(t, err, dataset.ErrNoDatasetLoaded)
	assert.ErrorIs(t, s.Reset(), dataset.ErrNoDatasetLoaded)
	assert.ErrorIs(t, s.Apply("noop", dropFirstColumn), dataset.ErrNoDatasetLoaded)
	assert.NotEmpty(t, s.ID())
}

func TestLoadApplyReset(t *testing.T) {
	s := New()
	require.NoError(t, s.Load("laptops.csv", []byte(sample)))
	loaded, err := s.Current()
	require.NoError(t, err)

	require.NoError(t, s.Apply("drop", dropFirstColumn))
	require.NoError(t, s.Apply("drop", dropFirstColumn))
	cur, _ := s.Current()
	assert.Equal(t, []string{"Price"}, cur.Names())
	assert.Len(t, s.History(), 2)

	require.NoError(t, s.Reset())
	after, _ := s.Current()
	assert.True(t, loaded.Equal(after))
	assert.Empty(t, s.History())

	orig, _ := s.Original()
	assert.NotSame(t, orig, after)
}

func TestApplyFailureLeavesCurrent(t *testing.T) {
	s := New()
	require.NoError(t, s.Load("laptops.csv", []byte(sample)))
	before, _ := s.Current()

	boom := errors.New("boom")
	err := s.Apply("fail", func(*dataset.Dataset) (*dataset.Dataset, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	after, _ := s.Current()
	assert.Same(t, before, after)
	assert.Empty(t, s.History())
}

func TestLoadFailureKeepsPreviousState(t *testing.T) {
	s := New()
	require.NoError(t, s.Load("laptops.csv", []byte(sample)))
	err := s.Load("bad.csv", []byte("a,b\n1,2,3\n"))
	assert.ErrorIs(t, err, dataset.ErrParse)
	assert.Equal(t, "laptops.csv", s.Name())
}

func TestReplace(t *testing.T) {
	s := New()
	require.NoError(t, s.Load("laptops.csv", []byte(sample)))
	assert.ErrorIs(t, s.Replace("replace", nil), dataset.ErrInvalidParameter)

	next := dataset.MustNew(dataset.MustColumn("x", dataset.KindInt, dataset.Int(1)))
	require.NoError(t, s.Replace("replace", next))
	cur, _ := s.Current()
	assert.Same(t, next, cur)
}

func TestApplyIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := New(WithLogger(zap.New(core)))
	require.NoError(t, s.Load("laptops.csv", []byte(sample)))
	require.NoError(t, s.Apply("drop-columns", dropFirstColumn))

	entries := logs.FilterMessage("operation applied").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "drop-columns", fields["op"])
	assert.Equal(t, s.ID(), fields["session"])
	assert.EqualValues(t, 2, fields["cols"])
}
