package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	r := s.Repos()
	require.NoError(t, r.Products.Create(ctx, &entity.Product{ID: "p1", NameAr: "Tôle", Category: "tôles"}))
	require.NoError(t, r.Variants.Create(ctx, &entity.Variant{ID: "v1", ProductID: "p1", Specification: "2mm", SKU: "T-2", Stock: decimal.NewFromInt(5)}))
}

func TestRun_RollbackEnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)
	boom := errors.New("falla")

	err := s.Run(ctx, func(r repository.Repos) error {
		v, err := r.Variants.GetForUpdate(ctx, "p1", "v1")
		require.NoError(t, err)
		require.NoError(t, r.Variants.UpdateStock(ctx, v.ID, decimal.NewFromInt(99), v.Version))
		_, err = r.Sequences.Next(ctx, repository.SequenceInvoice, 2025)
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := s.Repos().Variants.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, v.Stock.Equal(decimal.NewFromInt(5)))
	n, err := s.Repos().Sequences.Current(ctx, repository.SequenceInvoice, 2025)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRun_CommitYContextoCancelado(t *testing.T) {
	s := New()
	seed(t, s)

	require.NoError(t, s.Run(context.Background(), func(r repository.Repos) error {
		_, err := r.Sequences.Next(context.Background(), repository.SequencePurchase, 2025)
		return err
	}))
	n, err := s.Repos().Sequences.Current(context.Background(), repository.SequencePurchase, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	ctx, cancel := context.WithCancel(context.Background())
	err = s.Run(ctx, func(r repository.Repos) error {
		cancel()
		_, err := r.Sequences.Next(ctx, repository.SequencePurchase, 2025)
		return err
	})
	assert.ErrorIs(t, err, context.Canceled)
	n, _ = s.Repos().Sequences.Current(context.Background(), repository.SequencePurchase, 2025)
	assert.Equal(t, int64(1), n)
}

func TestRepos_DevuelvenCopias(t *testing.T) {
	ctx := context.Background()
	s := New()
	seed(t, s)

	v, err := s.Repos().Variants.GetByID(ctx, "v1")
	require.NoError(t, err)
	v.Stock = decimal.NewFromInt(1000)

	again, err := s.Repos().Variants.GetByID(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, again.Stock.Equal(decimal.NewFromInt(5)))

	missing, err := s.Repos().Products.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	st := NewIdempotencyStore()

	claimed, _, err := st.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, val, err := st.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Empty(t, val, "en curso")

	require.NoError(t, st.Complete(ctx, "k", "sale-1", time.Minute))
	claimed, val, err = st.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, "sale-1", val)

	require.NoError(t, st.Release(ctx, "k"))
	claimed, _, err = st.Claim(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, _, err = st.Claim(ctx, "corta", time.Nanosecond)
	require.NoError(t, err)
	require.True(t, claimed)
	time.Sleep(time.Millisecond)
	claimed, _, err = st.Claim(ctx, "corta", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "una clave vencida se puede volver a reservar")
}

func TestIdempotencyStore_TTLCeroNoExpira(t *testing.T) {
	ctx := context.Background()
	st := NewIdempotencyStore()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	claimed, _, err := st.Claim(ctx, "k", 0)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, st.Complete(ctx, "k", "sale-1", 0))

	now = now.Add(365 * 24 * time.Hour)
	claimed, val, err := st.Claim(ctx, "k", 0)
	require.NoError(t, err)
	assert.False(t, claimed)
	assert.Equal(t, "sale-1", val)
}
