package coupon

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	stored []Descriptor
	err    error
}

var _ Repository = (*memRepo)(nil)

func (m *memRepo) List(context.Context) ([]Descriptor, error) {
	return m.stored, m.err
}

func (m *memRepo) UpsertMany(_ context.Context, descriptors []Descriptor) error {
	m.stored = append(m.stored, descriptors...)
	return m.err
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{}
	require.NoError(t, repo.UpsertMany(ctx, DefaultCatalog().Descriptors()))

	c, err := Load(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Len(), c.Len())

	d, err := c.Describe("B5-MAX10")
	require.NoError(t, err)
	assert.True(t, d.Capped())
}

func TestLoad_Error(t *testing.T) {
	repo := &memRepo{err: errors.New("connection refused")}

	_, err := Load(context.Background(), repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list coupons")
}
