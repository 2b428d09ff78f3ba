package services

import (
	"context"
	"testing"

	"guestcart/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProductRepo struct {
	products map[int64]models.Product_db
	err      error
}

func (s stubProductRepo) GetProductById(ctx context.Context, id int64) (models.Product_db, bool, error) {
	if s.err != nil {
		return models.Product_db{}, false, s.err
	}
	p, ok := s.products[id]
	return p, ok, nil
}

func TestGetProductSnapshot(t *testing.T) {
	repo := stubProductRepo{products: map[int64]models.Product_db{
		1: {Id: 1, Name: "Mug ", Sku: "MUG-1", Images: []string{"a.png", "b.png"},
			Price: decimal.RequireFromString("12.50"), Quantity: 3, Available: true},
		2: {Id: 2, Name: "Lamp", Sku: "LMP", Thumbnail: "t.png",
			Price: decimal.NewFromInt(40), Quantity: 0, Available: true},
	}}
	ps := NewProductService(repo)
	ctx := context.Background()

	snap, exists, err := ps.GetProductSnapshot(ctx, 1)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "Mug", snap.Name)
	assert.Equal(t, "MUG-1", snap.Sku)
	assert.Equal(t, "a.png", snap.Thumbnail, "first image doubles as thumbnail")
	assert.Equal(t, []string{"a.png", "b.png"}, snap.Images)
	assert.True(t, snap.Price.Valid)
	assert.True(t, snap.Price.Decimal.Equal(decimal.RequireFromString("12.5")))
	assert.True(t, snap.InStock)
	assert.NoError(t, snap.Validate())

	snap, exists, err = ps.GetProductSnapshot(ctx, 2)
	require.NoError(t, err)
	require.True(t, exists)
	assert.Equal(t, "t.png", snap.Thumbnail)
	assert.False(t, snap.InStock)

	_, exists, err = ps.GetProductSnapshot(ctx, 3)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetProductSnapshot_RepositoryError(t *testing.T) {
	ps := NewProductService(stubProductRepo{err: models.ErrServerError})

	_, exists, err := ps.GetProductSnapshot(context.Background(), 1)
	assert.ErrorIs(t, err, models.ErrServerError)
	assert.False(t, exists)
}

func TestSymbolFormatter(t *testing.T) {
	tests := []struct {
		symbol string
		amount string
		want   string
	}{
		{"$", "20", "$20.00"},
		{"$", "0", "$0.00"},
		{"$", "1234.5", "$1234.50"},
		{"$", "0.005", "$0.01"},
		{"€", "9.99", "€9.99"},
		{"$", "-5", "-$5.00"},
	}
	for _, tt := range tests {
		f := SymbolFormatter{Symbol: tt.symbol}
		assert.Equal(t, tt.want, f.Format(decimal.RequireFromString(tt.amount)))
	}
}
