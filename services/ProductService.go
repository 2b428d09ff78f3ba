package services

import (
	"context"
	"strings"

	"guestcart/entities"
	"guestcart/repository"

	"github.com/shopspring/decimal"
)

// ProductCatalog supplies the snapshot captured when a product is added.
type ProductCatalog interface {
	GetProductSnapshot(ctx context.Context, productId int64) (snapshot entities.ProductSnapshot, exists bool, err error)
}

type ProductService struct {
	pr repository.ProductRepository
}

func NewProductService(pRepo repository.ProductRepository) ProductService {
	return ProductService{
		pr: pRepo,
	}
}

func (ps ProductService) GetProductSnapshot(ctx context.Context, productId int64) (snapshot entities.ProductSnapshot, exists bool, err error) {
	pModel, exists, err := ps.pr.GetProductById(ctx, productId)
	if err != nil || !exists {
		return
	}

	thumbnail := pModel.Thumbnail
	if thumbnail == "" && len(pModel.Images) > 0 {
		thumbnail = pModel.Images[0]
	}
	snapshot = entities.ProductSnapshot{
		Id:        pModel.Id,
		Name:      strings.TrimSpace(pModel.Name),
		Sku:       pModel.Sku,
		Thumbnail: thumbnail,
		Images:    pModel.Images,
		Price:     decimal.NewNullDecimal(pModel.Price),
		InStock:   pModel.Available && pModel.Quantity > 0,
	}
	return
}
