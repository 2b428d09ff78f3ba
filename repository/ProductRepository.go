package repository

import (
	"context"
	"database/sql"
	"errors"

	"guestcart/models"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type ProductRepository interface {
	GetProductById(ctx context.Context, id int64) (pModel models.Product_db, exists bool, err error)
}

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepository(ctx context.Context, conn *sql.DB) (ProductRepository, error) {
	if conn == nil {
		return nil, errors.New("conn must be non-nil")
	}
	err := conn.PingContext(ctx)
	if err != nil {
		return nil, err
	}
	return &ProductRepo{
		db: conn,
	}, nil
}

func (p *ProductRepo) GetProductById(ctx context.Context, id int64) (pModel models.Product_db, exists bool, err error) {
	var thumbnail sql.NullString
	row := p.db.QueryRowContext(ctx, "SELECT Id, Name, Sku, Thumbnail, Images, Price, Quantity, Available FROM Products where Id = $1", id)
	err = row.Scan(&pModel.Id, &pModel.Name, &pModel.Sku, &thumbnail,
		pq.Array(&pModel.Images), &pModel.Price, &pModel.Quantity, &pModel.Available)

	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
		} else {
			logrus.WithField("product_id", id).WithError(err).Error("GetProductById: query failed")
			err = models.ErrServerError
		}
		return
	}
	pModel.Thumbnail = thumbnail.String
	exists = true
	return
}
