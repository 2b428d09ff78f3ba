package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrBadRequest = errors.New("bad request")
var ErrUnautorized = errors.New("unautorized")
var ErrServerError = errors.New("server error")
var ErrNotFoundError = errors.New("not found")
var ErrNotAllowed = errors.New("not acceptable")

type Product_db struct {
	Id        int64           `json:"id" db:"Id"`
	Name      string          `json:"name" db:"Name"`
	Sku       string          `json:"sku" db:"Sku"`
	Thumbnail string          `json:"thumbnail" db:"Thumbnail"`
	Images    []string        `json:"images" db:"Images"`
	Price     decimal.Decimal `json:"price" db:"Price"`
	Quantity  int             `json:"quantity" db:"Quantity"`
	Available bool            `json:"available" db:"Available"`
}

type UserSession struct {
	UserId int
	Role   string
}
