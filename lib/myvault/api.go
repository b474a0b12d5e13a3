package myvault

import (
	"context"

	"github.com/commercekit/storefront/lib/mystore"
)

//go:generate mockgen -source=api.go -package myvault -destination vault_mock.go VaultReader
type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

type VaultReadWriter[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
	Put(c context.Context, uid string, value T) error
}

func New[T any](c context.Context) (VaultReadWriter[T], func(), error) {
	return mystore.New[T](c)
}
