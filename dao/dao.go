package dao

import (
	"context"

	"golang.org/x/xerrors"
	"gorm.io/gorm"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("dao")

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = xerrors.New("not found")
	// ErrAlreadyExists is returned when inserting a row whose unique key is taken.
	ErrAlreadyExists = xerrors.New("already exists")
)

type Dao struct {
	ctx context.Context
	db  *gorm.DB
}

func NewDao(ctx context.Context, db *gorm.DB) *Dao {
	return &Dao{
		ctx: ctx,
		db:  db,
	}
}

// DB exposes the raw handle, mainly for schema checks at startup.
func (d *Dao) DB() *gorm.DB {
	return d.db
}

func mapNotFound(err error) error {
	if xerrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
