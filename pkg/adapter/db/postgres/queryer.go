package postgres

import (
	"context"

	"github.com/momeni/clean-lending/pkg/core/repo"
	"gorm.io/gorm"
)

// Queryer is satisfied by *Conn and *Tx, so queries which may run
// with either of them can be written once as generic functions.
type Queryer interface {
	*Conn | *Tx
	repo.Queryer

	GORM(ctx context.Context) *gorm.DB
}
