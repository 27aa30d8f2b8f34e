package catalog

import (
	"context"

	domcat "github.com/smartstyle-cloud/styledex/internal/domain/catalog"
)

// RowSource supplies raw catalog rows for a (re)load.
type RowSource interface {
	Rows(ctx context.Context) ([]domcat.Row, error)
}
