package recommend

import (
	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
	"github.com/smartstyle-cloud/styledex/internal/usecase/similarity"
)

// CatalogSnapshot provides the currently served catalog session.
type CatalogSnapshot interface {
	Snapshot() (*catalog.Store, *similarity.Index, error)
}
