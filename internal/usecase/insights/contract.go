package insights

import (
	"github.com/smartstyle-cloud/styledex/internal/domain/catalog"
	"github.com/smartstyle-cloud/styledex/internal/usecase/similarity"
)

// CatalogSnapshot provides the currently served catalog session. Insights
// queries only read the store; the index half of the pair is ignored.
type CatalogSnapshot interface {
	Snapshot() (*catalog.Store, *similarity.Index, error)
}
