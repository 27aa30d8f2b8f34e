package styledex

import "errors"

// Sentinel errors decoded from API error responses.
// Use errors.Is() to check.
var (
	ErrItemNotFound      = errors.New("item not found")
	ErrEmptyCatalog      = errors.New("catalog has no valid items")
	ErrCatalogNotReady   = errors.New("catalog not ready")
	ErrEmbeddingProvider = errors.New("embedding provider error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrBadRequest        = errors.New("bad request")
)

// codeToSentinel maps API error codes to sentinel errors.
var codeToSentinel = map[string]error{
	"item_not_found":           ErrItemNotFound,
	"empty_catalog":            ErrEmptyCatalog,
	"catalog_not_ready":        ErrCatalogNotReady,
	"embedding_provider_error": ErrEmbeddingProvider,
	"bad_request":              ErrBadRequest,
}
