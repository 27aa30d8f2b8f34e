package domain

import "errors"

var (
	// ErrEmptyCatalog signals that loading produced a catalog with no valid items.
	ErrEmptyCatalog = errors.New("catalog has no valid items")
	// ErrItemNotFound signals an unknown item id.
	ErrItemNotFound = errors.New("item not found")
	// ErrVectorDimMismatch signals inconsistent embedding dimensions within one index build.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrIndexNotReady signals that no catalog session has been loaded yet.
	ErrIndexNotReady = errors.New("similarity index not ready")
)
