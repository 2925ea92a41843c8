package domain

import "context"

// StoredAsset is the durable result of storing a binary asset: a public URL
// for the document to reference and an opaque handle for later deletion.
type StoredAsset struct {
	URL     string
	AssetID string
}

// AssetStore persists binary assets (event images) outside the document
// store. Delete failures are expected to be tolerated by callers: the event
// row is the source of truth and a leaked asset is an acceptable cost.
type AssetStore interface {
	Store(ctx context.Context, data []byte, contentType string) (*StoredAsset, error)
	Delete(ctx context.Context, assetID string) error
}
