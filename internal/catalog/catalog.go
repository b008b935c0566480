package catalog

import "context"

// Product is the canonical catalog record shape. The legacy API's
// `_id` / `id` / `productId` duck-typing is reconciled once, in the
// adapter that talks to it, never past this boundary.
type Product struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status,omitempty"`
}

type Store interface {
	List(ctx context.Context) ([]Product, error)
	// Get returns nil when the ref resolves to nothing.
	Get(ctx context.Context, ref string) (*Product, error)
}
