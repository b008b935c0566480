package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// RemoteStore reads the catalog from the legacy products API.
type RemoteStore struct {
	baseURL string
	client  *http.Client
}

func NewRemoteStore(baseURL string, timeout time.Duration) *RemoteStore {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// legacyProduct mirrors the loose document shape the old API serves:
// any of _id, id or productId may carry the identifier.
type legacyProduct struct {
	MongoID   string          `json:"_id"`
	ID        json.RawMessage `json:"id"`
	ProductID json.RawMessage `json:"productId"`
	Name      string          `json:"name"`
	Desc      string          `json:"description"`
	Category  string          `json:"category"`
	Status    string          `json:"status"`
}

func (p legacyProduct) canonical() Product {
	ref := p.MongoID
	if ref == "" {
		ref = rawToString(p.ProductID)
	}
	if ref == "" {
		ref = rawToString(p.ID)
	}
	return Product{
		Ref:         ref,
		Name:        p.Name,
		Description: p.Desc,
		Category:    p.Category,
		Status:      p.Status,
	}
}

// rawToString accepts both numeric and string ids.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return ""
}

func (s *RemoteStore) List(ctx context.Context) ([]Product, error) {
	var legacy []legacyProduct
	if err := s.getJSON(ctx, s.baseURL+"/api/products", &legacy); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]Product, 0, len(legacy))
	for _, lp := range legacy {
		products = append(products, lp.canonical())
	}
	return products, nil
}

func (s *RemoteStore) Get(ctx context.Context, ref string) (*Product, error) {
	var lp legacyProduct
	err := s.getJSON(ctx, s.baseURL+"/api/products/"+ref, &lp)
	if err != nil {
		if err == errNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %s: %w", ref, err)
	}
	p := lp.canonical()
	return &p, nil
}

var errNotFound = fmt.Errorf("not found")

func (s *RemoteStore) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return errNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return json.NewDecoder(res.Body).Decode(out)
}

var _ Store = (*RemoteStore)(nil)
