package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteStoreListCanonicalizesIDs(t *testing.T) {
	// The legacy API mixes id shapes across documents.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"_id": "64f1a2b3c4", "name": "The Pirate Ship Bounce House", "category": "bounce-house"},
			{"productId": 42, "name": "Tropical Thunder Water Slide"},
			{"id": "slide-7", "name": "Rainbow Mega Slide", "status": "active"}
		]`))
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, 5*time.Second)
	products, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)

	assert.Equal(t, "64f1a2b3c4", products[0].Ref)
	assert.Equal(t, "42", products[1].Ref)
	assert.Equal(t, "slide-7", products[2].Ref)
	assert.Equal(t, "active", products[2].Status)
}

func TestRemoteStoreGetPrefersMongoID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/64f1a2b3c4", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"_id": "64f1a2b3c4", "id": 99, "productId": "legacy-1", "name": "The Pirate Ship Bounce House"}`))
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, 5*time.Second)
	p, err := store.Get(context.Background(), "64f1a2b3c4")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "64f1a2b3c4", p.Ref)
	assert.Equal(t, "The Pirate Ship Bounce House", p.Name)
}

func TestRemoteStoreGetNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, 5*time.Second)
	p, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestRemoteStoreServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	store := NewRemoteStore(srv.URL, 5*time.Second)

	_, err := store.List(context.Background())
	assert.Error(t, err)

	_, err = store.Get(context.Background(), "p1")
	assert.Error(t, err)
}
