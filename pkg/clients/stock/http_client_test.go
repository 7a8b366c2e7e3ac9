package stock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/hatchery/internal/config"
	"github.com/mamadbah2/hatchery/internal/domain/models"
)

type fakeInventory struct {
	mu    sync.Mutex
	calls []string
	keys  []string
}

func (f *fakeInventory) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, r.Method+" "+r.URL.Path)
		if key := r.Header.Get("Idempotency-Key"); key != "" {
			f.keys = append(f.keys, key)
		}
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
	}
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.URL.Query().Get("name") != "Eggs" {
			writeJSON(w, []namedEntity{})
			return
		}
		writeJSON(w, []namedEntity{{ID: "p-1", Name: "Eggs"}})
	})
	mux.HandleFunc("/products/p-1/lots", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		assert.Equal(t, "quantity_desc", r.URL.Query().Get("order"))
		writeJSON(w, []models.StockLot{{ID: "l-2", ProductID: "p-1", Quantity: 40}, {ID: "l-1", ProductID: "p-1", Quantity: 5}})
	})
	mux.HandleFunc("/scraps", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		if r.Method == http.MethodGet {
			assert.Equal(t, "done", r.URL.Query().Get("state"))
			if r.URL.Query().Get("origin") != "batch/1/break/4" {
				writeJSON(w, []scrapRecord{})
				return
			}
			writeJSON(w, []scrapRecord{{ID: "s-1", Quantity: 50}, {ID: "s-2", Quantity: 7}})
			return
		}
		var req models.ScrapRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "l-2", req.LotID)
		writeJSON(w, createdResponse{ID: "s-9"})
	})
	mux.HandleFunc("/scraps/s-9/validate", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/pickings", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, createdResponse{ID: "pk-1"})
	})
	for _, step := range []string{"confirm", "assign", "validate"} {
		mux.HandleFunc("/pickings/pk-1/"+step, func(w http.ResponseWriter, r *http.Request) {
			record(r)
			w.WriteHeader(http.StatusOK)
		})
	}
	mux.HandleFunc("/pickings/missing/confirm", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"no such picking"}}`))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T) (*APIClient, *fakeInventory) {
	fake := &fakeInventory{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)
	return NewClient(config.StockConfig{BaseURL: srv.URL + "/", Token: "secret"}), fake
}

func TestAPIClientResolve(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	id, err := client.ResolveProduct(ctx, "Eggs")
	require.NoError(t, err)
	assert.Equal(t, "p-1", id)

	_, err = client.ResolveProduct(ctx, "Feathers")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAPIClientScrapCreatesAndValidates(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	lots, err := client.OnHandLots(ctx, "p-1")
	require.NoError(t, err)
	require.Len(t, lots, 2)

	req := models.ScrapRequest{ProductID: "p-1", LotID: lots[0].ID, Quantity: 3, Origin: "batch/1/break/4"}
	id, err := client.Scrap(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "s-9", id)
	assert.Contains(t, fake.calls, "POST /scraps/s-9/validate")
	require.Len(t, fake.keys, 2)
	assert.NotEqual(t, fake.keys[0], fake.keys[1])

	// resending the same scrap reuses its keys
	_, err = client.Scrap(ctx, req)
	require.NoError(t, err)
	require.Len(t, fake.keys, 4)
	assert.Equal(t, fake.keys[:2], fake.keys[2:])

	req.Quantity = 4
	_, err = client.Scrap(ctx, req)
	require.NoError(t, err)
	require.Len(t, fake.keys, 6)
	assert.NotEqual(t, fake.keys[0], fake.keys[4])
	assert.Equal(t, fake.keys[1], fake.keys[5])
}

func TestAPIClientScrappedSumsByOrigin(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	total, err := client.Scrapped(ctx, "p-1", "batch/1/break/4")
	require.NoError(t, err)
	assert.Equal(t, 57, total)

	total, err = client.Scrapped(ctx, "p-1", "batch/1/break/5")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestAPIClientMovementLifecycle(t *testing.T) {
	client, fake := newTestClient(t)
	ctx := context.Background()

	id, err := client.CreateMovement(ctx, models.MovementRequest{ProductID: "p-2", Quantity: 80})
	require.NoError(t, err)
	require.NoError(t, client.ValidateMovement(ctx, id))
	assert.Equal(t, []string{
		"POST /pickings",
		"POST /pickings/pk-1/confirm",
		"POST /pickings/pk-1/assign",
		"POST /pickings/pk-1/validate",
	}, fake.calls)

	err = client.ValidateMovement(ctx, "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "no such picking")

	stepKeys := fake.keys[1:4]
	assert.Len(t, map[string]bool{stepKeys[0]: true, stepKeys[1]: true, stepKeys[2]: true}, 3)
	_, err = client.CreateMovement(ctx, models.MovementRequest{ProductID: "p-2", Quantity: 80})
	require.NoError(t, err)
	assert.Equal(t, fake.keys[0], fake.keys[len(fake.keys)-1])
}
