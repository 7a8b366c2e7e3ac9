package sheets

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	service, err := sheetsapi.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return &GoogleSheetRepository{service: service, spreadsheetID: "sheet-1", logger: zap.NewNop()}
}

func TestAppendRowsSendsOneBatch(t *testing.T) {
	var calls int
	var got sheetsapi.ValueRange
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"updates":{"updatedRange":"Hatchery!A2:L3"}}`))
	})

	err := repo.AppendRows(context.Background(), "Hatchery!A:L", [][]interface{}{{"2024-05-02", "BATCH-00001"}, {"2024-05-02", "BATCH-00002"}})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, got.Values, 2)
	assert.Equal(t, "BATCH-00002", got.Values[1][1])
}

func TestAppendRowsSkipsEmptyInput(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})

	assert.NoError(t, repo.AppendRows(context.Background(), "Hatchery!A:L", nil))
	assert.Error(t, repo.AppendRows(context.Background(), "", [][]interface{}{{"x"}}))
}

func TestReadRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Hatchery!A1:L1","values":[["Date","Lot"]]}`))
	})

	rows, err := repo.ReadRange(context.Background(), "Hatchery!A1:L1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Lot", rows[0][1])
}

func TestReadRangeSurfacesAPIErrors(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	_, err := repo.ReadRange(context.Background(), "Hatchery!A:L")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Hatchery!A:L")
}
