package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

func TestLivenessClient_Alive(t *testing.T) {
	gauge := entity.ItemRef{Kind: entity.ItemKindUnique, ID: "G-1"}
	tool := entity.ItemRef{Kind: entity.ItemKindUnique, ID: "T-1"}
	part := entity.ItemRef{Kind: entity.ItemKindPooled, ID: "P-1"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer s3cr3t", r.Header.Get("Authorization"))
		var in livenessPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Len(t, in.Items, 3)

		no, yes := false, true
		_ = json.NewEncoder(w).Encode(livenessPayload{Items: []itemPayload{
			{Kind: "unique", ID: "G-1", Exists: &no},
			{Kind: "pooled", ID: "P-1", Exists: &yes},
			{Kind: "unique", ID: "X-no-consultado", Exists: &no},
		}})
	}))
	defer srv.Close()

	c := NewLivenessClient(srv.URL, "s3cr3t", time.Second)
	alive, err := c.Alive(context.Background(), []entity.ItemRef{gauge, tool, part})
	require.NoError(t, err)

	assert.Len(t, alive, 3)
	assert.False(t, alive[gauge])
	assert.True(t, alive[part])
	// T-1 no aparece en la respuesta: se asume vivo.
	assert.True(t, alive[tool])
}

func TestLivenessClient_ErrorHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "caído", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewLivenessClient(srv.URL, "", time.Second)
	_, err := c.Alive(context.Background(), []entity.ItemRef{{Kind: entity.ItemKindUnique, ID: "G-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLivenessClient_SinItemsNoLlama(t *testing.T) {
	c := NewLivenessClient("http://127.0.0.1:1", "", time.Second)
	alive, err := c.Alive(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, alive)
}
