package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/inventario-tracking/internal/application/tracking"
	"github.com/jhoicas/inventario-tracking/internal/domain/entity"
)

// Verificar en tiempo de compilación que LivenessClient implementa LivenessChecker.
var _ tracking.LivenessChecker = (*LivenessClient)(nil)

// LivenessClient consulta al servicio de catálogos qué ítems siguen existiendo.
//
// Protocolo: POST {url} con {"items":[{"kind","id"}]} y respuesta
// {"items":[{"kind","id","exists"}]}. Un ítem que el catálogo no menciona se
// considera vivo: solo se retira lo que el catálogo niega explícitamente.
type LivenessClient struct {
	url        string
	token      string
	httpClient *http.Client
}

// NewLivenessClient construye el adaptador. token es opcional (Bearer).
func NewLivenessClient(url, token string, timeout time.Duration) *LivenessClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LivenessClient{
		url:        url,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type itemPayload struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Exists *bool  `json:"exists,omitempty"`
}

type livenessPayload struct {
	Items []itemPayload `json:"items"`
}

// Alive devuelve un mapa con una entrada por cada ítem consultado.
func (c *LivenessClient) Alive(ctx context.Context, items []entity.ItemRef) (map[entity.ItemRef]bool, error) {
	result := make(map[entity.ItemRef]bool, len(items))
	if len(items) == 0 {
		return result, nil
	}
	req := livenessPayload{Items: make([]itemPayload, 0, len(items))}
	for _, it := range items {
		result[it] = true
		req.Items = append(req.Items, itemPayload{Kind: string(it.Kind), ID: it.ID})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("catálogo: serializar request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("catálogo: crear HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("catálogo: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("catálogo: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("catálogo: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catálogo: HTTP %d: %s", resp.StatusCode, truncate(string(raw), 256))
	}

	var out livenessPayload
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("catálogo: deserializar respuesta: %w", err)
	}
	for _, it := range out.Items {
		ref := entity.ItemRef{Kind: entity.ItemKind(it.Kind), ID: it.ID}
		if _, asked := result[ref]; !asked || it.Exists == nil {
			continue
		}
		result[ref] = *it.Exists
	}
	return result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
