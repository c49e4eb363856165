package attio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/ports"
)

// Client cliente de Attio usando la API v2 directamente
type Client struct {
	baseURL    string
	apiKey     string
	listSlug   string
	timeout    time.Duration
	httpClient *http.Client
}

var _ ports.Store = (*Client)(nil)

// recordRef identificador de un registro o entrada en las respuestas de Attio
type recordRef struct {
	RecordID string `json:"record_id"`
	EntryID  string `json:"entry_id"`
}

// queryResponse respuesta de los endpoints de consulta
type queryResponse struct {
	Data []struct {
		ID recordRef `json:"id"`
	} `json:"data"`
}

// entryResponse respuesta al leer una entrada de lista
type entryResponse struct {
	Data struct {
		ID          recordRef   `json:"id"`
		EntryValues EntryValues `json:"entry_values"`
	} `json:"data"`
}

// NewClient crea un nuevo cliente de Attio
func NewClient(cfg config.AttioConfig) (*Client, error) {
	if cfg.APIKey == "" || cfg.ListSlug == "" {
		return nil, fmt.Errorf("faltan credenciales de Attio o slug de la lista")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		listSlug:   cfg.ListSlug,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FindCompanyByDomain busca la compañía asociada al dominio
func (c *Client) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	payload := map[string]interface{}{
		"filter": map[string]interface{}{
			"domains": map[string]string{"domain": domain},
		},
		"limit": 1,
	}
	id, err := c.queryFirst(ctx, "/objects/companies/records/query", payload)
	if err != nil {
		return "", fmt.Errorf("buscando compañía para %s: %w", domain, err)
	}
	return id.RecordID, nil
}

// FindDealByCompany busca el deal asociado a la compañía
func (c *Client) FindDealByCompany(ctx context.Context, companyID string) (string, error) {
	payload := map[string]interface{}{
		"filter": map[string]interface{}{
			"associated_company": map[string]string{
				"target_object":    "companies",
				"target_record_id": companyID,
			},
		},
		"limit": 1,
	}
	id, err := c.queryFirst(ctx, "/objects/deals/records/query", payload)
	if err != nil {
		return "", fmt.Errorf("buscando deal de la compañía %s: %w", companyID, err)
	}
	return id.RecordID, nil
}

// FindEntryByDeal busca la entrada de la lista cuyo registro padre es el deal
func (c *Client) FindEntryByDeal(ctx context.Context, dealID string) (string, error) {
	payload := map[string]interface{}{
		"filter": map[string]interface{}{
			"path": [][]string{
				{c.listSlug, "parent_record"},
				{"deals", "record_id"},
			},
			"constraints": map[string]string{"value": dealID},
		},
		"limit": 1,
	}
	id, err := c.queryFirst(ctx, c.entriesPath()+"/query", payload)
	if err != nil {
		return "", fmt.Errorf("buscando entrada del deal %s: %w", dealID, err)
	}
	return id.EntryID, nil
}

// ReadHistory lee los valores actuales de la entrada
func (c *Client) ReadHistory(ctx context.Context, entryID string) (funnel.History, error) {
	var resp entryResponse
	if err := c.do(ctx, http.MethodGet, c.entriesPath()+"/"+url.PathEscape(entryID), nil, &resp); err != nil {
		return funnel.History{}, fmt.Errorf("leyendo entrada %s: %w", entryID, err)
	}
	return DecodeHistory(resp.Data.EntryValues), nil
}

// WriteHistory guarda la decisión en la entrada. Se usa PUT para que los
// multiselect de votos se sobrescriban en lugar de acumularse.
func (c *Client) WriteHistory(ctx context.Context, entryID string, d funnel.Decision) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"entry_values": EncodeEntryValues(d),
		},
	}
	if err := c.do(ctx, http.MethodPut, c.entriesPath()+"/"+url.PathEscape(entryID), body, nil); err != nil {
		return fmt.Errorf("actualizando entrada %s: %w", entryID, err)
	}
	return nil
}

func (c *Client) entriesPath() string {
	return "/lists/" + url.PathEscape(c.listSlug) + "/entries"
}

// queryFirst ejecuta una consulta con limit 1 y devuelve el primer resultado
func (c *Client) queryFirst(ctx context.Context, path string, payload interface{}) (recordRef, error) {
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return recordRef{}, err
	}
	if len(resp.Data) == 0 || (resp.Data[0].ID.RecordID == "" && resp.Data[0].ID.EntryID == "") {
		return recordRef{}, ports.ErrNotFound
	}
	return resp.Data[0].ID, nil
}

// do envía la petición con timeout acotado y un único reintento ante fallos transitorios
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("error serializando request: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		respBody []byte
		status   int
		err      error
	)
	for attempt := 0; attempt < 2; attempt++ {
		respBody, status, err = c.send(ctx, method, path, body)
		if !transient(ctx, status, err) {
			break
		}
		if attempt == 0 {
			log.Printf("Fallo transitorio en Attio %s %s, reintentando: %v (status %d)", method, path, err, status)
		}
	}

	if err != nil {
		return fmt.Errorf("%w: error haciendo request a %s: %v", ports.ErrUpstream, path, err)
	}
	if status < 200 || status > 299 {
		log.Printf("Error en API de Attio %s %s (status %d): %s", method, path, status, string(respBody))
		return fmt.Errorf("%w: Attio respondió %d en %s: %s", ports.ErrUpstream, status, path, string(respBody))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: error parseando response de %s: %v", ports.ErrUpstream, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("error creando request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error leyendo response: %v", err)
	}
	return respBody, resp.StatusCode, nil
}

// transient indica si vale la pena reintentar
func transient(ctx context.Context, status int, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		var urlErr *url.Error
		return errors.As(err, &urlErr)
	}
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
