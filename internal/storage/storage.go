package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/ports"
)

// Storage maneja el almacenamiento de entradas en archivos individuales.
// La compañía, el deal y la entrada se identifican por el dominio normalizado.
type Storage struct {
	basePath   string
	autoCreate bool
	mu         sync.Mutex
}

var _ ports.Store = (*Storage)(nil)

// Entry contenido del archivo de una entrada
type Entry struct {
	ID        string         `json:"id"`
	History   funnel.History `json:"history"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Option configura el Storage
type Option func(*Storage)

// WithAutoCreate hace que los dominios desconocidos resuelvan a entradas nuevas
func WithAutoCreate() Option {
	return func(s *Storage) { s.autoCreate = true }
}

// New crea una nueva instancia de Storage
func New(basePath string, opts ...Option) (*Storage, error) {
	// Crear directorio base si no existe
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, err
	}

	s := &Storage{basePath: basePath}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FindCompanyByDomain resuelve el dominio a su "compañía"
func (s *Storage) FindCompanyByDomain(ctx context.Context, domain string) (string, error) {
	return s.resolve(domain, "compañía")
}

// FindDealByCompany el deal comparte identificador con la compañía
func (s *Storage) FindDealByCompany(ctx context.Context, companyID string) (string, error) {
	return s.resolve(companyID, "deal")
}

// FindEntryByDeal la entrada comparte identificador con el deal
func (s *Storage) FindEntryByDeal(ctx context.Context, dealID string) (string, error) {
	return s.resolve(dealID, "entrada")
}

func (s *Storage) resolve(id, kind string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%s sin identificador: %w", kind, ports.ErrNotFound)
	}
	if s.autoCreate || s.EntryExists(id) {
		return id, nil
	}
	return "", fmt.Errorf("%s %s: %w", kind, id, ports.ErrNotFound)
}

// EntryExists verifica si ya existe un archivo para la entrada
func (s *Storage) EntryExists(id string) bool {
	_, err := os.Stat(s.getFilePath(id))
	return !os.IsNotExist(err)
}

// ReadHistory carga el historial de la entrada; si no existe devuelve el estado inicial
func (s *Storage) ReadHistory(ctx context.Context, entryID string) (funnel.History, error) {
	entry, err := s.GetEntry(entryID)
	if os.IsNotExist(err) {
		return funnel.NewHistory(), nil
	}
	if err != nil {
		return funnel.History{}, fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}
	return entry.History, nil
}

// WriteHistory guarda el historial resultante de la decisión
func (s *Storage) WriteHistory(ctx context.Context, entryID string, d funnel.Decision) error {
	entry := &Entry{
		ID:        entryID,
		History:   d.History,
		UpdatedAt: time.Now(),
	}
	if err := s.SaveEntry(entry); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrUpstream, err)
	}
	return nil
}

// SaveEntry guarda la entrada escribiendo primero a un archivo temporal
func (s *Storage) SaveEntry(entry *Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("error serializando entrada: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.getFilePath(entry.ID)
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("error escribiendo entrada %s: %v", entry.ID, err)
	}
	return os.Rename(tmp, filePath)
}

// GetEntry carga una entrada desde archivo
func (s *Storage) GetEntry(id string) (*Entry, error) {
	data, err := os.ReadFile(s.getFilePath(id))
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	if entry.History.Reviews == nil {
		entry.History.Reviews = map[string]funnel.Review{}
	}
	if entry.History.Tier == "" {
		entry.History.Tier = funnel.Tier1
	}

	return &entry, nil
}

// GetAllEntries obtiene todas las entradas almacenadas
func (s *Storage) GetAllEntries() ([]*Entry, error) {
	var entries []*Entry

	err := filepath.Walk(s.basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(info.Name(), ".json") {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}

			entries = append(entries, &entry)
		}

		return nil
	})

	return entries, err
}

// getFilePath genera la ruta del archivo para una entrada
func (s *Storage) getFilePath(id string) string {
	// Reemplazar caracteres no válidos para nombres de archivo
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "?", "_",
		"*", "_", "<", "_", ">", "_", "|", "_",
	)
	return filepath.Join(s.basePath, replacer.Replace(id)+".json")
}
