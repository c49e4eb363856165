package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/PhelGc/signals-sync/internal/ports"
)

type Client struct {
	db *sql.DB
}

var _ ports.Auditor = (*Client)(nil)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// AuditRow fila de la tabla signal_submissions
type AuditRow struct {
	SubmissionID string    `json:"submission_id"`
	EntryID      string    `json:"entry_id"`
	Domain       string    `json:"domain"`
	Reviewer     string    `json:"reviewer"`
	Vote         string    `json:"vote"`
	Tier         string    `json:"tier"`
	Status       string    `json:"status"`
	Qualified    bool      `json:"qualified"`
	Escalated    bool      `json:"escalated"`
	Evaluation   string    `json:"evaluation"`
	CreatedAt    time.Time `json:"created_at"`
}

// DSN construye la cadena de conexión para el driver de MySQL
func (c *Config) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Host + ":" + c.Port
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.Local
	return cfg.FormatDSN()
}

func NewClient(config *Config) (*Client, error) {
	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("error conectando a MySQL: %v", err)
	}

	// Pool de conexiones: un webhook usa una sola conexión por decisión
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("error haciendo ping a MySQL: %v", err)
	}

	log.Printf("Conexión establecida con MySQL: %s:%s", config.Host, config.Port)

	return &Client{db: db}, nil
}

// CreateTable crea la tabla signal_submissions si no existe
func (c *Client) CreateTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS signal_submissions (
		submission_id CHAR(36)     NOT NULL,
		entry_id      VARCHAR(255) NOT NULL,
		domain        VARCHAR(255) NOT NULL,
		reviewer      VARCHAR(255) NOT NULL,
		vote          VARCHAR(8)   NOT NULL,
		tier          VARCHAR(16)  NOT NULL,
		status        VARCHAR(64)  NOT NULL,
		qualified     BOOLEAN      NOT NULL,
		escalated     BOOLEAN      NOT NULL,
		evaluation    JSON         NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (submission_id),
		INDEX idx_entry (entry_id, created_at)
	);`

	_, err := c.db.Exec(query)
	if err != nil {
		return fmt.Errorf("error creando tabla signal_submissions: %v", err)
	}

	log.Println("Tabla signal_submissions verificada/creada exitosamente")
	return nil
}

// RecordDecision guarda una fila por envío procesado
func (c *Client) RecordDecision(ctx context.Context, rec ports.AuditRecord) error {
	evaluation, err := json.Marshal(rec.Evaluation)
	if err != nil {
		return fmt.Errorf("error serializando evaluación: %v", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
	INSERT INTO signal_submissions
		(submission_id, entry_id, domain, reviewer, vote, tier, status, qualified, escalated, evaluation, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = c.db.ExecContext(ctx, query,
		rec.SubmissionID, rec.EntryID, rec.Domain, rec.Reviewer, string(rec.Vote),
		string(rec.Tier), string(rec.Status), rec.Qualified, rec.Escalated, string(evaluation), createdAt)
	if err != nil {
		return fmt.Errorf("error guardando auditoría de %s: %v", rec.SubmissionID, err)
	}
	return nil
}

// ListByEntry obtiene el historial de envíos de una entrada, del más reciente al más antiguo
func (c *Client) ListByEntry(ctx context.Context, entryID string, limit int) ([]AuditRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
	SELECT submission_id, entry_id, domain, reviewer, vote, tier, status, qualified, escalated, evaluation, created_at
	FROM signal_submissions WHERE entry_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := c.db.QueryContext(ctx, query, entryID, limit)
	if err != nil {
		return nil, fmt.Errorf("error consultando auditoría de %s: %v", entryID, err)
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var r AuditRow
		if err := rows.Scan(&r.SubmissionID, &r.EntryID, &r.Domain, &r.Reviewer, &r.Vote, &r.Tier,
			&r.Status, &r.Qualified, &r.Escalated, &r.Evaluation, &r.CreatedAt); err != nil {
			log.Printf("Error escaneando fila de auditoría: %v", err)
			continue
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// Close cierra la conexión con la base de datos
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
