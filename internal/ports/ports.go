package ports

import (
	"context"
	"errors"
	"time"

	"github.com/PhelGc/signals-sync/internal/funnel"
)

var (
	// ErrNotFound no existe compañía, deal o entrada para el dominio
	ErrNotFound = errors.New("registro no encontrado")
	// ErrUpstream el almacén externo falló o respondió con error
	ErrUpstream = errors.New("error en el almacén externo")
	// ErrUnresolvedDomain el dominio enviado no es utilizable
	ErrUnresolvedDomain = errors.New("dominio no resoluble")
)

// Store acceso al registro de cada entrada y a su resolución desde el dominio
type Store interface {
	FindCompanyByDomain(ctx context.Context, domain string) (string, error)
	FindDealByCompany(ctx context.Context, companyID string) (string, error)
	FindEntryByDeal(ctx context.Context, dealID string) (string, error)
	ReadHistory(ctx context.Context, entryID string) (funnel.History, error)
	WriteHistory(ctx context.Context, entryID string, d funnel.Decision) error
}

// AuditRecord fila de auditoría de un envío procesado
type AuditRecord struct {
	SubmissionID string
	EntryID      string
	Domain       string
	Reviewer     string
	Vote         funnel.Vote
	Tier         funnel.Tier
	Status       funnel.Status
	Qualified    bool
	Escalated    bool
	Evaluation   funnel.Evaluation
	CreatedAt    time.Time
}

// Auditor guarda un registro de cada decisión
type Auditor interface {
	RecordDecision(ctx context.Context, rec AuditRecord) error
}

// Escalation aviso de que una entrada necesita revisión de Tier 2
type Escalation struct {
	EntryID    string
	Domain     string
	OKVoters   []string
	KOVoters   []string
	Reviewer   string
	OccurredAt time.Time
}

// Notifier avisa al grupo de revisores senior
type Notifier interface {
	NotifyEscalation(ctx context.Context, esc Escalation) error
}
