package signals

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/ports"
	"github.com/PhelGc/signals-sync/internal/tally"
)

// Service orquestador de la sincronización
type Service struct {
	store    ports.Store
	auditor  ports.Auditor
	notifier ports.Notifier
	locks    *entryLocks
	now      func() time.Time
	newID    func() string
}

// Option configura el Service
type Option func(*Service)

// WithAuditor registra cada decisión en el log de auditoría
func WithAuditor(a ports.Auditor) Option {
	return func(s *Service) { s.auditor = a }
}

// WithNotifier avisa de las escaladas a Tier 2
func WithNotifier(n ports.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService crea el orquestador sobre el almacén dado
func NewService(store ports.Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		locks: newEntryLocks(),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result resultado de procesar una evaluación
type Result struct {
	SubmissionID string        `json:"submission_id"`
	EntryID      string        `json:"entry_id"`
	Domain       string        `json:"domain"`
	Reviewer     string        `json:"reviewer"`
	Vote         funnel.Vote   `json:"vote"`
	Tier         funnel.Tier   `json:"tier"`
	Status       funnel.Status `json:"funnel_status"`
	Qualified    bool          `json:"qualified"`
	Escalated    bool          `json:"escalated"`
	Tier1        funnel.Ballot `json:"tier1_votes"`
	Tier2        funnel.Ballot `json:"tier2_votes"`
}

// Process resuelve dominio → compañía → deal → entrada, aplica la evaluación y
// guarda el resultado. Cualquier fallo de resolución corta antes del motor.
func (s *Service) Process(ctx context.Context, e funnel.Evaluation) (*Result, error) {
	domain, err := tally.NormalizeDomain(e.Domain)
	if err != nil {
		return nil, err
	}
	e.Domain = domain
	if e.Reviewer == "" {
		e.Reviewer = funnel.AnonymousReviewer
	}

	entryID, err := s.resolveEntry(ctx, domain)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(entryID)
	defer unlock()

	history, err := s.store.ReadHistory(ctx, entryID)
	if err != nil {
		return nil, err
	}

	decision := funnel.Decide(history, e)

	if err := s.store.WriteHistory(ctx, entryID, decision); err != nil {
		return nil, err
	}

	h := decision.History
	result := &Result{
		SubmissionID: s.newID(),
		EntryID:      entryID,
		Domain:       domain,
		Reviewer:     e.Reviewer,
		Vote:         decision.Vote,
		Tier:         h.Tier,
		Status:       h.Status,
		Qualified:    h.Qualified,
		Escalated:    decision.Escalated,
		Tier1:        h.Tier1,
		Tier2:        h.Tier2,
	}

	log.Printf("Entrada %s (%s) actualizada: revisor=%s voto=%s tier=%s status=%q cualificada=%t",
		entryID, domain, e.Reviewer, decision.Vote, h.Tier, h.Status, h.Qualified)

	if decision.Escalated {
		s.notifyEscalation(ctx, result)
	}
	s.audit(ctx, result, e)

	return result, nil
}

func (s *Service) resolveEntry(ctx context.Context, domain string) (string, error) {
	companyID, err := s.store.FindCompanyByDomain(ctx, domain)
	if err != nil {
		return "", err
	}
	dealID, err := s.store.FindDealByCompany(ctx, companyID)
	if err != nil {
		return "", err
	}
	return s.store.FindEntryByDeal(ctx, dealID)
}

// notifyEscalation el aviso es best-effort: la marca de Tier 2 ya está guardada
func (s *Service) notifyEscalation(ctx context.Context, r *Result) {
	log.Printf("Entrada %s escalada a Tier 2 (OK: %v, KO: %v)", r.EntryID, r.Tier1.OK, r.Tier1.KO)
	if s.notifier == nil {
		return
	}
	err := s.notifier.NotifyEscalation(ctx, ports.Escalation{
		EntryID:    r.EntryID,
		Domain:     r.Domain,
		OKVoters:   r.Tier1.OK,
		KOVoters:   r.Tier1.KO,
		Reviewer:   r.Reviewer,
		OccurredAt: s.now(),
	})
	if err != nil {
		log.Printf("Advertencia: no se pudo avisar la escalada de %s: %v", r.EntryID, err)
	}
}

func (s *Service) audit(ctx context.Context, r *Result, e funnel.Evaluation) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.RecordDecision(ctx, ports.AuditRecord{
		SubmissionID: r.SubmissionID,
		EntryID:      r.EntryID,
		Domain:       r.Domain,
		Reviewer:     r.Reviewer,
		Vote:         r.Vote,
		Tier:         r.Tier,
		Status:       r.Status,
		Qualified:    r.Qualified,
		Escalated:    r.Escalated,
		Evaluation:   e,
		CreatedAt:    s.now(),
	})
	if err != nil {
		log.Printf("Advertencia: no se pudo guardar la auditoría de %s: %v", r.SubmissionID, err)
	}
}
