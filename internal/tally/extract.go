package tally

import (
	"fmt"
	"strings"

	"github.com/PhelGc/signals-sync/internal/funnel"
)

// ByID extrae la evaluación usando los IDs estables de las preguntas.
// Es robusto a cambios de orden en el formulario.
type ByID struct {
	Map QuestionMap
}

// NewByID crea un extractor por ID
func NewByID(qm QuestionMap) *ByID {
	return &ByID{Map: qm}
}

// Extract implementa Extractor
func (x *ByID) Extract(sub Submission) (funnel.Evaluation, error) {
	var (
		e         funnel.Evaluation
		domainRaw string
		hasDomain bool
		multi     []string
	)

	for _, q := range sub.Submission.Questions {
		switch q.ID {
		case "":
			continue
		case x.Map.Reviewer:
			e.Reviewer = textValue(q.Value)
		case x.Map.Domain:
			domainRaw = textValue(q.Value)
			hasDomain = true
		case x.Map.Comments:
			e.Comment = textValue(q.Value)
		case x.Map.RedFlags, x.Map.GreenFlags:
			multi = append(multi, listValue(q.Value)...)
		default:
			criterion, known := x.Map.Criteria[q.ID]
			if !known {
				continue
			}
			if text := textValue(q.Value); text != "" {
				e.Answers = append(e.Answers, funnel.Answer{Criterion: criterion, Text: text})
			}
		}
	}

	if !hasDomain {
		return funnel.Evaluation{}, fmt.Errorf("%w: falta la pregunta de dominio (%s)", ErrMalformedInput, x.Map.Domain)
	}
	return finish(e, domainRaw, multi)
}

// Positional extrae la evaluación por posición de la pregunta. Es el modo
// heredado de las primeras versiones del formulario.
type Positional struct {
	Layout Layout
}

// NewPositional crea un extractor posicional
func NewPositional(l Layout) *Positional {
	return &Positional{Layout: l}
}

// Extract implementa Extractor
func (x *Positional) Extract(sub Submission) (funnel.Evaluation, error) {
	qs := sub.Submission.Questions
	l := x.Layout
	if len(qs) < l.minQuestions() {
		return funnel.Evaluation{}, fmt.Errorf("%w: se esperaban al menos %d preguntas y llegaron %d",
			ErrMalformedInput, l.minQuestions(), len(qs))
	}

	e := funnel.Evaluation{
		Reviewer: textValue(qs[l.Reviewer].Value),
		Comment:  textValue(qs[l.Comments].Value),
	}

	for _, q := range qs[l.FlagsStart:l.FlagsEnd] {
		if text := textValue(q.Value); text != "" {
			e.Answers = append(e.Answers, funnel.Answer{Text: text})
		}
	}

	var multi []string
	for _, q := range qs[l.MultiStart:l.MultiEnd] {
		multi = append(multi, listValue(q.Value)...)
	}

	return finish(e, textValue(qs[l.Domain].Value), multi)
}

// finish normaliza el dominio y el revisor y clasifica las banderas
func finish(e funnel.Evaluation, domainRaw string, multi []string) (funnel.Evaluation, error) {
	if strings.TrimSpace(domainRaw) == "" {
		return funnel.Evaluation{}, fmt.Errorf("%w: dominio vacío", ErrMalformedInput)
	}
	domain, err := NormalizeDomain(domainRaw)
	if err != nil {
		return funnel.Evaluation{}, err
	}
	e.Domain = domain

	if e.Reviewer == "" {
		e.Reviewer = funnel.AnonymousReviewer
	}
	e.GreenFlags, e.RedFlags = ClassifyFlags(multi)
	// Las opciones elegidas también forman parte del texto de señales
	for _, item := range multi {
		e.Answers = append(e.Answers, funnel.Answer{Text: item})
	}
	return e, nil
}

// New devuelve el extractor para el modo configurado ("id" o "positional")
func New(mode string, qm QuestionMap) (Extractor, error) {
	switch strings.ToLower(mode) {
	case "", "id":
		return NewByID(qm), nil
	case "positional":
		return NewPositional(qm.Positional), nil
	}
	return nil, fmt.Errorf("modo de formulario desconocido: %s", mode)
}

// Load construye el extractor del modo dado, con el mapa de preguntas del
// archivo YAML si se indica o con el mapa por defecto
func Load(mode, questionMapPath string) (Extractor, error) {
	qm := DefaultQuestionMap()
	if questionMapPath != "" {
		loaded, err := LoadQuestionMap(questionMapPath)
		if err != nil {
			return nil, err
		}
		qm = loaded
	}
	return New(mode, qm)
}
