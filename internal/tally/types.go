package tally

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PhelGc/signals-sync/internal/funnel"
)

// ErrMalformedInput el cuerpo del webhook no tiene la forma esperada
var ErrMalformedInput = errors.New("formulario incompleto o mal formado")

// Submission cuerpo del webhook del formulario
type Submission struct {
	Submission struct {
		Questions []Question `json:"questions"`
	} `json:"submission"`
}

// Question pregunta del formulario. Value puede ser string, lista de strings o null.
type Question struct {
	ID       string      `json:"id,omitempty"`
	Position *int        `json:"position,omitempty"`
	Title    string      `json:"title,omitempty"`
	Value    interface{} `json:"value"`
}

// Extractor convierte un envío del formulario en una evaluación normalizada
type Extractor interface {
	Extract(sub Submission) (funnel.Evaluation, error)
}

// ParseSubmission decodifica el cuerpo JSON del webhook
func ParseSubmission(data []byte) (Submission, error) {
	var sub Submission
	if err := json.Unmarshal(data, &sub); err != nil {
		return Submission{}, fmt.Errorf("%w: JSON inválido: %v", ErrMalformedInput, err)
	}
	if len(sub.Submission.Questions) == 0 {
		return Submission{}, fmt.Errorf("%w: no hay preguntas en submission.questions", ErrMalformedInput)
	}
	return sub, nil
}

// textValue devuelve el valor de una pregunta de respuesta única como texto
func textValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeText(val)
	case []interface{}:
		parts := listValue(val)
		return strings.Join(parts, ", ")
	case float64, bool:
		return fmt.Sprint(val)
	}
	return ""
}

// listValue devuelve los elementos no vacíos de una pregunta de selección múltiple
func listValue(v interface{}) []string {
	switch val := v.(type) {
	case string:
		if t := normalizeText(val); t != "" {
			return []string{t}
		}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				if t := normalizeText(s); t != "" {
					out = append(out, t)
				}
			}
		}
		return out
	}
	return nil
}
