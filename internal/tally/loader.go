package tally

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout índices del formulario en modo posicional. Los rangos son [inicio, fin).
type Layout struct {
	Reviewer   int `yaml:"reviewer"`
	Domain     int `yaml:"domain"`
	FlagsStart int `yaml:"flags_start"`
	FlagsEnd   int `yaml:"flags_end"`
	MultiStart int `yaml:"multi_start"`
	MultiEnd   int `yaml:"multi_end"`
	Comments   int `yaml:"comments"`
}

// minQuestions número mínimo de preguntas que exige el layout
func (l Layout) minQuestions() int {
	m := l.Comments
	for _, v := range []int{l.Reviewer, l.Domain, l.FlagsEnd - 1, l.MultiEnd - 1} {
		if v > m {
			m = v
		}
	}
	return m + 1
}

// QuestionMap traduce IDs estables de preguntas a su significado
type QuestionMap struct {
	Reviewer   string            `yaml:"reviewer"`
	Domain     string            `yaml:"domain"`
	Comments   string            `yaml:"comments"`
	RedFlags   string            `yaml:"red_flags"`
	GreenFlags string            `yaml:"green_flags"`
	Criteria   map[string]string `yaml:"criteria"`
	Positional Layout            `yaml:"positional"`
}

// DefaultLayout layout histórico del formulario de señales
func DefaultLayout() Layout {
	return Layout{
		Reviewer:   0,
		Domain:     1,
		FlagsStart: 2,
		FlagsEnd:   9,
		MultiStart: 9,
		MultiEnd:   11,
		Comments:   11,
	}
}

// DefaultQuestionMap IDs del formulario de señales en producción
func DefaultQuestionMap() QuestionMap {
	return QuestionMap{
		Reviewer:   "question_reviewer",
		Domain:     "question_domain",
		Comments:   "question_comments",
		RedFlags:   "question_red_flags",
		GreenFlags: "question_green_flags",
		Criteria: map[string]string{
			"question_team":        "Team",
			"question_market":      "Market",
			"question_product":     "Product",
			"question_traction":    "Traction",
			"question_business":    "Business model",
			"question_competition": "Competition",
			"question_round":       "Round",
		},
		Positional: DefaultLayout(),
	}
}

// LoadQuestionMap lee el mapa de preguntas desde un archivo YAML.
// Los campos ausentes conservan los valores por defecto.
func LoadQuestionMap(path string) (QuestionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return QuestionMap{}, fmt.Errorf("no se pudo cargar el mapa de preguntas (%s): %w", path, err)
	}

	qm := DefaultQuestionMap()
	qm.Criteria = nil
	if err := yaml.Unmarshal(data, &qm); err != nil {
		return QuestionMap{}, fmt.Errorf("mapa de preguntas inválido (%s): %w", path, err)
	}
	if qm.Criteria == nil {
		qm.Criteria = DefaultQuestionMap().Criteria
	}
	if err := qm.Validate(); err != nil {
		return QuestionMap{}, fmt.Errorf("mapa de preguntas inválido (%s): %w", path, err)
	}
	return qm, nil
}

// Validate comprueba que los IDs obligatorios están definidos
func (qm QuestionMap) Validate() error {
	if qm.Reviewer == "" || qm.Domain == "" {
		return fmt.Errorf("reviewer y domain son obligatorios")
	}
	l := qm.Positional
	if l.FlagsStart > l.FlagsEnd || l.MultiStart > l.MultiEnd {
		return fmt.Errorf("rangos posicionales inválidos")
	}
	return nil
}
