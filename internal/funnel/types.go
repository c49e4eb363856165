package funnel

import "strings"

// Marcadores de polaridad usados por el formulario
const (
	GreenMarker = "🟢"
	RedMarker   = "🔴"
)

// AnonymousReviewer se usa cuando el formulario no trae revisor
const AnonymousReviewer = "Anonymous"

// Tier nivel de revisión de una entrada
type Tier string

const (
	Tier1 Tier = "Tier 1"
	Tier2 Tier = "Tier 2"
)

// ParseTier interpreta el título guardado en Attio; cualquier valor desconocido es Tier 1
func ParseTier(title string) Tier {
	if strings.EqualFold(strings.TrimSpace(title), string(Tier2)) {
		return Tier2
	}
	return Tier1
}

// Vote voto binario derivado de una evaluación
type Vote string

const (
	OK Vote = "ok"
	KO Vote = "ko"
)

// Status etapa del funnel expuesta en la lista
type Status string

const (
	InitialScreening Status = "Initial screening"
	FirstInteraction Status = "First interaction"
	Killed           Status = "Killed"
)

// Answer respuesta a una pregunta de respuesta única
type Answer struct {
	Criterion string `json:"criterion,omitempty"`
	Text      string `json:"text"`
}

// Line texto con el que se renderiza la respuesta en el resumen
func (a Answer) Line() string {
	if a.Criterion == "" {
		return a.Text
	}
	return a.Criterion + ": " + a.Text
}

// Evaluation evaluación normalizada de un revisor sobre una entidad
type Evaluation struct {
	Reviewer   string   `json:"reviewer"`
	Domain     string   `json:"domain"`
	Answers    []Answer `json:"answers"`
	GreenFlags []string `json:"green_flags"`
	RedFlags   []string `json:"red_flags"`
	Comment    string   `json:"comment,omitempty"`
}

// Vote devuelve KO si la evaluación contiene al menos un marcador rojo.
// Un solo voto por evaluación, sin importar cuántas banderas rojas tenga.
func (e Evaluation) Vote() Vote {
	if len(e.RedFlags) > 0 {
		return KO
	}
	for _, a := range e.Answers {
		if strings.Contains(a.Text, RedMarker) {
			return KO
		}
	}
	return OK
}

// Review última evaluación registrada de un revisor
type Review struct {
	Answers    []Answer `json:"answers,omitempty"`
	GreenFlags []string `json:"green_flags,omitempty"`
	RedFlags   []string `json:"red_flags,omitempty"`
	Comment    string   `json:"comment,omitempty"`
}

// Ballot votos acumulados en un tier, por nombre de revisor
type Ballot struct {
	OK []string `json:"ok,omitempty"`
	KO []string `json:"ko,omitempty"`
}

// Counts devuelve el número de votos ok y ko
func (b Ballot) Counts() (ok, ko int) {
	return len(b.OK), len(b.KO)
}

// cast registra el voto del revisor reemplazando cualquier voto previo suyo
func (b Ballot) cast(reviewer string, v Vote) Ballot {
	out := Ballot{OK: without(b.OK, reviewer), KO: without(b.KO, reviewer)}
	if v == KO {
		out.KO = append(out.KO, reviewer)
	} else {
		out.OK = append(out.OK, reviewer)
	}
	return out
}

func without(names []string, name string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

// History estado acumulado de una entrada de la lista
type History struct {
	// Order revisores de más reciente a más antiguo
	Order     []string          `json:"order"`
	Reviews   map[string]Review `json:"reviews"`
	Tier      Tier              `json:"tier"`
	Tier1     Ballot            `json:"tier1"`
	Tier2     Ballot            `json:"tier2"`
	Status    Status            `json:"status,omitempty"`
	Qualified bool              `json:"qualified"`
}

// NewHistory devuelve el estado inicial de una entrada sin evaluaciones
func NewHistory() History {
	return History{
		Reviews:   map[string]Review{},
		Tier:      Tier1,
		Qualified: true,
	}
}

// Reviewers devuelve los revisores en orden de más reciente a más antiguo
func (h History) Reviewers() []string {
	return append([]string(nil), h.Order...)
}
