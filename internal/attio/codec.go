package attio

import (
	"github.com/PhelGc/signals-sync/internal/funnel"
)

// Slugs de los atributos de la entrada en la lista de cualificación
const (
	FieldSignals  = "signals_qualified"
	FieldGreen    = "green_flags_qualified"
	FieldRed      = "red_flags_qualified"
	FieldComments = "signals_comments_qualified"
	FieldStatus   = "status"
	FieldReason   = "reason"
	FieldTier1OK  = "tier_1_ok"
	FieldTier1KO  = "tier_1_ko"
	FieldTier2OK  = "tier_2_ok"
	FieldTier2KO  = "tier_2_ko"
	FieldTier     = "tier_5"
)

// DisqualifiedReason valor del campo reason cuando la entrada queda descartada
const DisqualifiedReason = "Signals (Qualified)"

// titled objeto con título que Attio devuelve para status y opciones
type titled struct {
	Title string `json:"title"`
}

// AttributeValue valor de un atributo tal como lo devuelve Attio.
// Sólo se decodifican los campos que usa el servicio.
type AttributeValue struct {
	Value  interface{} `json:"value,omitempty"`
	Status *titled     `json:"status,omitempty"`
	Option *titled     `json:"option,omitempty"`
}

// EntryValues valores de una entrada por slug de atributo
type EntryValues map[string][]AttributeValue

func (ev EntryValues) text(field string) string {
	vals := ev[field]
	if len(vals) == 0 {
		return ""
	}
	if s, ok := vals[0].Value.(string); ok {
		return s
	}
	return ""
}

func (ev EntryValues) status(field string) string {
	vals := ev[field]
	if len(vals) == 0 || vals[0].Status == nil {
		return ""
	}
	return vals[0].Status.Title
}

func (ev EntryValues) options(field string) []string {
	var out []string
	for _, v := range ev[field] {
		if v.Option != nil && v.Option.Title != "" {
			out = append(out, v.Option.Title)
		}
	}
	return out
}

// DecodeHistory reconstruye el historial estructurado desde los valores de la entrada
func DecodeHistory(ev EntryValues) funnel.History {
	h := funnel.ParseSummary(funnel.Summary{
		Signals:  ev.text(FieldSignals),
		Green:    ev.text(FieldGreen),
		Red:      ev.text(FieldRed),
		Comments: ev.text(FieldComments),
	})

	h.Status = funnel.Status(ev.status(FieldStatus))
	h.Tier = funnel.ParseTier(ev.status(FieldTier))
	h.Tier1 = funnel.Ballot{OK: ev.options(FieldTier1OK), KO: ev.options(FieldTier1KO)}
	h.Tier2 = funnel.Ballot{OK: ev.options(FieldTier2OK), KO: ev.options(FieldTier2KO)}
	h.Qualified = h.Status != funnel.Killed
	return h
}

// EncodeEntryValues genera el cuerpo entry_values para guardar una decisión.
// Los votos se envían completos porque la escritura sobrescribe los multiselect.
func EncodeEntryValues(d funnel.Decision) map[string]interface{} {
	h := d.History
	summary := funnel.Render(h)

	values := map[string]interface{}{
		FieldSignals: textValue(summary.Signals),
		FieldGreen:   textValue(summary.Green),
		FieldRed:     textValue(summary.Red),
		FieldStatus:  statusValue(string(h.Status)),
		FieldTier1OK: optionValues(h.Tier1.OK),
		FieldTier1KO: optionValues(h.Tier1.KO),
		FieldTier2OK: optionValues(h.Tier2.OK),
		FieldTier2KO: optionValues(h.Tier2.KO),
	}

	// Sólo se sube el comentario si hay contenido
	if summary.Comments != "" {
		values[FieldComments] = textValue(summary.Comments)
	}
	if !h.Qualified {
		values[FieldReason] = statusValue(DisqualifiedReason)
	}
	// Marca de "necesita Tier 2"; una vez escalada la entrada se mantiene
	if h.Tier == funnel.Tier2 {
		values[FieldTier] = statusValue(string(funnel.Tier2))
	}

	return values
}

func textValue(s string) []map[string]string {
	return []map[string]string{{"value": s}}
}

func statusValue(title string) []map[string]string {
	return []map[string]string{{"status": title}}
}

func optionValues(titles []string) []map[string]string {
	out := make([]map[string]string, 0, len(titles))
	for _, t := range titles {
		out = append(out, map[string]string{"option": t})
	}
	return out
}
