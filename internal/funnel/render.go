package funnel

import "strings"

// SectionSeparator separa las secciones de cada revisor en los textos de resumen
const SectionSeparator = "\n---\n"

// escapedRule sustituye a las líneas "---" escritas por un revisor
const escapedRule = "- - -"

// Summary textos que se guardan en los campos de la entrada
type Summary struct {
	Signals  string
	Green    string
	Red      string
	Comments string
}

// Render genera el resumen completo desde el mapa de revisores, del más
// reciente al más antiguo. El resultado es determinista para un mismo historial.
func Render(h History) Summary {
	var signals, green, red, comments []string

	for _, name := range h.Order {
		r, ok := h.Reviews[name]
		if !ok {
			continue
		}

		lines := make([]string, 0, len(r.Answers))
		for _, a := range r.Answers {
			lines = append(lines, a.Line())
		}
		signals = append(signals, section(name, lines))
		green = append(green, section(name, r.GreenFlags))
		red = append(red, section(name, r.RedFlags))

		if c := strings.TrimSpace(r.Comment); c != "" {
			comments = append(comments, name+": "+escapeRules(c))
		}
	}

	return Summary{
		Signals:  strings.Join(signals, SectionSeparator),
		Green:    strings.Join(green, SectionSeparator),
		Red:      strings.Join(red, SectionSeparator),
		Comments: strings.Join(comments, SectionSeparator),
	}
}

func section(name string, lines []string) string {
	var b strings.Builder
	b.WriteString(name)
	b.WriteString(":")
	for _, l := range lines {
		b.WriteString("\n")
		b.WriteString(escapeRules(l))
	}
	return b.String()
}

// escapeRules evita que el texto libre de un revisor contenga una línea
// separadora y abra una sección a nombre de otro
func escapeRules(text string) string {
	if !strings.Contains(text, "---") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "---" {
			lines[i] = escapedRule
		}
	}
	return strings.Join(lines, "\n")
}

// ParseSummary reconstruye el mapa de revisores a partir de los textos guardados.
// Acepta también el formato antiguo de textos concatenados: si un revisor
// aparece varias veces gana la primera sección, que es la más reciente.
func ParseSummary(s Summary) History {
	h := NewHistory()

	touch := func(name string) Review {
		r, ok := h.Reviews[name]
		if !ok {
			h.Order = append(h.Order, name)
		}
		return r
	}

	seen := map[string]bool{}
	for _, sec := range parseSections(s.Signals) {
		if seen[sec.name] {
			continue
		}
		seen[sec.name] = true
		r := touch(sec.name)
		for _, l := range sec.lines {
			r.Answers = append(r.Answers, Answer{Text: l})
		}
		h.Reviews[sec.name] = r
	}

	fill := func(text string, set func(*Review, []string)) {
		done := map[string]bool{}
		for _, sec := range parseSections(text) {
			if done[sec.name] {
				continue
			}
			done[sec.name] = true
			r := touch(sec.name)
			set(&r, sec.lines)
			h.Reviews[sec.name] = r
		}
	}
	fill(s.Green, func(r *Review, lines []string) { r.GreenFlags = lines })
	fill(s.Red, func(r *Review, lines []string) { r.RedFlags = lines })
	fill(s.Comments, func(r *Review, lines []string) { r.Comment = strings.Join(lines, "\n") })

	return h
}

type parsedSection struct {
	name  string
	lines []string
}

func parseSections(text string) []parsedSection {
	var out []parsedSection
	for _, raw := range strings.Split(text, SectionSeparator) {
		raw = strings.Trim(raw, "\n ")
		if raw == "" {
			continue
		}
		all := strings.Split(raw, "\n")
		name, rest := splitHeader(all[0])
		if name == "" {
			continue
		}

		var lines []string
		if rest != "" {
			lines = append(lines, rest)
		}
		for _, l := range all[1:] {
			if strings.TrimSpace(l) != "" {
				lines = append(lines, l)
			}
		}
		out = append(out, parsedSection{name: name, lines: lines})
	}
	return out
}

// splitHeader separa "Nombre:" o "Nombre: texto"
func splitHeader(line string) (name, rest string) {
	line = strings.TrimSpace(line)
	if i := strings.Index(line, ": "); i >= 0 {
		return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+2:])
	}
	if strings.HasSuffix(line, ":") {
		return strings.TrimSpace(strings.TrimSuffix(line, ":")), ""
	}
	return "", ""
}
