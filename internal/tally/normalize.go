package tally

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/ports"
)

// normalizeText aplica NFC, quita caracteres de control y espacios en los extremos.
// Así el mismo revisor escrito con distinta composición Unicode produce la misma clave.
func normalizeText(text string) string {
	text = norm.NFC.String(text)
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(text)
}

// ClassifyFlags separa las banderas por marcador. Las vacías o sin marcador se descartan.
func ClassifyFlags(flags []string) (green, red []string) {
	for _, f := range flags {
		f = normalizeText(f)
		switch {
		case f == "":
		case strings.Contains(f, funnel.GreenMarker):
			green = append(green, f)
		case strings.Contains(f, funnel.RedMarker):
			red = append(red, f)
		}
	}
	return green, red
}

// NormalizeDomain quita esquema, credenciales, puerto, path y "www." y pasa a minúsculas
func NormalizeDomain(raw string) (string, error) {
	d := strings.ToLower(normalizeText(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, "@"); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	d = strings.Trim(d, ".")

	if d == "" || !strings.Contains(d, ".") || strings.ContainsAny(d, " \t\n") {
		return "", fmt.Errorf("%w: %q", ports.ErrUnresolvedDomain, raw)
	}
	return d, nil
}
