package funnel

// Clone devuelve una copia independiente del historial
func (h History) Clone() History {
	out := h
	out.Order = append([]string(nil), h.Order...)
	out.Reviews = make(map[string]Review, len(h.Reviews))
	for name, r := range h.Reviews {
		out.Reviews[name] = r
	}
	out.Tier1 = Ballot{OK: append([]string(nil), h.Tier1.OK...), KO: append([]string(nil), h.Tier1.KO...)}
	out.Tier2 = Ballot{OK: append([]string(nil), h.Tier2.OK...), KO: append([]string(nil), h.Tier2.KO...)}
	if out.Tier == "" {
		out.Tier = Tier1
	}
	return out
}

// Merge incorpora la evaluación al historial. Una nueva evaluación del mismo
// revisor reemplaza la anterior y el revisor pasa al principio del orden.
func Merge(h History, e Evaluation) History {
	out := h.Clone()
	reviewer := e.Reviewer
	if reviewer == "" {
		reviewer = AnonymousReviewer
	}

	out.Reviews[reviewer] = Review{
		Answers:    append([]Answer(nil), e.Answers...),
		GreenFlags: append([]string(nil), e.GreenFlags...),
		RedFlags:   append([]string(nil), e.RedFlags...),
		Comment:    e.Comment,
	}
	out.Order = append([]string{reviewer}, without(out.Order, reviewer)...)
	return out
}
