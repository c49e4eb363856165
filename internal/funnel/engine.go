package funnel

// Umbral de votos unánimes para cerrar un tier
const decisiveVotes = 2

// Decision resultado de procesar una evaluación sobre un historial
type Decision struct {
	History History
	Vote    Vote
	// VotedIn tier en el que se contó el voto
	VotedIn Tier
	// Escalated indica que esta llamada pasó la entrada a Tier 2
	Escalated bool
}

// Decide aplica una evaluación al historial y calcula tier, votos, status y
// veredicto. Es una función pura y total: no falla con ningún historial.
//
// La escalada a Tier 2 es visible en la misma llamada: un empate 1 a 1 en Tier 1
// enruta el cálculo por la lógica de Tier 2 antes de persistir la etiqueta.
func Decide(h History, e Evaluation) Decision {
	out := Merge(h, e)
	reviewer := out.Order[0]
	vote := e.Vote()
	prior := out.Status

	d := Decision{Vote: vote, VotedIn: out.Tier}

	switch out.Tier {
	case Tier2:
		out.Tier2 = out.Tier2.cast(reviewer, vote)
	default:
		out.Tier = Tier1
		out.Tier1 = out.Tier1.cast(reviewer, vote)
	}

	t1ok, t1ko := out.Tier1.Counts()
	if out.Tier == Tier1 && t1ok == 1 && t1ko == 1 {
		out.Tier = Tier2
		d.Escalated = true
	}

	out.Status = funnelStatus(out, prior)
	out.Qualified = out.Status != Killed
	d.History = out
	return d
}

// funnelStatus calcula el status de la entrada. Un Killed heredado se mantiene
// aunque lleguen votos OK sin unanimidad en Tier 2.
func funnelStatus(h History, prior Status) Status {
	t1ok, t1ko := h.Tier1.Counts()
	t2ok, t2ko := h.Tier2.Counts()

	if h.Tier == Tier2 || (t1ok >= 1 && t1ko >= 1) {
		switch {
		case t2ok >= decisiveVotes:
			return FirstInteraction
		case t2ko >= decisiveVotes:
			return Killed
		}
		return defaultStatus(prior)
	}

	switch {
	case t1ok >= decisiveVotes:
		return FirstInteraction
	case t1ko >= decisiveVotes:
		return Killed
	}
	return defaultStatus(prior)
}

func defaultStatus(prior Status) Status {
	if prior == "" {
		return InitialScreening
	}
	return prior
}
