package funnel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okEval(reviewer string) Evaluation {
	return Evaluation{
		Reviewer:   reviewer,
		Domain:     "example.com",
		Answers:    []Answer{{Criterion: "Team", Text: "🟢 Strong founders"}},
		GreenFlags: []string{"🟢 Repeat founders"},
	}
}

func koEval(reviewer string) Evaluation {
	return Evaluation{
		Reviewer: reviewer,
		Domain:   "example.com",
		Answers:  []Answer{{Criterion: "Market", Text: "🔴 Tiny market"}},
		RedFlags: []string{"🔴 No traction"},
	}
}

func apply(h History, evals ...Evaluation) (History, []Decision) {
	var ds []Decision
	for _, e := range evals {
		d := Decide(h, e)
		ds = append(ds, d)
		h = d.History
	}
	return h, ds
}

func TestDecide_FirstEvaluationStaysInScreening(t *testing.T) {
	d := Decide(NewHistory(), okEval("Alice"))

	assert.Equal(t, OK, d.Vote)
	assert.Equal(t, Tier1, d.VotedIn)
	assert.False(t, d.Escalated)
	assert.Equal(t, Tier1, d.History.Tier)
	assert.Equal(t, InitialScreening, d.History.Status)
	assert.True(t, d.History.Qualified)
	assert.Equal(t, []string{"Alice"}, d.History.Tier1.OK)
}

func TestDecide_TwoOKVotesReachFirstInteraction(t *testing.T) {
	for _, order := range [][]string{{"Alice", "Bob"}, {"Bob", "Alice"}} {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			h, ds := apply(NewHistory(), okEval(order[0]), okEval(order[1]))

			assert.Equal(t, FirstInteraction, h.Status)
			assert.True(t, h.Qualified)
			assert.Equal(t, Tier1, h.Tier)
			assert.False(t, ds[1].Escalated)
		})
	}
}

func TestDecide_TwoKOVotesKill(t *testing.T) {
	h, _ := apply(NewHistory(), koEval("Alice"), koEval("Bob"))

	assert.Equal(t, Killed, h.Status)
	assert.False(t, h.Qualified)
	assert.Equal(t, Tier1, h.Tier)
}

func TestDecide_SplitEscalatesToTier2(t *testing.T) {
	cases := map[string][]Evaluation{
		"ok then ko": {okEval("Alice"), koEval("Bob")},
		"ko then ok": {koEval("Alice"), okEval("Bob")},
	}
	for name, evals := range cases {
		t.Run(name, func(t *testing.T) {
			start := NewHistory()
			start.Status = InitialScreening

			h, ds := apply(start, evals...)

			last := ds[len(ds)-1]
			assert.True(t, last.Escalated)
			assert.Equal(t, Tier1, last.VotedIn)
			assert.Equal(t, Tier2, h.Tier)
			assert.Equal(t, InitialScreening, h.Status)
			assert.True(t, h.Qualified)
			ok, ko := h.Tier1.Counts()
			assert.Equal(t, 1, ok)
			assert.Equal(t, 1, ko)
		})
	}
}

func TestDecide_ScenarioB_EscalationKeepsPriorStatus(t *testing.T) {
	h := NewHistory()
	h = Merge(h, okEval("Alice"))
	h.Tier1 = Ballot{OK: []string{"Alice"}}
	h.Status = Status("Sourcing")

	d := Decide(h, koEval("Bob"))

	assert.True(t, d.Escalated)
	assert.Equal(t, Tier2, d.History.Tier)
	assert.Equal(t, Status("Sourcing"), d.History.Status)
	assert.Equal(t, Ballot{OK: []string{"Alice"}, KO: []string{"Bob"}}, d.History.Tier1)
	assert.Empty(t, d.History.Tier2.OK)
	assert.Empty(t, d.History.Tier2.KO)
}

func TestDecide_ScenarioC_Tier2Unanimity(t *testing.T) {
	h := NewHistory()
	h.Tier = Tier2
	h.Tier1 = Ballot{OK: []string{"Alice"}, KO: []string{"Bob"}}
	h.Tier2 = Ballot{OK: []string{"Carol"}}
	h.Status = InitialScreening

	d := Decide(h, okEval("Dave"))

	assert.Equal(t, Tier2, d.VotedIn)
	assert.False(t, d.Escalated)
	assert.Equal(t, []string{"Carol", "Dave"}, d.History.Tier2.OK)
	assert.Equal(t, FirstInteraction, d.History.Status)
	assert.True(t, d.History.Qualified)
}

func TestDecide_Tier2KOVotesKill(t *testing.T) {
	h, _ := apply(NewHistory(), okEval("Alice"), koEval("Bob"), koEval("Carol"), koEval("Dave"))

	assert.Equal(t, Tier2, h.Tier)
	assert.Equal(t, Killed, h.Status)
	assert.False(t, h.Qualified)
}

func TestDecide_Tier2UndecidedFallsBackToScreening(t *testing.T) {
	h := NewHistory()
	h.Tier = Tier2

	d := Decide(h, okEval("Carol"))

	assert.Equal(t, InitialScreening, d.History.Status)
	assert.True(t, d.History.Qualified)
}

func TestDecide_Tier2NeverReverts(t *testing.T) {
	h, _ := apply(NewHistory(), okEval("Alice"), koEval("Bob"))
	require.Equal(t, Tier2, h.Tier)

	seq := []Evaluation{
		koEval("Carol"), okEval("Dave"), okEval("Alice"), koEval("Bob"),
		okEval("Erin"), koEval("Frank"), okEval("Carol"),
	}
	for _, e := range seq {
		d := Decide(h, e)
		assert.False(t, d.Escalated)
		assert.Equal(t, Tier2, d.History.Tier)
		h = d.History
	}
}

func TestDecide_TerminalTier1VerdictNotEscalatedByLaterVote(t *testing.T) {
	h, _ := apply(NewHistory(), okEval("Alice"), okEval("Bob"))
	require.Equal(t, FirstInteraction, h.Status)

	d := Decide(h, koEval("Carol"))

	assert.False(t, d.Escalated)
	assert.Equal(t, Tier1, d.History.Tier)
	assert.Equal(t, FirstInteraction, d.History.Status)
}

func TestDecide_KilledStaysUnqualifiedAfterLateOK(t *testing.T) {
	h, _ := apply(NewHistory(), koEval("Alice"), koEval("Bob"))
	require.Equal(t, Killed, h.Status)
	require.False(t, h.Qualified)

	d := Decide(h, okEval("Carol"))

	assert.False(t, d.Escalated)
	assert.Equal(t, Tier1, d.History.Tier)
	assert.Equal(t, Killed, d.History.Status)
	assert.False(t, d.History.Qualified)
}

func TestDecide_QualifiedFollowsStatus(t *testing.T) {
	h, _ := apply(NewHistory(), koEval("Alice"), okEval("Bob"), okEval("Carol"), koEval("Dave"), okEval("Erin"))

	assert.Equal(t, h.Status != Killed, h.Qualified)
	h, _ = apply(h, koEval("Frank"))
	assert.Equal(t, h.Status != Killed, h.Qualified)
}

func TestDecide_RevoteReplacesBallotEntry(t *testing.T) {
	h, _ := apply(NewHistory(), okEval("Alice"), koEval("Alice"))

	assert.Equal(t, Ballot{OK: []string{}, KO: []string{"Alice"}}, h.Tier1)
	assert.Equal(t, Tier1, h.Tier)
	assert.Equal(t, []string{"Alice"}, h.Reviewers())
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	h := NewHistory()
	h = Merge(h, okEval("Alice"))
	h.Tier1 = Ballot{OK: []string{"Alice"}}

	_ = Decide(h, koEval("Bob"))

	assert.Equal(t, []string{"Alice"}, h.Tier1.OK)
	assert.Empty(t, h.Tier1.KO)
	assert.Equal(t, Tier1, h.Tier)
	assert.Len(t, h.Reviews, 1)
}

func TestDecide_AnonymousReviewer(t *testing.T) {
	e := okEval("")
	d := Decide(NewHistory(), e)

	assert.Equal(t, []string{AnonymousReviewer}, d.History.Tier1.OK)
	assert.Contains(t, d.History.Reviews, AnonymousReviewer)
}

func TestEvaluationVote(t *testing.T) {
	assert.Equal(t, OK, Evaluation{}.Vote())
	assert.Equal(t, OK, okEval("a").Vote())
	assert.Equal(t, KO, koEval("a").Vote())

	implicit := Evaluation{Answers: []Answer{{Text: "🔴 Burn rate"}, {Text: "🟢 Team"}}}
	assert.Equal(t, KO, implicit.Vote())

	manyReds := Evaluation{RedFlags: []string{"🔴 a", "🔴 b", "🔴 c"}}
	assert.Equal(t, KO, manyReds.Vote())
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, Tier2, ParseTier("Tier 2"))
	assert.Equal(t, Tier2, ParseTier(" tier 2 "))
	assert.Equal(t, Tier1, ParseTier("Tier 1"))
	assert.Equal(t, Tier1, ParseTier(""))
	assert.Equal(t, Tier1, ParseTier("Tier 5"))
}
