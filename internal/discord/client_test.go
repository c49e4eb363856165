package discord

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PhelGc/signals-sync/internal/ports"
)

func TestBuildEscalationEmbed(t *testing.T) {
	at := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	embed := buildEscalationEmbed(ports.Escalation{
		EntryID:    "entry-3",
		Domain:     "acme.io",
		OKVoters:   []string{"Alice"},
		KOVoters:   []string{"Bob"},
		OccurredAt: at,
	}, "https://app.attio.com/signals/")

	assert.Equal(t, "acme.io necesita revisión Tier 2", embed.Title)
	assert.Equal(t, "https://app.attio.com/signals/entry-3", embed.URL)
	assert.Equal(t, at.Format(time.RFC3339), embed.Timestamp)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "Alice", embed.Fields[0].Value)
	assert.Equal(t, "Bob", embed.Fields[1].Value)
	assert.Equal(t, "entry-3", embed.Fields[2].Value)
}

func TestBuildEscalationEmbed_NoVotersNoURL(t *testing.T) {
	embed := buildEscalationEmbed(ports.Escalation{EntryID: "e", Domain: "x.io"}, "")

	assert.Empty(t, embed.URL)
	assert.Equal(t, "-", embed.Fields[0].Value)
	assert.Equal(t, "-", embed.Fields[1].Value)
	assert.NotEmpty(t, embed.Timestamp)
}
