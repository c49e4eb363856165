package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PhelGc/signals-sync/internal/ports"
)

type Client struct {
	session *discordgo.Session
	config  *Config
}

var _ ports.Notifier = (*Client)(nil)

type Config struct {
	BotToken          string
	EscalationChannel string // Canal del grupo de revisores senior
	EntryBaseURL      string // URL de la lista en Attio para construir links a entradas
}

func NewClient(config *Config) (*Client, error) {
	session, err := discordgo.New("Bot " + config.BotToken)
	if err != nil {
		return nil, fmt.Errorf("error creando sesión Discord: %v", err)
	}

	return &Client{
		session: session,
		config:  config,
	}, nil
}

// NotifyEscalation envía el aviso de escalada a Tier 2 al canal de revisores senior
func (c *Client) NotifyEscalation(ctx context.Context, esc ports.Escalation) error {
	embed := buildEscalationEmbed(esc, c.config.EntryBaseURL)

	_, err := c.session.ChannelMessageSendEmbed(c.config.EscalationChannel, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error enviando mensaje a Discord: %v", err)
	}
	return nil
}

// buildEscalationEmbed construye el embed con la información de la entrada escalada
func buildEscalationEmbed(esc ports.Escalation, baseURL string) *discordgo.MessageEmbed {
	when := esc.OccurredAt
	if when.IsZero() {
		when = time.Now()
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s necesita revisión Tier 2", esc.Domain),
		Description: "Los revisores de Tier 1 no están de acuerdo.",
		Color:       0xF39C12, // Naranja
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🟢 OK",
				Value:  joinOrDash(esc.OKVoters),
				Inline: true,
			},
			{
				Name:   "🔴 KO",
				Value:  joinOrDash(esc.KOVoters),
				Inline: true,
			},
			{
				Name:   "Entrada",
				Value:  esc.EntryID,
				Inline: true,
			},
		},
		Timestamp: when.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Signals Sync - Notificación automatizada",
		},
	}
	if baseURL != "" {
		embed.URL = strings.TrimRight(baseURL, "/") + "/" + esc.EntryID
	}

	return embed
}

func joinOrDash(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

// Close cierra la conexión con Discord
func (c *Client) Close() {
	if c.session != nil {
		c.session.Close()
	}
}
