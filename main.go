package main

import (
	"log"

	"github.com/PhelGc/signals-sync/internal/attio"
	"github.com/PhelGc/signals-sync/internal/config"
	"github.com/PhelGc/signals-sync/internal/database"
	"github.com/PhelGc/signals-sync/internal/discord"
	"github.com/PhelGc/signals-sync/internal/ports"
	"github.com/PhelGc/signals-sync/internal/server"
	"github.com/PhelGc/signals-sync/internal/signals"
	"github.com/PhelGc/signals-sync/internal/storage"
	"github.com/PhelGc/signals-sync/internal/tally"
)

func main() {
	log.Println("Signals Sync iniciando...")

	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error cargando configuración: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuración inválida: %v", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Error inicializando almacén: %v", err)
	}

	extractor, err := tally.Load(cfg.Tally.Mode, cfg.Tally.QuestionMapPath)
	if err != nil {
		log.Fatalf("Error configurando el formulario: %v", err)
	}

	var opts []signals.Option

	// Log de auditoría opcional en MySQL
	if cfg.Database.Enabled() {
		db, err := database.NewClient(&database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			Database: cfg.Database.Database,
		})
		if err != nil {
			log.Fatalf("Error conectando a la base de datos: %v", err)
		}
		defer db.Close()

		if err := db.CreateTable(); err != nil {
			log.Fatalf("Error preparando tabla de auditoría: %v", err)
		}
		opts = append(opts, signals.WithAuditor(db))
	}

	// Aviso de escaladas a Tier 2 por Discord
	if cfg.Discord.Enabled() {
		dc, err := discord.NewClient(&discord.Config{
			BotToken:          cfg.Discord.BotToken,
			EscalationChannel: cfg.Discord.EscalationChannel,
			EntryBaseURL:      cfg.Discord.EntryBaseURL,
		})
		if err != nil {
			log.Fatalf("Error creando cliente Discord: %v", err)
		}
		defer dc.Close()
		opts = append(opts, signals.WithNotifier(dc))
	}

	svc := signals.NewService(store, opts...)
	srv := server.NewServer(svc, extractor)

	log.Printf("Escuchando en :%s (almacén: %s, formulario: %s)", cfg.Server.Port, cfg.Storage.Backend, cfg.Tally.Mode)
	if err := srv.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Error en servidor HTTP: %v", err)
	}
}

func newStore(cfg *config.Config) (ports.Store, error) {
	if cfg.Storage.Backend == "file" {
		s, err := storage.New(cfg.Storage.BasePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	c, err := attio.NewClient(cfg.Attio)
	if err != nil {
		return nil, err
	}
	return c, nil
}
