package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contiene toda la configuración del sistema
type Config struct {
	Attio    AttioConfig
	Server   ServerConfig
	Tally    TallyConfig
	Storage  StorageConfig
	Discord  DiscordConfig
	Database DatabaseConfig
}

// AttioConfig configuración de conexión a Attio
type AttioConfig struct {
	APIKey   string
	ListSlug string // Lista de cualificación donde viven las entradas
	BaseURL  string
	Timeout  time.Duration
}

// ServerConfig configuración del servidor HTTP
type ServerConfig struct {
	Port string
}

// TallyConfig configuración del formulario de señales
type TallyConfig struct {
	Mode            string // "id" o "positional"
	QuestionMapPath string // YAML opcional con el mapa de IDs de preguntas
}

// StorageConfig configuración del almacén de entradas
type StorageConfig struct {
	Backend  string // "attio" o "file"
	BasePath string // Directorio de entradas para el backend "file"
}

// DiscordConfig configuración del bot de Discord para avisos de escalada
type DiscordConfig struct {
	BotToken          string
	EscalationChannel string // Canal del grupo de revisores senior
	EntryBaseURL      string // URL de la lista en la app de Attio, para links a entradas
}

// Enabled indica si hay que avisar por Discord
func (d DiscordConfig) Enabled() bool {
	return d.BotToken != "" && d.EscalationChannel != ""
}

// DatabaseConfig configuración de la base de datos MySQL de auditoría
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// Enabled indica si se guarda el log de auditoría
func (d DatabaseConfig) Enabled() bool {
	return d.Username != ""
}

// Load carga la configuración desde variables de entorno
func Load() (*Config, error) {
	// Cargar archivo .env si existe
	godotenv.Load()

	timeoutSeconds := 30
	if raw := os.Getenv("ATTIO_TIMEOUT_SECONDS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("ATTIO_TIMEOUT_SECONDS inválido: %q", raw)
		}
		timeoutSeconds = parsed
	}

	config := &Config{
		Attio: AttioConfig{
			APIKey:   os.Getenv("ATTIO_API_KEY"),
			ListSlug: os.Getenv("LIST_SLUG"),
			BaseURL:  strings.TrimRight(getEnvOrDefault("ATTIO_BASE_URL", "https://api.attio.com/v2"), "/"),
			Timeout:  time.Duration(timeoutSeconds) * time.Second,
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8000"),
		},
		Tally: TallyConfig{
			Mode:            strings.ToLower(getEnvOrDefault("TALLY_MODE", "id")),
			QuestionMapPath: os.Getenv("TALLY_QUESTION_MAP"),
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(getEnvOrDefault("STORE_BACKEND", "attio")),
			BasePath: getEnvOrDefault("STORAGE_BASE_PATH", "data/entries"),
		},
		Discord: DiscordConfig{
			BotToken:          os.Getenv("DISCORD_BOT_TOKEN"),
			EscalationChannel: os.Getenv("DISCORD_ESCALATION_CHANNEL"),
			EntryBaseURL:      os.Getenv("ATTIO_APP_URL"),
		},
		Database: DatabaseConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "3306"),
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: getEnvOrDefault("DB_DATABASE", "signals_sync"),
		},
	}

	return config, nil
}

// Validate comprueba que la configuración obligatoria del backend elegido está presente
func (c *Config) Validate() error {
	var missing []string

	switch c.Storage.Backend {
	case "attio":
		if c.Attio.APIKey == "" {
			missing = append(missing, "ATTIO_API_KEY")
		}
		if c.Attio.ListSlug == "" {
			missing = append(missing, "LIST_SLUG")
		}
	case "file":
		if c.Storage.BasePath == "" {
			missing = append(missing, "STORAGE_BASE_PATH")
		}
	default:
		return fmt.Errorf("STORE_BACKEND desconocido: %s", c.Storage.Backend)
	}

	switch c.Tally.Mode {
	case "id", "positional":
	default:
		return fmt.Errorf("TALLY_MODE desconocido: %s", c.Tally.Mode)
	}

	if len(missing) > 0 {
		return fmt.Errorf("faltan variables de entorno: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
