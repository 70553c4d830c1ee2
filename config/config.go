package config

import (
	"encoding/json"
	"log"
	"os"
)

type Configuration struct {
	ApiPort string `json:"api_port"`

	Database string `json:"database"` // "memory", "sqlite3" ou "postgres"
	DbHost   string `json:"db_host"`
	DbPort   string `json:"db_port"`
	DbUser   string `json:"db_user"`
	DbName   string `json:"db_name"`
	DbPass   string `json:"db_pass"`

	LogCapacity   int    `json:"log_capacity"`   // tamanho do ring buffer de logs
	DedupWindow   int    `json:"dedup_window"`   // ids recentes lembrados pelo ingestor
	RetentionCron string `json:"retention_cron"` // varredura de reply jobs antigos
}

// Get lê a configuração do arquivo JSON. Arquivo ausente não é fatal:
// tokens vêm do ambiente e o resto tem default.
func Get(path string) Configuration {
	var c Configuration

	b, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: %s não encontrado, usando defaults + env", path)
	} else if err := json.Unmarshal(b, &c); err != nil {
		log.Fatal(err)
	}

	// defaults (pra evitar nil/zero chato)
	if c.ApiPort == "" {
		c.ApiPort = getenv("PORT", "8080")
	}
	if c.Database == "" {
		c.Database = getenv("DATABASE", "memory")
	}
	if c.LogCapacity <= 0 {
		c.LogCapacity = 100
	}
	if c.DedupWindow <= 0 {
		c.DedupWindow = 512
	}
	if c.RetentionCron == "" {
		c.RetentionCron = "0 3 * * *"
	}

	return c
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
