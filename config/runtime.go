package config

import (
	"os"
	"strings"
	"sync"

	"clara/models"
)

// Settings de runtime (tokens, versão da Graph API) ficam em estado
// process-wide atrás de um RWMutex: o webhook e o worker leem a cada
// operação, o endpoint /api/settings escreve.

var (
	settingsMu sync.RWMutex
	current    models.Settings
)

// Current returns a copy of the runtime settings.
func Current() models.Settings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return current
}

// SetCurrent replaces the runtime settings.
func SetCurrent(s models.Settings) {
	s.Normalize()
	settingsMu.Lock()
	current = s
	settingsMu.Unlock()
}

// SettingsFromEnv seeds settings from the environment. Used on first boot
// when the store has nothing persisted yet. Secrets only ever come from
// here or from the settings endpoint, never from source.
func SettingsFromEnv() models.Settings {
	s := models.Settings{
		VerifyToken:  env("WEBHOOK_VERIFY_TOKEN"),
		AccessToken:  env("GRAPH_ACCESS_TOKEN"),
		OpenAIKey:    env("OPENAI_API_KEY"),
		OpenAIModel:  env("OPENAI_MODEL"),
		GraphVersion: env("GRAPH_API_VERSION"),
		AutoReply:    !strings.EqualFold(env("AUTO_REPLY"), "false"),
	}
	// nome antigo da env, mantido por conveniência de ops
	if s.AccessToken == "" {
		s.AccessToken = env("WHATSAPP_ACCESS_TOKEN")
	}
	s.Normalize()
	return s
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
