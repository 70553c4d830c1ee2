package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"clara/config"
	"clara/ingest"
	"clara/models"
	"clara/router"
	"clara/store"
	"clara/tools"
	"clara/workers"

	dbpkg "clara/db"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

// =====================
// ENV esperadas
// =====================
//
// Server
// - PORT                          (ex: 8080)
// - CONFIG_PATH                   (default: config.json; arquivo ausente não é fatal)
// - DATABASE                      ("memory", "sqlite3" ou "postgres")
//
// Webhook (Meta)
// - WEBHOOK_VERIFY_TOKEN          (string configurada no painel do app para verificação)
//
// Graph API (Instagram / WhatsApp)
// - GRAPH_ACCESS_TOKEN            (token permanente/sistema; WHATSAPP_ACCESS_TOKEN também funciona)
// - GRAPH_API_VERSION             (default: v20.0)
//
// OpenAI
// - OPENAI_API_KEY                (sem a chave, auto-reply fica desligado)
// - OPENAI_MODEL                  (default: gpt-4.1-mini)
// - AUTO_REPLY                    (default: true; "false" desliga globalmente)
//
// =====================

func main() {
	// .env é conveniência de dev; em produção as envs vêm do ambiente
	if err := godotenv.Load(); err != nil {
		log.Printf("main: sem .env (%v), seguindo com o ambiente", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg := config.Get(configPath)

	st := openStore(cfg)

	// settings persistidas ganham do ambiente; primeiro boot semeia do env
	settings, found, err := st.GetSettings()
	if err != nil {
		log.Printf("main: load de settings falhou: %v", err)
	}
	if !found {
		settings = config.SettingsFromEnv()
		if err := st.PutSettings(settings); err != nil {
			log.Printf("main: persist de settings falhou: %v", err)
		}
	}
	config.SetCurrent(settings)

	logSink := store.LogSink(st)

	reconciler := &ingest.Reconciler{
		Store: st,
		Profiles: func() ingest.ProfileFetcher {
			s := config.Current()
			if s.AccessToken == "" {
				return nil
			}
			return tools.GraphClient{
				AccessToken: s.AccessToken,
				ApiVersion:  s.GraphVersion,
				Log:         logSink,
			}
		},
	}

	ingestor := &ingest.Ingestor{
		Reconciler: reconciler,
		Dedup:      ingest.NewDedupWindow(cfg.DedupWindow),
		AutoReply: func(conv *models.Conversation, msg models.Message) {
			s := config.Current()
			if !s.AutoReply || s.OpenAIKey == "" || conv.AiPaused {
				return
			}
			job := models.ReplyJob{
				ConversationID: conv.ID,
				MessageID:      msg.ID,
				Status:         models.REPLY_STATUS_PENDING,
			}
			if err := st.EnqueueReply(&job); err != nil {
				log.Printf("main: enqueue de resposta falhou para %s: %v", conv.ID, err)
			}
		},
	}

	proc := &workers.ReplyProcessor{
		Store: st,
		Graph: func() tools.GraphClient {
			s := config.Current()
			return tools.GraphClient{
				AccessToken: s.AccessToken,
				ApiVersion:  s.GraphVersion,
				Log:         logSink,
			}
		},
		OpenAI: func() tools.OpenAIClient {
			s := config.Current()
			return tools.OpenAIClient{
				APIKey: s.OpenAIKey,
				Model:  s.OpenAIModel,
				Log:    logSink,
			}
		},
	}
	stopProc := proc.Start()
	defer stopProc()

	if _, err := workers.StartRetention(st, cfg.RetentionCron); err != nil {
		log.Printf("main: retention cron inválido (%q): %v", cfg.RetentionCron, err)
	}

	r := gin.New()
	r.Use(dbpkg.SetStoreToContext(st))
	r.Use(dbpkg.SetIngestorToContext(ingestor))
	router.Initialize(r, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Clara listening on :%s", cfg.ApiPort)
	log.Fatal(srv.ListenAndServe())
}

// openStore escolhe o backend: memória (default) ou gorm (sqlite3/postgres).
// Falha de conexão não derruba o processo, cai pra memória.
func openStore(cfg config.Configuration) store.Store {
	if cfg.Database == "memory" || cfg.Database == "" {
		log.Println("Utilizando store em memória...")
		return store.NewMemory(cfg.LogCapacity)
	}

	dbpkg.SetConfigurations(cfg)
	db, err := dbpkg.Connect()
	if err != nil {
		log.Printf("main: conexão com o banco falhou (%v), usando memória", err)
		return store.NewMemory(cfg.LogCapacity)
	}
	return store.NewGorm(db, cfg.LogCapacity)
}
