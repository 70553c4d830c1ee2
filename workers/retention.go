package workers

import (
	"log"
	"time"

	"clara/models"
	"clara/store"

	"github.com/robfig/cron/v3"
)

// jobs finalizados ficam um dia para inspeção e depois somem
const replyRetention = 24 * time.Hour

// StartRetention agenda a varredura de reply jobs finalizados. O cron
// retornado já está rodando; Stop() dele encerra.
func StartRetention(st store.Store, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		RunRetention(st)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

// RunRetention executa uma varredura imediata (também usada nos testes).
func RunRetention(st store.Store) {
	purged, err := st.PurgeReplies(time.Now().Add(-replyRetention))
	if err != nil {
		log.Printf("retention: purge falhou: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("retention: %d reply jobs removidos (status %s/%s/%s)",
			purged, models.REPLY_STATUS_DONE, models.REPLY_STATUS_FAILED, models.REPLY_STATUS_SKIPPED)
	}
}
