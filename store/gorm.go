package store

import (
	"time"

	"clara/models"

	"github.com/jinzhu/gorm"
)

// Gorm é o backend durável (sqlite3 por padrão, postgres opcional).
// Mesma interface do Memory, uma tabela por model.
type Gorm struct {
	db     *gorm.DB
	logCap int
}

func NewGorm(db *gorm.DB, logCapacity int) *Gorm {
	if logCapacity <= 0 {
		logCapacity = 100
	}
	return &Gorm{db: db, logCap: logCapacity}
}

/************************************************
/**** MARK: THREADS ****/
/************************************************/

func (g *Gorm) FindConversation(platform, externalUserID string) (*models.Conversation, error) {
	return g.GetConversation(models.ConversationID(platform, externalUserID))
}

func (g *Gorm) GetConversation(id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := g.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

func (g *Gorm) CreateConversation(conv *models.Conversation) error {
	return g.db.Create(conv).Error
}

func (g *Gorm) UpdateConversation(conv *models.Conversation) error {
	return g.db.Model(&models.Conversation{}).
		Where("id = ?", conv.ID).
		Updates(map[string]any{
			"display_name": conv.DisplayName,
			"avatar_url":   conv.AvatarURL,
			"ai_paused":    conv.AiPaused,
		}).Error
}

func (g *Gorm) ListConversations() ([]models.Conversation, error) {
	var convs []models.Conversation
	err := g.db.
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at asc, id asc")
		}).
		Order("last_message_at desc").
		Find(&convs).Error
	return convs, err
}

func (g *Gorm) AppendMessage(conversationID string, msg models.Message) (bool, error) {
	tx := g.db.Begin()

	var conv models.Conversation
	if err := tx.Where("id = ?", conversationID).First(&conv).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	// idempotência por id da mensagem
	var count int
	if err := tx.Model(&models.Message{}).
		Where("id = ? AND conversation_id = ?", msg.ID, conversationID).
		Count(&count).Error; err != nil {
		tx.Rollback()
		return false, err
	}
	if count > 0 {
		tx.Rollback()
		return false, nil
	}

	at := time.Now()
	if msg.CreatedAt != nil {
		at = *msg.CreatedAt
	}
	at = models.ClampMessageTime(conv.LastMessageAt, at)
	msg.CreatedAt = &at
	msg.ConversationID = conversationID

	if err := tx.Create(&msg).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{
			"last_message_preview": previewOf(msg.Text),
			"last_message_at":      &at,
		}).Error; err != nil {
		tx.Rollback()
		return false, err
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return false, err
	}
	return true, nil
}

func (g *Gorm) SetMessageDelivery(conversationID, messageID, status string) error {
	return g.db.Model(&models.Message{}).
		Where("id = ? AND conversation_id = ?", messageID, conversationID).
		Update("delivery_status", status).Error
}

func (g *Gorm) SetAIPaused(conversationID string, paused bool) error {
	return g.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("ai_paused", paused).Error
}

/************************************************
/**** MARK: EVENT LOG ****/
/************************************************/

func (g *Gorm) AppendLog(entry models.LogEntry) error {
	if entry.ID == "" {
		entry.ID = models.NewLogID()
	}
	if entry.Timestamp == nil {
		now := time.Now()
		entry.Timestamp = &now
	}
	if err := g.db.Create(&entry).Error; err != nil {
		return err
	}
	return g.trimLogs()
}

// trimLogs descarta as entradas mais antigas além da capacidade (FIFO).
func (g *Gorm) trimLogs() error {
	var ids []string
	// LIMIT explícito porque o sqlite não aceita OFFSET sozinho
	if err := g.db.Model(&models.LogEntry{}).
		Order("timestamp desc, id desc").
		Limit(1000).
		Offset(g.logCap).
		Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return g.db.Where("id IN (?)", ids).Delete(&models.LogEntry{}).Error
}

func (g *Gorm) ListLogs() ([]models.LogEntry, error) {
	var logs []models.LogEntry
	err := g.db.Order("timestamp desc, id desc").Limit(g.logCap).Find(&logs).Error
	return logs, err
}

/************************************************
/**** MARK: SETTINGS ****/
/************************************************/

func (g *Gorm) GetSettings() (models.Settings, bool, error) {
	var s models.Settings
	err := g.db.Where("id = ?", 1).First(&s).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return models.Settings{}, false, nil
		}
		return models.Settings{}, false, err
	}
	return s, true, nil
}

func (g *Gorm) PutSettings(s models.Settings) error {
	s.ID = 1
	return g.db.Save(&s).Error
}

/************************************************
/**** MARK: PRODUCTS ****/
/************************************************/

func (g *Gorm) ListProducts() ([]models.Product, error) {
	var products []models.Product
	err := g.db.Order("id asc").Find(&products).Error
	return products, err
}

func (g *Gorm) GetProduct(id int64) (*models.Product, error) {
	var p models.Product
	err := g.db.First(&p, id).Error
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (g *Gorm) SaveProduct(p *models.Product) error {
	return g.db.Save(p).Error
}

func (g *Gorm) DeleteProduct(id int64) error {
	return g.db.Where("id = ?", id).Delete(&models.Product{}).Error
}

/************************************************
/**** MARK: REPLY QUEUE ****/
/************************************************/

func (g *Gorm) EnqueueReply(job *models.ReplyJob) error {
	if job.Status == "" {
		job.Status = models.REPLY_STATUS_PENDING
	}
	if job.ScheduledAt == nil {
		now := time.Now()
		job.ScheduledAt = &now
	}
	return g.db.Create(job).Error
}

func (g *Gorm) DueReplies(now time.Time, limit int) ([]models.ReplyJob, error) {
	var jobs []models.ReplyJob
	err := g.db.
		Where("status = ?", models.REPLY_STATUS_PENDING).
		Where("scheduled_at IS NOT NULL AND scheduled_at <= ?", now).
		Order("scheduled_at asc, id asc").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}

// ClaimReply é o lock otimista do worker: só processa quem conseguir
// mudar o status de pending para processing.
func (g *Gorm) ClaimReply(id int64) (bool, error) {
	res := g.db.Model(&models.ReplyJob{}).
		Where("id = ? AND status = ?", id, models.REPLY_STATUS_PENDING).
		Update("status", models.REPLY_STATUS_PROCESSING)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (g *Gorm) FinishReply(id int64, status, replyText string) error {
	now := time.Now()
	return g.db.Model(&models.ReplyJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       status,
			"processed_at": &now,
			"reply_text":   replyText,
		}).Error
}

func (g *Gorm) PurgeReplies(olderThan time.Time) (int64, error) {
	res := g.db.
		Where("status IN (?)", []string{
			models.REPLY_STATUS_DONE,
			models.REPLY_STATUS_FAILED,
			models.REPLY_STATUS_SKIPPED,
		}).
		Where("processed_at IS NOT NULL AND processed_at < ?", olderThan).
		Delete(&models.ReplyJob{})
	return res.RowsAffected, res.Error
}
