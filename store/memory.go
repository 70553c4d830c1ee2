package store

import (
	"fmt"
	"sync"
	"time"

	"clara/models"
)

// Memory é o backend em memória (default). Tudo atrás de um RWMutex;
// leituras devolvem cópias para ninguém mutar estado compartilhado por fora.
type Memory struct {
	mu sync.RWMutex

	convs map[string]*models.Conversation
	order []string // ids, mais recentemente ativa primeiro

	logs   []models.LogEntry // mais recente primeiro
	logCap int

	settings *models.Settings

	products      map[int64]*models.Product
	nextProductID int64

	jobs      []*models.ReplyJob
	nextJobID int64
}

func NewMemory(logCapacity int) *Memory {
	if logCapacity <= 0 {
		logCapacity = 100
	}
	return &Memory{
		convs:    make(map[string]*models.Conversation),
		logCap:   logCapacity,
		products: make(map[int64]*models.Product),
	}
}

/************************************************
/**** MARK: THREADS ****/
/************************************************/

func (m *Memory) FindConversation(platform, externalUserID string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.convs[models.ConversationID(platform, externalUserID)]
	if !ok {
		return nil, nil
	}
	return cloneConversation(conv), nil
}

func (m *Memory) GetConversation(id string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conv, ok := m.convs[id]
	if !ok {
		return nil, nil
	}
	return cloneConversation(conv), nil
}

func (m *Memory) CreateConversation(conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.convs[conv.ID]; ok {
		return fmt.Errorf("conversa %s já existe", conv.ID)
	}

	now := time.Now()
	c := cloneConversation(conv)
	c.CreatedAt = &now
	c.UpdatedAt = &now
	m.convs[c.ID] = c
	m.order = append([]string{c.ID}, m.order...)

	conv.CreatedAt = c.CreatedAt
	conv.UpdatedAt = c.UpdatedAt
	return nil
}

func (m *Memory) UpdateConversation(conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.convs[conv.ID]
	if !ok {
		return fmt.Errorf("conversa %s não encontrada", conv.ID)
	}

	now := time.Now()
	cur.DisplayName = conv.DisplayName
	cur.AvatarURL = conv.AvatarURL
	cur.AiPaused = conv.AiPaused
	cur.UpdatedAt = &now
	return nil
}

func (m *Memory) ListConversations() ([]models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Conversation, 0, len(m.order))
	for _, id := range m.order {
		if conv, ok := m.convs[id]; ok {
			out = append(out, *cloneConversation(conv))
		}
	}
	return out, nil
}

func (m *Memory) AppendMessage(conversationID string, msg models.Message) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[conversationID]
	if !ok {
		return false, fmt.Errorf("conversa %s não encontrada", conversationID)
	}

	for _, existing := range conv.Messages {
		if existing.ID == msg.ID {
			return false, nil
		}
	}

	at := time.Now()
	if msg.CreatedAt != nil {
		at = *msg.CreatedAt
	}
	at = models.ClampMessageTime(conv.LastMessageAt, at)
	msg.CreatedAt = &at
	msg.ConversationID = conversationID

	conv.Messages = append(conv.Messages, msg)
	conv.LastMessagePreview = previewOf(msg.Text)
	conv.LastMessageAt = &at
	now := time.Now()
	conv.UpdatedAt = &now

	m.moveToFront(conversationID)
	return true, nil
}

func (m *Memory) SetMessageDelivery(conversationID, messageID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[conversationID]
	if !ok {
		return fmt.Errorf("conversa %s não encontrada", conversationID)
	}
	for i := range conv.Messages {
		if conv.Messages[i].ID == messageID {
			conv.Messages[i].DeliveryStatus = status
			return nil
		}
	}
	return fmt.Errorf("mensagem %s não encontrada", messageID)
}

func (m *Memory) SetAIPaused(conversationID string, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[conversationID]
	if !ok {
		return fmt.Errorf("conversa %s não encontrada", conversationID)
	}
	conv.AiPaused = paused
	now := time.Now()
	conv.UpdatedAt = &now
	return nil
}

// moveToFront assumes the lock is held.
func (m *Memory) moveToFront(id string) {
	for i, cur := range m.order {
		if cur == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.order = append([]string{id}, m.order...)
}

/************************************************
/**** MARK: EVENT LOG ****/
/************************************************/

func (m *Memory) AppendLog(entry models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry.ID == "" {
		entry.ID = models.NewLogID()
	}
	if entry.Timestamp == nil {
		now := time.Now()
		entry.Timestamp = &now
	}

	m.logs = append([]models.LogEntry{entry}, m.logs...)
	if len(m.logs) > m.logCap {
		m.logs = m.logs[:m.logCap]
	}
	return nil
}

func (m *Memory) ListLogs() ([]models.LogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.LogEntry, len(m.logs))
	copy(out, m.logs)
	return out, nil
}

/************************************************
/**** MARK: SETTINGS ****/
/************************************************/

func (m *Memory) GetSettings() (models.Settings, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return models.Settings{}, false, nil
	}
	return *m.settings, true, nil
}

func (m *Memory) PutSettings(s models.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	s.ID = 1
	s.UpdatedAt = &now
	m.settings = &s
	return nil
}

/************************************************
/**** MARK: PRODUCTS ****/
/************************************************/

func (m *Memory) ListProducts() ([]models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Product, 0, len(m.products))
	for id := int64(1); id <= m.nextProductID; id++ {
		if p, ok := m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *Memory) GetProduct(id int64) (*models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *Memory) SaveProduct(p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if p.ID == 0 {
		m.nextProductID++
		p.ID = m.nextProductID
		p.CreatedAt = &now
	}
	p.UpdatedAt = &now
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *Memory) DeleteProduct(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

/************************************************
/**** MARK: REPLY QUEUE ****/
/************************************************/

func (m *Memory) EnqueueReply(job *models.ReplyJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.nextJobID++
	job.ID = m.nextJobID
	if job.Status == "" {
		job.Status = models.REPLY_STATUS_PENDING
	}
	if job.ScheduledAt == nil {
		job.ScheduledAt = &now
	}
	job.CreatedAt = &now

	cp := *job
	m.jobs = append(m.jobs, &cp)
	return nil
}

func (m *Memory) DueReplies(now time.Time, limit int) ([]models.ReplyJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.ReplyJob
	for _, j := range m.jobs {
		if len(out) >= limit {
			break
		}
		if j.Status == models.REPLY_STATUS_PENDING && j.ScheduledAt != nil && !j.ScheduledAt.After(now) {
			out = append(out, *j)
		}
	}
	return out, nil
}

func (m *Memory) ClaimReply(id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.jobs {
		if j.ID == id {
			if j.Status != models.REPLY_STATUS_PENDING {
				return false, nil
			}
			j.Status = models.REPLY_STATUS_PROCESSING
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) FinishReply(id int64, status, replyText string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, j := range m.jobs {
		if j.ID == id {
			now := time.Now()
			j.Status = status
			j.ProcessedAt = &now
			j.ReplyText = replyText
			j.UpdatedAt = &now
			return nil
		}
	}
	return fmt.Errorf("reply job %d não encontrado", id)
}

func (m *Memory) PurgeReplies(olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []*models.ReplyJob
	var purged int64
	for _, j := range m.jobs {
		finished := j.Status == models.REPLY_STATUS_DONE ||
			j.Status == models.REPLY_STATUS_FAILED ||
			j.Status == models.REPLY_STATUS_SKIPPED
		if finished && j.ProcessedAt != nil && j.ProcessedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, j)
	}
	m.jobs = kept
	return purged, nil
}

func cloneConversation(conv *models.Conversation) *models.Conversation {
	cp := *conv
	cp.Messages = make([]models.Message, len(conv.Messages))
	copy(cp.Messages, conv.Messages)
	return &cp
}
