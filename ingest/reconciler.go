package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"clara/models"
	"clara/store"
	"clara/tools"
)

// ProfileFetcher é o que o reconciler precisa da Graph API.
// tools.GraphClient implementa.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (tools.Profile, error)
}

// Reconciler resolve (platform, sender) para uma conversa: acha ou cria,
// busca metadata de perfil quando dá, e anexa a mensagem. O find-or-create
// roda sob um mutex por chave — entregas concorrentes do mesmo remetente
// não podem criar duas threads.
type Reconciler struct {
	Store store.Store

	// Profiles constrói o fetcher a partir das settings atuais; retorno
	// nil significa "sem credencial, usa placeholder".
	Profiles func() ProfileFetcher

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (r *Reconciler) lockFor(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks == nil {
		r.locks = make(map[string]*sync.Mutex)
	}
	lk, ok := r.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		r.locks[key] = lk
	}
	return lk
}

// Reconcile aplica uma mensagem recebida ao store e devolve a conversa,
// a mensagem gravada e se ela foi de fato anexada (false = id duplicado).
func (r *Reconciler) Reconcile(ctx context.Context, in InboundMessage) (*models.Conversation, models.Message, bool, error) {
	key := models.ConversationID(in.Platform, in.SenderID)

	lk := r.lockFor(key)
	lk.Lock()
	defer lk.Unlock()

	conv, err := r.Store.FindConversation(in.Platform, in.SenderID)
	if err != nil {
		return nil, models.Message{}, false, err
	}

	if conv == nil {
		name := models.PlaceholderName(in.SenderID)
		avatar := models.PlaceholderAvatar(in.SenderID)
		if in.ProfileName != "" {
			name = in.ProfileName
		}

		if p, ok := r.fetchProfile(ctx, in.SenderID); ok {
			if p.Name != "" {
				name = p.Name
			} else if p.Username != "" {
				name = p.Username
			}
			if p.ProfilePic != "" {
				avatar = p.ProfilePic
			}
		}

		conv = &models.Conversation{
			ID:             key,
			Platform:       in.Platform,
			ExternalUserID: in.SenderID,
			DisplayName:    name,
			AvatarURL:      avatar,
		}
		if err := r.Store.CreateConversation(conv); err != nil {
			return nil, models.Message{}, false, err
		}
	} else if in.ProfileName != "" && conv.DisplayName != in.ProfileName {
		// refresh barato: o WhatsApp já manda o nome no bloco contacts
		conv.DisplayName = in.ProfileName
		if err := r.Store.UpdateConversation(conv); err != nil {
			log.Printf("ingest: refresh de perfil falhou para %s: %v", conv.ID, err)
		}
	}

	msgID := in.MessageID
	if msgID == "" {
		msgID = models.NewMessageID()
	}
	at := in.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	msg := models.Message{
		ID:        msgID,
		Direction: models.DIRECTION_INCOMING,
		Text:      in.Text,
		CreatedAt: &at,
	}

	appended, err := r.Store.AppendMessage(conv.ID, msg)
	if err != nil {
		return nil, models.Message{}, false, err
	}
	return conv, msg, appended, nil
}

// fetchProfile tenta a Graph API; falha é não-fatal (o cliente já logou
// o outcome no event log) e cai no placeholder.
func (r *Reconciler) fetchProfile(ctx context.Context, senderID string) (tools.Profile, bool) {
	if r.Profiles == nil {
		return tools.Profile{}, false
	}
	fetcher := r.Profiles()
	if fetcher == nil {
		return tools.Profile{}, false
	}
	p, err := fetcher.FetchProfile(ctx, senderID)
	if err != nil {
		log.Printf("ingest: profile fetch falhou para %s: %v", senderID, err)
		return tools.Profile{}, false
	}
	return p, true
}
