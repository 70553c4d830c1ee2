package ingest

import (
	"context"
	"sync"
	"testing"
	"time"

	"clara/models"
	"clara/store"
	"clara/tools"
)

type fakeProfiles struct {
	profile tools.Profile
	err     error
	calls   int
}

func (f *fakeProfiles) FetchProfile(ctx context.Context, userID string) (tools.Profile, error) {
	f.calls++
	return f.profile, f.err
}

func TestReconcileCreatesConversationWithProfile(t *testing.T) {
	st := store.NewMemory(10)
	profiles := &fakeProfiles{profile: tools.Profile{Name: "Ana", ProfilePic: "http://pic"}}
	r := &Reconciler{
		Store:    st,
		Profiles: func() ProfileFetcher { return profiles },
	}

	in := InboundMessage{
		Platform:  models.PLATFORM_INSTAGRAM,
		SenderID:  "123",
		MessageID: "m1",
		Text:      "Hi",
		Timestamp: time.Now(),
	}

	conv, msg, appended, err := r.Reconcile(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if !appended {
		t.Fatal("primeira mensagem deveria anexar")
	}
	if conv.ID != "instagram:123" || conv.DisplayName != "Ana" || conv.AvatarURL != "http://pic" {
		t.Fatalf("conv = %+v", conv)
	}
	if msg.ID != "m1" || msg.Direction != models.DIRECTION_INCOMING {
		t.Fatalf("msg = %+v", msg)
	}

	// segunda mensagem do mesmo sender não cria outra thread nem busca
	// perfil de novo
	in.MessageID = "m2"
	if _, _, _, err := r.Reconcile(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	convs, _ := st.ListConversations()
	if len(convs) != 1 {
		t.Fatalf("threads = %d, want 1", len(convs))
	}
	if profiles.calls != 1 {
		t.Fatalf("profile fetch chamado %d vezes", profiles.calls)
	}
}

func TestReconcileFallsBackToPlaceholder(t *testing.T) {
	st := store.NewMemory(10)
	r := &Reconciler{Store: st} // sem Profiles: sem credencial

	in := InboundMessage{
		Platform: models.PLATFORM_INSTAGRAM,
		SenderID: "17841400000012345",
		Text:     "oi",
	}
	conv, msg, _, err := r.Reconcile(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if conv.DisplayName != models.PlaceholderName(in.SenderID) {
		t.Fatalf("display name = %q", conv.DisplayName)
	}
	if conv.AvatarURL == "" {
		t.Fatal("avatar placeholder vazio")
	}
	// mensagem sem mid ganha um id gerado
	if msg.ID == "" {
		t.Fatal("mensagem sem mid deveria ganhar id")
	}
}

func TestReconcileRedeliveryIsIdempotent(t *testing.T) {
	st := store.NewMemory(10)
	r := &Reconciler{Store: st}

	in := InboundMessage{
		Platform:  models.PLATFORM_INSTAGRAM,
		SenderID:  "123",
		MessageID: "m1",
		Text:      "Hi",
	}

	if _, _, appended, err := r.Reconcile(context.Background(), in); err != nil || !appended {
		t.Fatalf("primeira entrega: appended=%v err=%v", appended, err)
	}
	if _, _, appended, err := r.Reconcile(context.Background(), in); err != nil || appended {
		t.Fatalf("redelivery: appended=%v err=%v", appended, err)
	}

	conv, _ := st.GetConversation("instagram:123")
	if len(conv.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(conv.Messages))
	}
}

func TestReconcileRefreshesWhatsAppName(t *testing.T) {
	st := store.NewMemory(10)
	r := &Reconciler{Store: st}

	first := InboundMessage{
		Platform:  models.PLATFORM_WHATSAPP,
		SenderID:  "5511999",
		MessageID: "wamid.1",
		Text:      "oi",
	}
	if _, _, _, err := r.Reconcile(context.Background(), first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.MessageID = "wamid.2"
	second.ProfileName = "Maria"
	if _, _, _, err := r.Reconcile(context.Background(), second); err != nil {
		t.Fatal(err)
	}

	conv, _ := st.GetConversation("whatsapp:5511999")
	if conv.DisplayName != "Maria" {
		t.Fatalf("display name = %q, want Maria", conv.DisplayName)
	}
}

func TestReconcileConcurrentSameSenderSingleThread(t *testing.T) {
	st := store.NewMemory(10)
	r := &Reconciler{Store: st}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := InboundMessage{
				Platform:  models.PLATFORM_INSTAGRAM,
				SenderID:  "123",
				MessageID: models.NewMessageID(),
				Text:      "oi",
			}
			if _, _, _, err := r.Reconcile(context.Background(), in); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	convs, _ := st.ListConversations()
	if len(convs) != 1 {
		t.Fatalf("threads = %d, want 1", len(convs))
	}
	if len(convs[0].Messages) != 20 {
		t.Fatalf("mensagens = %d, want 20", len(convs[0].Messages))
	}
}
