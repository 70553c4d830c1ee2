package models

import (
	"testing"
	"time"
)

func TestConversationID(t *testing.T) {
	if got := ConversationID(PLATFORM_INSTAGRAM, "123"); got != "instagram:123" {
		t.Fatalf("ConversationID = %q", got)
	}
}

func TestValidPlatform(t *testing.T) {
	cases := []struct {
		platform string
		want     bool
	}{
		{"instagram", true},
		{"whatsapp", true},
		{"telegram", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPlatform(tc.platform); got != tc.want {
			t.Errorf("ValidPlatform(%q) = %v, want %v", tc.platform, got, tc.want)
		}
	}
}

func TestPlaceholderName(t *testing.T) {
	if got := PlaceholderName("17841400000012345"); got != "Contato 012345" {
		t.Fatalf("PlaceholderName = %q", got)
	}
	if got := PlaceholderName("42"); got != "Contato 42" {
		t.Fatalf("PlaceholderName curto = %q", got)
	}
}

func TestClampMessageTime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// sem última mensagem, timestamp passa direto
	if got := ClampMessageTime(nil, base); !got.Equal(base) {
		t.Fatalf("clamp sem last = %v", got)
	}

	// timestamp atrasado é puxado pra frente
	earlier := base.Add(-time.Minute)
	if got := ClampMessageTime(&base, earlier); !got.Equal(base) {
		t.Fatalf("clamp atrasado = %v, want %v", got, base)
	}

	// timestamp futuro fica como está
	later := base.Add(time.Minute)
	if got := ClampMessageTime(&base, later); !got.Equal(later) {
		t.Fatalf("clamp futuro = %v, want %v", got, later)
	}
}
