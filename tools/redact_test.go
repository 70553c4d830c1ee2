package tools

import (
	"strings"
	"testing"
)

func TestRedactJSONNested(t *testing.T) {
	raw := []byte(`{
		"access_token": "EAAB-super-secreto",
		"entry": [{"value": {"token": "outro-segredo", "text": "oi"}}],
		"mode": "subscribe"
	}`)

	out := RedactJSON(raw)

	if strings.Contains(out, "EAAB-super-secreto") || strings.Contains(out, "outro-segredo") {
		t.Fatalf("segredo vazou: %s", out)
	}
	if !strings.Contains(out, "<redacted>") {
		t.Fatalf("sem marcação de redação: %s", out)
	}
	if !strings.Contains(out, `"text":"oi"`) && !strings.Contains(out, `"text": "oi"`) {
		t.Fatalf("campo não-sensível sumiu: %s", out)
	}
}

func TestRedactJSONCaseInsensitiveKeys(t *testing.T) {
	out := RedactJSON([]byte(`{"Access_Token": "abc", "APIKEY": "def"}`))
	if strings.Contains(out, "abc") || strings.Contains(out, "def") {
		t.Fatalf("chave com caixa diferente vazou: %s", out)
	}
}

func TestRedactJSONNonJSONPassesThrough(t *testing.T) {
	if out := RedactJSON([]byte("not json at all")); out != "not json at all" {
		t.Fatalf("out = %q", out)
	}
}

func TestRedactURL(t *testing.T) {
	raw := "https://graph.facebook.com/v20.0/123?fields=name&access_token=EAAB-segredo"
	out := RedactURL(raw)

	if strings.Contains(out, "EAAB-segredo") {
		t.Fatalf("token vazou na URL: %s", out)
	}
	if !strings.Contains(out, "fields=name") {
		t.Fatalf("query não-sensível sumiu: %s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"abc", "****"},
		{"sk-1234567890", "****7890"},
	}
	for _, tc := range cases {
		if got := MaskSecret(tc.in); got != tc.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
