package tools

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

const redactedValue = "<redacted>"

// campos que nunca podem aparecer em claro num LogEntry
var sensitiveKeys = map[string]struct{}{
	"access_token":  {},
	"token":         {},
	"verify_token":  {},
	"api_key":       {},
	"apikey":        {},
	"openai_key":    {},
	"authorization": {},
	"secret":        {},
}

// Redact walks a decoded JSON value and replaces the value of any
// sensitive key with "<redacted>". Arrays and nested objects included.
func Redact(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, sensitive := sensitiveKeys[strings.ToLower(k)]; sensitive {
				out[k] = redactedValue
				continue
			}
			out[k] = Redact(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Redact(val)
		}
		return out
	default:
		return v
	}
}

// RedactJSON redacts a raw JSON payload for storage in the event log.
// Corpos que não são JSON voltam como estão (webhooks válidos são sempre
// JSON; o caso não-JSON nunca carrega credencial nossa).
func RedactJSON(raw []byte) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Redact(v)); err != nil {
		return redactedValue
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// RedactURL strips sensitive query parameter values from a URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for k := range q {
		if _, sensitive := sensitiveKeys[strings.ToLower(k)]; sensitive {
			q.Set(k, redactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// MaskSecret keeps only the last 4 characters, for settings reads.
func MaskSecret(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
