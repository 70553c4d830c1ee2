package tools

import (
	"fmt"
	"strings"

	"clara/models"
)

// persona fixa do atendimento
const personaPrompt = "Você é a Clara, atendente virtual de uma loja. " +
	"Seja útil, educada e direta; responda em português do Brasil. " +
	"Responda em no máximo 600 caracteres."

// BuildSystemPrompt monta o preâmbulo de sistema: persona + catálogo.
// O catálogo entra resumido pra não explodir tokens.
func BuildSystemPrompt(products []models.Product) string {
	var b strings.Builder
	b.WriteString(personaPrompt)

	active := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Active {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return b.String()
	}

	b.WriteString("\n\nCatálogo de produtos:\n")
	for _, p := range active {
		desc := strings.TrimSpace(p.Description)
		if len(desc) > 120 {
			desc = desc[:120] + "..."
		}
		b.WriteString(fmt.Sprintf("- %s (R$ %.2f)", p.Name, p.Price))
		if desc != "" {
			b.WriteString(": " + desc)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nSó ofereça produtos que estão no catálogo acima.")
	return b.String()
}
