package roast

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/mlorentedev/roastmydouban/internal/douban"
)

//go:embed prompts
var promptFS embed.FS

var (
	roastTmpl      = template.Must(template.ParseFS(promptFS, "prompts/roast.tmpl"))
	complimentTmpl = template.Must(template.ParseFS(promptFS, "prompts/compliment.tmpl"))

	roastArchetypes      = mustRead("prompts/roast_archetypes.md")
	complimentArchetypes = mustRead("prompts/compliment_archetypes.md")
)

func mustRead(name string) string {
	b, err := promptFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(b)
}

type promptData struct {
	Category   string
	Items      string
	Archetypes string
	Rich       bool
}

// complimentItem is the reduced record the compliment prompt sees.
type complimentItem struct {
	Title   string  `json:"title"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment,omitempty"`
}

// RoastPrompt renders the roast prompt for a user's records.
func RoastPrompt(items []douban.Interest) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("roast: encode items: %w", err)
	}
	category := "interests"
	if len(items) > 0 && items[0].Type != "" {
		category = items[0].Type
	}
	return render(roastTmpl, promptData{
		Category:   category,
		Items:      string(payload),
		Archetypes: roastArchetypes,
	})
}

// ComplimentPrompt renders the compliment prompt. rich asks for a longer
// citation and more item thoughts.
func ComplimentPrompt(items []douban.Interest, rich bool) (string, error) {
	reduced := make([]complimentItem, len(items))
	for i, it := range items {
		reduced[i] = complimentItem{Title: it.Title, Rating: it.Rating, Comment: it.Comment}
	}
	payload, err := json.Marshal(reduced)
	if err != nil {
		return "", fmt.Errorf("roast: encode items: %w", err)
	}
	return render(complimentTmpl, promptData{
		Items:      string(payload),
		Archetypes: complimentArchetypes,
		Rich:       rich,
	})
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("roast: render %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}
