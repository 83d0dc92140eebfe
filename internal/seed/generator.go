// ABOUTME: Demo record generator for panel models.
// ABOUTME: Uses OpenAI when a key is configured and falls back to deterministic static data.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/2389/panel/internal/definition"
	"github.com/2389/panel/internal/store"
)

// Generator creates demo records using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// NewGenerator creates a generator, loading the API key from .env if available.
func NewGenerator() *Generator {
	g := &Generator{}

	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}

	g.model = os.Getenv("OPENAI_MODEL")
	if g.model == "" {
		g.model = "gpt-5-mini"
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		g.client = openai.NewClient(apiKey)
		g.useAI = true
		log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	} else {
		log.Println("No OPENAI_API_KEY found, using static fallback data")
	}

	return g
}

// Generate returns count records for a model. Values are restricted to the
// model's declared fields and options whichever source produced them.
func (g *Generator) Generate(ctx context.Context, name string, m definition.Model, count int) []map[string]any {
	if count <= 0 {
		return nil
	}
	if g.useAI {
		rows, err := g.generateAI(ctx, name, m, count)
		if err == nil && len(rows) > 0 {
			return conform(m, rows)
		}
		log.Printf("AI generation for %s failed, falling back to static data: %v", name, err)
	}
	return generateStatic(m, count)
}

// Result reports how many records were created for one model
type Result struct {
	Model   string
	Created int
	Err     error
}

// Seed generates and stores count records for each named model in parallel.
// An empty names list seeds every model in the definition.
func (g *Generator) Seed(ctx context.Context, s *store.Store, def *definition.Definition, names []string, count int) ([]Result, error) {
	if len(names) == 0 {
		for name := range def.Models {
			names = append(names, name)
		}
	}
	for _, name := range names {
		if _, ok := def.Models[name]; !ok {
			return nil, fmt.Errorf("unknown model %q", name)
		}
	}

	resultCh := make(chan Result, len(names))
	for _, name := range names {
		go func(name string) {
			log.Printf("  ⏳ Generating %s...", name)
			res := Result{Model: name}
			for _, row := range g.Generate(ctx, name, def.Models[name], count) {
				if _, err := s.CreateRecord(ctx, name, row); err != nil {
					res.Err = err
					break
				}
				res.Created++
			}
			resultCh <- res
		}(name)
	}

	results := make([]Result, 0, len(names))
	for range names {
		res := <-resultCh
		if res.Err != nil {
			log.Printf("  ✗ Failed to seed %s: %v", res.Model, res.Err)
		} else {
			log.Printf("  ✓ Generated %d %s", res.Created, res.Model)
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Generator) generateAI(ctx context.Context, name string, m definition.Model, count int) ([]map[string]any, error) {
	var fields []string
	for _, f := range m.Fields {
		desc := fmt.Sprintf("- %s (%s)", f.Name, fieldType(f))
		if len(f.Options) > 0 {
			desc += ": one of " + strings.Join(f.Options, ", ")
		}
		if f.Required {
			desc += ", required"
		}
		fields = append(fields, desc)
	}

	prompt := fmt.Sprintf(`Generate %d realistic records for the %q table of an admin panel.
Each record has these fields:
%s

Return as JSON array of objects keyed by field name. Vary the content and keep text fields short.`,
		count, name, strings.Join(fields, "\n"))

	return callOpenAI[[]map[string]any](ctx, g.client, g.model, prompt)
}

// conform drops undeclared keys and out-of-range options from generated rows
func conform(m definition.Model, rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for i, row := range rows {
		clean := make(map[string]any, len(m.Fields))
		for _, f := range m.Fields {
			v, ok := row[f.Name]
			if ok && len(f.Options) > 0 && !contains(f.Options, fmt.Sprint(v)) {
				ok = false
			}
			if !ok {
				if !f.Required && len(f.Options) == 0 {
					continue
				}
				v = staticValue(f, i)
			}
			clean[f.Name] = v
		}
		out = append(out, clean)
	}
	return out
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
