// Package recommend asks a generative model to pre-select the most
// relevant article titles from a fetch cycle. Recommendations are advisory
// only: they are matched back to articles by exact title equality, so a
// paraphrased title simply yields no recommendation for that article.
package recommend

import (
	"context"
	"strings"
	"time"

	"metrowatch/internal/article"
	"metrowatch/internal/cache"
	"metrowatch/internal/metrics"
)

// Generator produces freeform text for a prompt. Satisfied by the Gemini
// client below; tests substitute their own.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Engine wraps a Generator with prompt construction, reply normalization,
// and a short-TTL cache keyed by (bucket content, prompt), so identical
// inputs inside one session do not re-invoke the provider.
type Engine struct {
	gen      Generator
	cache    *cache.Cache
	cacheTTL time.Duration
}

func NewEngine(gen Generator, c *cache.Cache, ttl time.Duration) *Engine {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Engine{gen: gen, cache: c, cacheTTL: ttl}
}

// Recommend returns the model's selection of titles for the bucket
// snapshot. An empty bucket returns no titles without a provider call.
// Provider failures surface as the returned error; callers report them and
// continue with an empty selection.
func (e *Engine) Recommend(ctx context.Context, buckets *article.Buckets, promptTemplate string) ([]string, error) {
	titles := buckets.Titles()
	if len(titles) == 0 {
		return nil, nil
	}

	key := cache.Key(append([]string{promptTemplate}, titles...)...)
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return v.([]string), nil
		}
	}

	metrics.Global.IncrementRecommendationCalls()
	reply, err := e.gen.Generate(ctx, BuildPrompt(titles, promptTemplate))
	if err != nil {
		return nil, err
	}

	picked := ParseReply(reply)
	if e.cache != nil {
		e.cache.Set(key, picked, e.cacheTTL)
	}
	return picked, nil
}

// BuildPrompt embeds the titles into the template as a bulleted list and
// pins the reply format to one bare title per line.
func BuildPrompt(titles []string, template string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(template))
	b.WriteString("\n\n以下是新聞標題列表：\n")
	for _, t := range titles {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("\n請只回傳你挑選出的新聞標題，每個標題一行，不要有其他多餘的文字或編號。")
	return b.String()
}

// ParseReply splits the model output by line, strips leading bullet and
// dash markers plus surrounding whitespace, and drops empty lines.
func ParseReply(reply string) []string {
	var titles []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•· ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		titles = append(titles, line)
	}
	return titles
}
