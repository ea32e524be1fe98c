package cleaner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"clearfeed/config"
	"clearfeed/types"
)

// Completer abstracts a chat-style text generation backend.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	ModelName() string
}

const systemPrompt = `You are a news de-sensationalizer. Your job is to:
1. Remove clickbait from headlines - make them factual and neutral
2. Rewrite content to be unbiased, factual, and free of sensationalism
3. Remove emotional manipulation, exaggeration, and "brainrot"
4. Keep only verified facts and important information
Respond ONLY with valid JSON, no markdown or extra text.`

const userPrompt = `Clean this news article. Remove clickbait, bias, and sensationalism.

ORIGINAL TITLE: %s

ORIGINAL CONTENT: %s

Respond with this exact JSON structure:
{
  "cleanedTitle": "Factual, non-clickbait version of the headline",
  "summary": "2-3 sentence unbiased summary",
  "cleanedContent": "Full article rewritten to be factual, unbiased, and clear. Remove sensationalism and emotional language. Keep only important facts. 3-5 paragraphs.",
  "clarityScore": 85,
  "keyPoints": ["fact 1", "fact 2", "fact 3"]
}`

var (
	errNoJSON       = errors.New("no JSON object in response")
	controlCharsRe  = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	whitespaceRunRe = regexp.MustCompile(`\s+`)
)

// Cleaner rewrites article text through a Completer and always yields a usable result.
type Cleaner struct {
	completer Completer
	timeout   time.Duration
}

// New creates a Cleaner. A nil completer disables rewriting.
func New(completer Completer) *Cleaner {
	return &Cleaner{completer: completer, timeout: config.AIRequestTimeout}
}

// Enabled reports whether a rewriting backend is configured.
func (c *Cleaner) Enabled() bool {
	return c != nil && c.completer != nil
}

// Clean removes sensationalism from title and content. It never returns an error:
// short content is passed through and every backend failure yields the fallback record.
func (c *Cleaner) Clean(ctx context.Context, title, content string) types.CleanResult {
	if utf8.RuneCountInString(content) < config.MinCleanLength || !c.Enabled() {
		return Skipped(title, content)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := fmt.Sprintf(userPrompt, title, truncate(content, config.MaxPromptContent))
	text, err := c.completer.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		log.Printf("❌ AI processing error: %v", err)
		return Fallback(title, content)
	}

	result, err := ParseResponse(text, title, content)
	if err != nil {
		log.Printf("❌ JSON parse error: %v", err)
		return Fallback(title, content)
	}

	log.Printf("✓ AI cleaned: %q → %q", truncate(title, 30), truncate(result.CleanedTitle, 30))
	return result
}

// Skipped is returned when content is too short to be worth rewriting.
func Skipped(title, content string) types.CleanResult {
	summary := content
	if summary == "" {
		summary = title
	}
	return types.CleanResult{
		CleanedTitle:   title,
		Summary:        summary,
		CleanedContent: content,
		ClarityScore:   config.ClaritySkipped,
		KeyPoints:      []string{},
		BiasRemoved:    false,
	}
}

// Fallback is returned when the rewriter call or its response fails.
func Fallback(title, content string) types.CleanResult {
	return types.CleanResult{
		CleanedTitle:   title,
		Summary:        truncate(content, config.SummaryFallbackLength),
		CleanedContent: content,
		ClarityScore:   config.ClarityFailed,
		KeyPoints:      []string{},
		BiasRemoved:    false,
	}
}

type rewriteResponse struct {
	CleanedTitle   json.RawMessage `json:"cleanedTitle"`
	Summary        json.RawMessage `json:"summary"`
	CleanedContent json.RawMessage `json:"cleanedContent"`
	ClarityScore   json.RawMessage `json:"clarityScore"`
	KeyPoints      json.RawMessage `json:"keyPoints"`
}

// ParseResponse extracts, sanitizes and decodes the rewriter output.
// Each text field that is missing, empty or not a string falls back to the
// original title or content on its own.
func ParseResponse(text, title, content string) (types.CleanResult, error) {
	raw, ok := ExtractJSON(text)
	if !ok {
		return types.CleanResult{}, errNoJSON
	}

	var parsed rewriteResponse
	if err := json.Unmarshal([]byte(SanitizeJSON(raw)), &parsed); err != nil {
		return types.CleanResult{}, fmt.Errorf("decoding rewrite response: %w", err)
	}

	return types.CleanResult{
		CleanedTitle:   stringField(parsed.CleanedTitle, title),
		Summary:        stringField(parsed.Summary, truncate(content, config.SummaryFallbackLength)),
		CleanedContent: stringField(parsed.CleanedContent, content),
		ClarityScore:   ClampClarity(parseScore(parsed.ClarityScore)),
		KeyPoints:      parseKeyPoints(parsed.KeyPoints),
		BiasRemoved:    true,
	}, nil
}

func stringField(raw json.RawMessage, fallback string) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == "" {
		return fallback
	}
	return s
}

// ExtractJSON returns the span from the first '{' to the last '}' in text.
func ExtractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// SanitizeJSON replaces control characters with spaces and collapses whitespace,
// so literal newlines inside string values no longer break decoding.
func SanitizeJSON(s string) string {
	s = controlCharsRe.ReplaceAllString(s, " ")
	return whitespaceRunRe.ReplaceAllString(s, " ")
}

// ClampClarity bounds a clarity score into [ClarityMin, ClarityMax].
func ClampClarity(score int) int {
	return min(config.ClarityMax, max(config.ClarityMin, score))
}

// parseScore accepts numbers or numeric strings; zero, null or absent mean "use the default".
func parseScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return config.ClarityDefault
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return config.ClarityDefault
		}
		if n, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return config.ClarityDefault
		}
	}
	if n == 0 || math.IsNaN(n) {
		return config.ClarityDefault
	}
	if math.IsInf(n, 0) {
		if n > 0 {
			return config.ClarityMax
		}
		return config.ClarityMin
	}
	return int(math.Round(max(-1e6, min(1e6, n))))
}

func parseKeyPoints(raw json.RawMessage) []string {
	points := []string{}
	if len(raw) == 0 {
		return points
	}

	var strs []string
	if err := json.Unmarshal(raw, &strs); err == nil {
		return append(points, strs...)
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		return points
	}
	for _, it := range items {
		if it == nil {
			continue
		}
		points = append(points, fmt.Sprint(it))
	}
	return points
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
