package rssfeeds

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"clearfeed/config"

	sanitize "github.com/mrz1836/go-sanitize"
)

// StripHTML removes markup and the literal &nbsp; entity, then trims the result.
func StripHTML(html string) string {
	if html == "" {
		return ""
	}
	out := strings.ReplaceAll(sanitize.HTML(html), "&nbsp;", " ")
	return strings.TrimSpace(out)
}

// ReadingTime estimates minutes at a fixed words-per-minute rate, never less than one.
func ReadingTime(text string) int {
	words := len(strings.Fields(text))
	if words == 0 {
		return 1
	}
	return max(1, int(math.Ceil(float64(words)/config.WordsPerMinute)))
}

// TimeAgo renders the coarse relative time shown next to each article.
// The buckets are intentionally unpluralized ("1 hours ago").
func TimeAgo(published, now time.Time) string {
	seconds := int64(now.Sub(published) / time.Second)
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return fmt.Sprintf("%d min ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%d hours ago", seconds/3600)
	default:
		return fmt.Sprintf("%d days ago", seconds/86400)
	}
}

// CharCount counts characters rather than bytes.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// PositionID builds the per-fetch article id from category, source and batch position.
// The same feed item gets a new id whenever its position changes between fetches.
func PositionID(category, source string, index int) string {
	return fmt.Sprintf("%s-%s-%d", category, source, index)
}

// StableID creates a short id that survives refreshes by hashing the normalized link and title.
func StableID(link, title string) string {
	combined := normalizeURL(link) + "|" + normalizeTitle(title)
	hash := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(hash[:])[:16]
}

func normalizeTitle(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.Join(strings.Fields(t), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	// Drop tracking parameters
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
