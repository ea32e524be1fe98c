package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"clearfeed/types"

	"github.com/google/uuid"
)

// RefreshRequest asks the service to rebuild its cache.
// An empty Category refreshes everything.
type RefreshRequest struct {
	ID       string `json:"id"`
	Category string `json:"category"`
}

// FeedRefresher is the part of the feed service driven by refresh messages.
type FeedRefresher interface {
	Refresh(ctx context.Context) ([]*types.Article, error)
	RefreshCategory(ctx context.Context, category string) ([]*types.Article, error)
}

type refreshHandler struct {
	svc       FeedRefresher
	isUnknown func(error) bool
}

// handle runs one request. Undecodable requests and unknown categories are
// marked and dropped; other failures stay unmarked for redelivery.
func (h *refreshHandler) handle(ctx context.Context, value []byte) (mark bool, err error) {
	var req RefreshRequest
	if err := json.Unmarshal(value, &req); err != nil {
		log.Printf("⚠️  Dropping malformed refresh request: %v", err)
		return true, nil
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	var articles []*types.Article
	if req.Category == "" {
		articles, err = h.svc.Refresh(ctx)
	} else {
		articles, err = h.svc.RefreshCategory(ctx, req.Category)
	}
	if err != nil {
		if h.isUnknown != nil && h.isUnknown(err) {
			log.Printf("⚠️  Refresh %s skipped: %v", req.ID, err)
			return true, nil
		}
		return false, fmt.Errorf("refresh %s: %w", req.ID, err)
	}

	log.Printf("✅ Refresh %s done (category=%q, %d articles)", req.ID, req.Category, len(articles))
	return true, nil
}
