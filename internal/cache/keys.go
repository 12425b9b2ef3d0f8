package cache

import (
	"fmt"
	"time"
)

// Cache key inventory. Every cached value gets a key builder and a TTL here
// so the full cache surface is visible in one place.
const (
	PostTTL     = 5 * time.Minute
	PostListTTL = 30 * time.Second
	UserTTL     = 10 * time.Minute
	TrendingTTL = 1 * time.Minute
	BookclubTTL = 5 * time.Minute

	// Single-use WebSocket auth tickets
	WSTicketTTL = 30 * time.Second
)

func PostKey(postID, viewerID string) string {
	return fmt.Sprintf("post:%s:viewer:%s", postID, viewerID)
}

func PostsListKey(viewerID string, limit, offset int) string {
	return fmt.Sprintf("posts:list:viewer:%s:%d:%d", viewerID, limit, offset)
}

func UserStatsKey(userID, viewerID string) string {
	return fmt.Sprintf("user:stats:%s:viewer:%s", userID, viewerID)
}

func TrendingKey(limit int) string {
	return fmt.Sprintf("hashtags:trending:%d", limit)
}

func BookclubKey(bookclubID, viewerID string) string {
	return fmt.Sprintf("bookclub:%s:viewer:%s", bookclubID, viewerID)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf("ws:ticket:%s", ticket)
}
