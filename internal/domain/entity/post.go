package entity

import "time"

// Post counters are eventually-consistent aggregates. counter ==
// count(subcollection) is a target reconciled by a background job, not a
// transactional guarantee.
type Post struct {
	ID           string    `json:"id" firestore:"id"`
	UserID       string    `json:"user_id" firestore:"userId"`
	Content      string    `json:"content" firestore:"content"`
	MediaURLs    []string  `json:"media_urls,omitempty" firestore:"mediaUrls,omitempty"`
	IsPublic     bool      `json:"is_public" firestore:"isPublic"`
	LikeCount    int64     `json:"like_count" firestore:"likeCount"`
	CommentCount int64     `json:"comment_count" firestore:"commentCount"`
	Flagged      bool      `json:"flagged,omitempty" firestore:"flagged,omitempty"`
	FlagReasons  []string  `json:"flag_reasons,omitempty" firestore:"flagReasons,omitempty"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
}

type Comment struct {
	ID        string    `json:"id" firestore:"id"`
	PostID    string    `json:"post_id" firestore:"postId"`
	UserID    string    `json:"user_id" firestore:"userId"`
	Content   string    `json:"content" firestore:"content"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
