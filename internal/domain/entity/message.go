package entity

import "time"

type Message struct {
	ID          string    `json:"id" firestore:"id"`
	ChatID      string    `json:"chat_id" firestore:"chatId"`
	SenderID    string    `json:"sender_id" firestore:"senderId"`
	Text        string    `json:"text,omitempty" firestore:"text,omitempty"`
	MediaURL    string    `json:"media_url,omitempty" firestore:"mediaUrl,omitempty"`
	MediaType   string    `json:"media_type,omitempty" firestore:"mediaType,omitempty"` // "image", "video"
	Status      string    `json:"status" firestore:"status"`                            // "sent", "delivered"
	Flagged     bool      `json:"flagged,omitempty" firestore:"flagged,omitempty"`
	FlagReasons []string  `json:"flag_reasons,omitempty" firestore:"flagReasons,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
}
