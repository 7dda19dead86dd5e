package entity

import "time"

const (
	ChatTypeDM    = "dm"
	ChatTypeEvent = "event"
)

type Chat struct {
	ID            string    `json:"id" firestore:"id"`
	Members       []string  `json:"members" firestore:"members"`
	Type          string    `json:"type" firestore:"type"` // "dm", "event"
	EventID       string    `json:"event_id,omitempty" firestore:"eventId,omitempty"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
	LastMessageAt time.Time `json:"last_message_at" firestore:"lastMessageAt"`
}

// LastMessageSnapshot is the denormalized preview written into each member's
// chat summary on every send.
type LastMessageSnapshot struct {
	SenderID  string    `json:"sender_id" firestore:"senderId"`
	Text      string    `json:"text,omitempty" firestore:"text,omitempty"`
	MediaType string    `json:"media_type,omitempty" firestore:"mediaType,omitempty"`
	SentAt    time.Time `json:"sent_at" firestore:"sentAt"`
}

// ChatSummary is the per-member read model of a conversation. It is derived
// state: always reconstructable from the message log, never authoritative.
type ChatSummary struct {
	ChatID       string              `json:"chat_id" firestore:"chatId"`
	Type         string              `json:"type" firestore:"type"` // "dm", "event"
	PeerID       string              `json:"peer_id,omitempty" firestore:"peerId,omitempty"`
	PeerName     string              `json:"peer_name,omitempty" firestore:"peerName,omitempty"`
	PeerPhotoURL string              `json:"peer_photo_url,omitempty" firestore:"peerPhotoURL,omitempty"`
	EventID      string              `json:"event_id,omitempty" firestore:"eventId,omitempty"`
	LastMessage  LastMessageSnapshot `json:"last_message" firestore:"lastMessage"`
	UnreadCount  int                 `json:"unread_count" firestore:"unreadCount"`
	Muted        bool                `json:"muted" firestore:"muted"`
	UpdatedAt    time.Time           `json:"updated_at" firestore:"updatedAt"`
}
