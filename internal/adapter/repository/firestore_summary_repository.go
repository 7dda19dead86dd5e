package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/pkg/errors"
	"ragestate/pkg/utils"
)

type firestoreSummaryRepository struct {
	client *firestore.Client
}

func NewFirestoreSummaryRepository(client *firestore.Client) repository.SummaryRepository {
	return &firestoreSummaryRepository{
		client: client,
	}
}

func (r *firestoreSummaryRepository) summaryRef(userID, chatID string) *firestore.DocumentRef {
	return r.client.Collection("users").Doc(userID).Collection("chatSummaries").Doc(chatID)
}

func (r *firestoreSummaryRepository) Get(ctx context.Context, userID, chatID string) (*entity.ChatSummary, error) {
	doc, err := r.summaryRef(userID, chatID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat summary", err)
		}
		return nil, errors.Internal("Failed to get chat summary", err)
	}

	var summary entity.ChatSummary
	if err := doc.DataTo(&summary); err != nil {
		return nil, errors.Internal("Failed to parse chat summary data", err)
	}

	return &summary, nil
}

func (r *firestoreSummaryRepository) List(ctx context.Context, userID string, limit int, cursor string) ([]*entity.ChatSummary, string, bool, error) {
	query := r.client.Collection("users").Doc(userID).Collection("chatSummaries").
		OrderBy("updatedAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)

	if cursor != "" {
		decoded, err := utils.DecodeCursor(cursor)
		if err != nil {
			return nil, "", false, errors.BadRequest("Invalid cursor", err)
		}
		query = query.StartAfter(decoded.CreatedAt, decoded.DocID)
	}

	iter := query.Limit(limit).Documents(ctx)
	var summaries []*entity.ChatSummary

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating chat summaries for user %s: %v", userID, err)
			return nil, "", false, errors.Internal("Failed to iterate chat summaries", err)
		}

		var summary entity.ChatSummary
		if err := doc.DataTo(&summary); err != nil {
			log.Printf("Error parsing chat summary for user %s: %v", userID, err)
			continue // Skip bad data instead of failing
		}
		summaries = append(summaries, &summary)
	}

	hasMore := len(summaries) == limit
	nextCursor := ""
	if hasMore {
		last := summaries[len(summaries)-1]
		nextCursor = utils.EncodeCursor(last.UpdatedAt, last.ChatID)
	}

	return summaries, nextCursor, hasMore, nil
}

// SetAll writes every summary in a single transaction, so either all
// members see the new chat or none do.
func (r *firestoreSummaryRepository) SetAll(ctx context.Context, summaries []repository.MemberSummary) error {
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		now := time.Now()
		for _, ms := range summaries {
			ms.Summary.UpdatedAt = now
			if err := tx.Set(r.summaryRef(ms.UserID, ms.Summary.ChatID), ms.Summary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Internal("Failed to write chat summaries", err)
	}

	return nil
}

// ApplyMessage folds one message into one member's summary. Update fails
// with NotFound when the summary document is missing, which callers treat
// as a skippable condition rather than an abort.
func (r *firestoreSummaryRepository) ApplyMessage(ctx context.Context, userID, chatID string, snapshot entity.LastMessageSnapshot, incrementUnread bool) error {
	updates := []firestore.Update{
		{Path: "lastMessage", Value: snapshot},
		{Path: "updatedAt", Value: time.Now()},
	}
	if incrementUnread {
		updates = append(updates, firestore.Update{Path: "unreadCount", Value: firestore.Increment(1)})
	}

	_, err := r.summaryRef(userID, chatID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat summary", err)
		}
		return errors.Internal("Failed to apply message to chat summary", err)
	}

	return nil
}

func (r *firestoreSummaryRepository) ResetUnread(ctx context.Context, userID, chatID string) error {
	_, err := r.summaryRef(userID, chatID).Update(ctx, []firestore.Update{
		{Path: "unreadCount", Value: 0},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat summary", err)
		}
		return errors.Internal("Failed to reset unread count", err)
	}

	return nil
}

func (r *firestoreSummaryRepository) SetMuted(ctx context.Context, userID, chatID string, muted bool) error {
	_, err := r.summaryRef(userID, chatID).Update(ctx, []firestore.Update{
		{Path: "muted", Value: muted},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat summary", err)
		}
		return errors.Internal("Failed to update mute state", err)
	}

	return nil
}
