package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/pkg/errors"
	"ragestate/pkg/utils"
)

type firestorePostRepository struct {
	client *firestore.Client
}

func NewFirestorePostRepository(client *firestore.Client) repository.PostRepository {
	return &firestorePostRepository{
		client: client,
	}
}

func (r *firestorePostRepository) Create(ctx context.Context, post *entity.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	post.CreatedAt = time.Now()

	_, err := r.client.Collection("posts").Doc(post.ID).Set(ctx, post)
	if err != nil {
		return errors.Internal("Failed to create post", err)
	}

	return nil
}

func (r *firestorePostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	doc, err := r.client.Collection("posts").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Post", err)
		}
		return nil, errors.Internal("Failed to get post", err)
	}

	var post entity.Post
	if err := doc.DataTo(&post); err != nil {
		return nil, errors.Internal("Failed to parse post data", err)
	}

	return &post, nil
}

func (r *firestorePostRepository) ListPublic(ctx context.Context, limit int, cursor string) ([]*entity.Post, string, bool, error) {
	query := r.client.Collection("posts").
		Where("isPublic", "==", true).
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)

	if cursor != "" {
		decoded, err := utils.DecodeCursor(cursor)
		if err != nil {
			return nil, "", false, errors.BadRequest("Invalid cursor", err)
		}
		query = query.StartAfter(decoded.CreatedAt, decoded.DocID)
	}

	iter := query.Limit(limit).Documents(ctx)
	var posts []*entity.Post

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("Firestore error while iterating posts: %v", err)
			return nil, "", false, errors.Internal("Failed to iterate posts", err)
		}

		var post entity.Post
		if err := doc.DataTo(&post); err != nil {
			log.Printf("Error parsing post data: %v", err)
			continue // Skip bad data instead of failing
		}
		posts = append(posts, &post)
	}

	hasMore := len(posts) == limit
	nextCursor := ""
	if hasMore {
		last := posts[len(posts)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}

	return posts, nextCursor, hasMore, nil
}

func (r *firestorePostRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("posts").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete post", err)
	}

	return nil
}

func (r *firestorePostRepository) CreateComment(ctx context.Context, comment *entity.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}

	comment.CreatedAt = time.Now()

	_, err := r.client.Collection("posts").Doc(comment.PostID).Collection("comments").Doc(comment.ID).Set(ctx, comment)
	if err != nil {
		return errors.Internal("Failed to create comment", err)
	}

	return nil
}

func (r *firestorePostRepository) ListComments(ctx context.Context, postID string, limit int, cursor string) ([]*entity.Comment, string, bool, error) {
	query := r.client.Collection("posts").Doc(postID).Collection("comments").
		OrderBy("createdAt", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)

	if cursor != "" {
		decoded, err := utils.DecodeCursor(cursor)
		if err != nil {
			return nil, "", false, errors.BadRequest("Invalid cursor", err)
		}
		query = query.StartAfter(decoded.CreatedAt, decoded.DocID)
	}

	iter := query.Limit(limit).Documents(ctx)
	var comments []*entity.Comment

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, "", false, errors.Internal("Failed to iterate comments", err)
		}

		var comment entity.Comment
		if err := doc.DataTo(&comment); err != nil {
			continue
		}
		comments = append(comments, &comment)
	}

	hasMore := len(comments) == limit
	nextCursor := ""
	if hasMore {
		last := comments[len(comments)-1]
		nextCursor = utils.EncodeCursor(last.CreatedAt, last.ID)
	}

	return comments, nextCursor, hasMore, nil
}

// AddLike keys the like document by user id, so liking twice is a no-op at
// the storage layer.
func (r *firestorePostRepository) AddLike(ctx context.Context, postID, userID string) error {
	_, err := r.client.Collection("posts").Doc(postID).Collection("likes").Doc(userID).Set(ctx, map[string]interface{}{
		"userId":    userID,
		"createdAt": time.Now(),
	})
	if err != nil {
		return errors.Internal("Failed to add like", err)
	}

	return nil
}

func (r *firestorePostRepository) RemoveLike(ctx context.Context, postID, userID string) error {
	_, err := r.client.Collection("posts").Doc(postID).Collection("likes").Doc(userID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove like", err)
	}

	return nil
}

func (r *firestorePostRepository) IncrementCounter(ctx context.Context, postID, field string, delta int64) error {
	_, err := r.client.Collection("posts").Doc(postID).Update(ctx, []firestore.Update{
		{Path: field, Value: firestore.Increment(delta)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Post", err)
		}
		return errors.Internal("Failed to increment post counter", err)
	}

	return nil
}

func (r *firestorePostRepository) CountLikes(ctx context.Context, postID string) (int64, error) {
	docs, err := r.client.Collection("posts").Doc(postID).Collection("likes").Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count likes", err)
	}
	return int64(len(docs)), nil
}

func (r *firestorePostRepository) CountComments(ctx context.Context, postID string) (int64, error) {
	docs, err := r.client.Collection("posts").Doc(postID).Collection("comments").Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count comments", err)
	}
	return int64(len(docs)), nil
}

func (r *firestorePostRepository) SetCounters(ctx context.Context, postID string, likeCount, commentCount int64) error {
	_, err := r.client.Collection("posts").Doc(postID).Update(ctx, []firestore.Update{
		{Path: "likeCount", Value: likeCount},
		{Path: "commentCount", Value: commentCount},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Post", err)
		}
		return errors.Internal("Failed to set post counters", err)
	}

	return nil
}

func (r *firestorePostRepository) ListRecentIDs(ctx context.Context, limit int) ([]string, error) {
	iter := r.client.Collection("posts").
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to list recent posts", err)
		}
		ids = append(ids, doc.Ref.ID)
	}

	return ids, nil
}
