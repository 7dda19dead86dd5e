package job

import (
	"context"
	"log"
	"time"

	"ragestate/internal/domain/repository"
)

// CounterReconcileJob recounts like/comment subcollections for recent posts
// and rewrites the denormalized counters. The counters drift because
// increments are best-effort; this job is what makes
// counter == count(subcollection) hold over time.
type CounterReconcileJob struct {
	postRepo  repository.PostRepository
	batchSize int
}

func NewCounterReconcileJob(postRepo repository.PostRepository, batchSize int) *CounterReconcileJob {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &CounterReconcileJob{
		postRepo:  postRepo,
		batchSize: batchSize,
	}
}

// Run implements cron.Job.
func (j *CounterReconcileJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := j.Reconcile(ctx); err != nil {
		log.Printf("Counter reconcile job error: %v", err)
	}
}

func (j *CounterReconcileJob) Reconcile(ctx context.Context) error {
	ids, err := j.postRepo.ListRecentIDs(ctx, j.batchSize)
	if err != nil {
		return err
	}

	fixed := 0
	for _, postID := range ids {
		post, err := j.postRepo.GetByID(ctx, postID)
		if err != nil {
			log.Printf("Counter reconcile: failed to load post %s: %v", postID, err)
			continue
		}

		likes, err := j.postRepo.CountLikes(ctx, postID)
		if err != nil {
			log.Printf("Counter reconcile: failed to count likes for post %s: %v", postID, err)
			continue
		}

		comments, err := j.postRepo.CountComments(ctx, postID)
		if err != nil {
			log.Printf("Counter reconcile: failed to count comments for post %s: %v", postID, err)
			continue
		}

		if post.LikeCount == likes && post.CommentCount == comments {
			continue
		}

		if err := j.postRepo.SetCounters(ctx, postID, likes, comments); err != nil {
			log.Printf("Counter reconcile: failed to set counters for post %s: %v", postID, err)
			continue
		}
		fixed++
	}

	if fixed > 0 {
		log.Printf("Counter reconcile: corrected %d of %d posts", fixed, len(ids))
	}

	return nil
}
