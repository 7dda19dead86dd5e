package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/pkg/errors"
)

// SummaryProjector keeps each member's chat summary consistent with the
// message log. Message fan-out runs through an in-process queue with
// per-recipient retry: one member's failure never aborts the others, and a
// recipient whose attempts are exhausted lands on the dead-letter list
// instead of being retried forever.
type SummaryProjector struct {
	summaryRepo repository.SummaryRepository
	userRepo    repository.UserRepository
	chatRepo    repository.ChatRepository

	maxAttempts int

	mu          sync.Mutex
	queue       []*fanoutJob
	deadLetters []DeadLetter
}

// deadLetterCap bounds the in-memory dead-letter list. Once full, the
// oldest entries roll off as new ones arrive.
const deadLetterCap = 256

type fanoutJob struct {
	chat     *entity.Chat
	message  *entity.Message
	snapshot entity.LastMessageSnapshot
	pending  []string
	attempts map[string]int
}

// DeadLetter records a per-recipient fan-out that ran out of retries.
type DeadLetter struct {
	ChatID    string
	MessageID string
	UserID    string
	Attempts  int
	LastError string
	At        time.Time
}

func NewSummaryProjector(
	summaryRepo repository.SummaryRepository,
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	maxAttempts int,
) *SummaryProjector {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &SummaryProjector{
		summaryRepo: summaryRepo,
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		maxAttempts: maxAttempts,
	}
}

// OnChatCreated seeds both members' summary documents for a new DM in one
// atomic batch. Non-DM chat types are a no-op, not an error.
func (p *SummaryProjector) OnChatCreated(ctx context.Context, chat *entity.Chat) error {
	if chat.Type != entity.ChatTypeDM || len(chat.Members) != 2 {
		log.Printf("OnChatCreated: skipping non-DM chat %s (type=%s, members=%d)", chat.ID, chat.Type, len(chat.Members))
		return nil
	}

	users := make([]*entity.User, 2)
	g, gctx := errgroup.WithContext(ctx)
	for i, memberID := range chat.Members {
		i, memberID := i, memberID
		g.Go(func() error {
			user, err := p.userRepo.GetByID(gctx, memberID)
			if err != nil {
				return err
			}
			users[i] = user
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	summaries := make([]repository.MemberSummary, 0, 2)
	for i, memberID := range chat.Members {
		peer := users[1-i]
		summaries = append(summaries, repository.MemberSummary{
			UserID: memberID,
			Summary: &entity.ChatSummary{
				ChatID:       chat.ID,
				Type:         entity.ChatTypeDM,
				PeerID:       peer.ID,
				PeerName:     displayName(peer),
				PeerPhotoURL: peer.PhotoURL,
			},
		})
	}

	return p.summaryRepo.SetAll(ctx, summaries)
}

// OnMessageCreated re-reads the chat's member list, builds the lastMessage
// snapshot and queues the per-member fan-out.
func (p *SummaryProjector) OnMessageCreated(ctx context.Context, message *entity.Message) error {
	chat, err := p.chatRepo.GetByID(ctx, message.ChatID)
	if err != nil {
		return err
	}

	snapshot := entity.LastMessageSnapshot{
		SenderID:  message.SenderID,
		Text:      message.Text,
		MediaType: message.MediaType,
		SentAt:    message.CreatedAt,
	}

	job := &fanoutJob{
		chat:     chat,
		message:  message,
		snapshot: snapshot,
		pending:  append([]string(nil), chat.Members...),
		attempts: make(map[string]int),
	}

	p.mu.Lock()
	p.queue = append(p.queue, job)
	p.mu.Unlock()

	return nil
}

// Run drains the fan-out queue until the context is cancelled.
func (p *SummaryProjector) Run(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.ProcessPending(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Printf("Summary fan-out worker started (max attempts per recipient: %d)", p.maxAttempts)
}

// ProcessPending makes one pass over the queued jobs. Recipients that fail
// transiently stay pending for the next pass; recipients with no summary
// document are skipped; exhausted recipients are dead-lettered.
func (p *SummaryProjector) ProcessPending(ctx context.Context) {
	p.mu.Lock()
	jobs := p.queue
	p.queue = nil
	p.mu.Unlock()

	for _, job := range jobs {
		p.processJob(ctx, job)
	}
}

func (p *SummaryProjector) processJob(ctx context.Context, job *fanoutJob) {
	var stillPending []string

	for _, memberID := range job.pending {
		incrementUnread := memberID != job.message.SenderID

		err := p.summaryRepo.ApplyMessage(ctx, memberID, job.chat.ID, job.snapshot, incrementUnread)
		if err == nil {
			continue
		}

		if errors.Is(err, "NOT_FOUND") {
			// Member has no summary document yet; skip, don't abort the
			// rest of the fan-out.
			log.Printf("Fan-out: no summary for member %s in chat %s, skipping", memberID, job.chat.ID)
			continue
		}

		job.attempts[memberID]++
		if job.attempts[memberID] >= p.maxAttempts {
			log.Printf("Fan-out: dead-lettering member %s in chat %s after %d attempts: %v",
				memberID, job.chat.ID, job.attempts[memberID], err)
			p.mu.Lock()
			if len(p.deadLetters) >= deadLetterCap {
				p.deadLetters = p.deadLetters[len(p.deadLetters)-deadLetterCap+1:]
			}
			p.deadLetters = append(p.deadLetters, DeadLetter{
				ChatID:    job.chat.ID,
				MessageID: job.message.ID,
				UserID:    memberID,
				Attempts:  job.attempts[memberID],
				LastError: err.Error(),
				At:        time.Now(),
			})
			p.mu.Unlock()
			continue
		}

		log.Printf("Fan-out: retrying member %s in chat %s (attempt %d): %v",
			memberID, job.chat.ID, job.attempts[memberID], err)
		stillPending = append(stillPending, memberID)
	}

	if len(stillPending) > 0 {
		job.pending = stillPending
		p.mu.Lock()
		p.queue = append(p.queue, job)
		p.mu.Unlock()
	}
}

// DeadLetters returns a copy of the dead-letter list.
func (p *SummaryProjector) DeadLetters() []DeadLetter {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]DeadLetter(nil), p.deadLetters...)
}

// QueueDepth reports how many fan-out jobs are waiting.
func (p *SummaryProjector) QueueDepth() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func displayName(user *entity.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}
