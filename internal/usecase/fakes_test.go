package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"ragestate/internal/domain/entity"
	"ragestate/internal/domain/repository"
	"ragestate/internal/domain/service"
	"ragestate/pkg/errors"
	"ragestate/pkg/utils"
)

// In-memory fakes for the Firestore repositories. They keep the same
// contracts (NOT_FOUND codes, idempotent writes, cursor paging) so the
// use cases under test cannot tell the difference.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	return user, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message // chatID -> insertion order
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    make(map[string]*entity.Chat),
		messages: make(map[string][]*entity.Message),
	}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	return chat, nil
}

func (r *fakeChatRepo) GetDMByMembers(ctx context.Context, memberA, memberB string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, chat := range r.chats {
		if chat.Type != entity.ChatTypeDM || len(chat.Members) != 2 {
			continue
		}
		if (chat.Members[0] == memberA && chat.Members[1] == memberB) ||
			(chat.Members[0] == memberB && chat.Members[1] == memberA) {
			return chat, nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) Update(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[chat.ID]; !ok {
		return errors.NotFound("Chat", nil)
	}
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) CreateMessage(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.messages[message.ChatID] {
		if existing.ID == message.ID {
			return nil // same id, same document
		}
	}
	r.messages[message.ChatID] = append(r.messages[message.ChatID], message)
	return nil
}

func (r *fakeChatRepo) GetMessageByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, message := range r.messages[chatID] {
		if message.ID == messageID {
			return message, nil
		}
	}
	return nil, errors.NotFound("Message", nil)
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, chatID string, limit int, cursor string) ([]*entity.Message, string, bool, error) {
	decoded, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, "", false, errors.BadRequest("Invalid cursor", err)
	}

	r.mu.Lock()
	all := append([]*entity.Message(nil), r.messages[chatID]...)
	r.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})

	var page []*entity.Message
	for _, message := range all {
		if decoded != nil {
			afterCursor := message.CreatedAt.Before(decoded.CreatedAt) ||
				(message.CreatedAt.Equal(decoded.CreatedAt) && message.ID < decoded.DocID)
			if !afterCursor {
				continue
			}
		}
		page = append(page, message)
		if len(page) == limit {
			break
		}
	}

	if len(page) < limit {
		return page, "", false, nil
	}
	last := page[len(page)-1]
	return page, utils.EncodeCursor(last.CreatedAt, last.ID), true, nil
}

type fakeSummaryRepo struct {
	mu        sync.Mutex
	summaries map[string]map[string]*entity.ChatSummary // userID -> chatID

	// applyFailures injects ApplyMessage errors per user; a negative count
	// means fail forever.
	applyFailures map[string]int
	applyCalls    int
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{
		summaries:     make(map[string]map[string]*entity.ChatSummary),
		applyFailures: make(map[string]int),
	}
}

func (r *fakeSummaryRepo) Get(ctx context.Context, userID, chatID string) (*entity.ChatSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary, ok := r.summaries[userID][chatID]
	if !ok {
		return nil, errors.NotFound("Chat summary", nil)
	}
	return summary, nil
}

func (r *fakeSummaryRepo) List(ctx context.Context, userID string, limit int, cursor string) ([]*entity.ChatSummary, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatSummary
	for _, summary := range r.summaries[userID] {
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.SentAt.After(out[j].LastMessage.SentAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, "", false, nil
}

func (r *fakeSummaryRepo) SetAll(ctx context.Context, summaries []repository.MemberSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ms := range summaries {
		if r.summaries[ms.UserID] == nil {
			r.summaries[ms.UserID] = make(map[string]*entity.ChatSummary)
		}
		r.summaries[ms.UserID][ms.Summary.ChatID] = ms.Summary
	}
	return nil
}

func (r *fakeSummaryRepo) ApplyMessage(ctx context.Context, userID, chatID string, snapshot entity.LastMessageSnapshot, incrementUnread bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applyCalls++

	if remaining, ok := r.applyFailures[userID]; ok && remaining != 0 {
		if remaining > 0 {
			r.applyFailures[userID] = remaining - 1
		}
		return errors.Internal("injected failure", fmt.Errorf("unavailable"))
	}

	summary, ok := r.summaries[userID][chatID]
	if !ok {
		return errors.NotFound("Chat summary", nil)
	}

	summary.LastMessage = snapshot
	summary.UpdatedAt = snapshot.SentAt
	if incrementUnread {
		summary.UnreadCount++
	}
	return nil
}

func (r *fakeSummaryRepo) ResetUnread(ctx context.Context, userID, chatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary, ok := r.summaries[userID][chatID]
	if !ok {
		return errors.NotFound("Chat summary", nil)
	}
	summary.UnreadCount = 0
	return nil
}

func (r *fakeSummaryRepo) SetMuted(ctx context.Context, userID, chatID string, muted bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary, ok := r.summaries[userID][chatID]
	if !ok {
		return errors.NotFound("Chat summary", nil)
	}
	summary.Muted = muted
	return nil
}

func (r *fakeSummaryRepo) unread(userID, chatID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if summary, ok := r.summaries[userID][chatID]; ok {
		return summary.UnreadCount
	}
	return -1
}

type fakePostRepo struct {
	mu       sync.Mutex
	posts    map[string]*entity.Post
	comments map[string][]*entity.Comment // postID
	likes    map[string]map[string]bool   // postID -> userID

	// incrementErr makes IncrementCounter fail, leaving counters stale.
	incrementErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{
		posts:    make(map[string]*entity.Post),
		comments: make(map[string][]*entity.Comment),
		likes:    make(map[string]map[string]bool),
	}
}

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	r.posts[post.ID] = post
	return nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, errors.NotFound("Post", nil)
	}
	return post, nil
}

func (r *fakePostRepo) ListPublic(ctx context.Context, limit int, cursor string) ([]*entity.Post, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Post
	for _, post := range r.posts {
		if post.IsPublic {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		return out[:limit], "", true, nil
	}
	return out, "", false, nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return errors.NotFound("Post", nil)
	}
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) CreateComment(ctx context.Context, comment *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if comment.ID == "" {
		comment.ID = uuid.New().String()
	}
	for _, existing := range r.comments[comment.PostID] {
		if existing.ID == comment.ID {
			return nil
		}
	}
	r.comments[comment.PostID] = append(r.comments[comment.PostID], comment)
	return nil
}

func (r *fakePostRepo) ListComments(ctx context.Context, postID string, limit int, cursor string) ([]*entity.Comment, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*entity.Comment(nil), r.comments[postID]...)
	if limit > 0 && len(out) > limit {
		return out[:limit], "", true, nil
	}
	return out, "", false, nil
}

func (r *fakePostRepo) AddLike(ctx context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.likes[postID] == nil {
		r.likes[postID] = make(map[string]bool)
	}
	r.likes[postID][userID] = true
	return nil
}

func (r *fakePostRepo) RemoveLike(ctx context.Context, postID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.likes[postID], userID)
	return nil
}

func (r *fakePostRepo) IncrementCounter(ctx context.Context, postID, field string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.incrementErr != nil {
		return r.incrementErr
	}
	post, ok := r.posts[postID]
	if !ok {
		return errors.NotFound("Post", nil)
	}
	switch field {
	case "likeCount":
		post.LikeCount += delta
	case "commentCount":
		post.CommentCount += delta
	}
	return nil
}

func (r *fakePostRepo) CountLikes(ctx context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.likes[postID])), nil
}

func (r *fakePostRepo) CountComments(ctx context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.comments[postID])), nil
}

func (r *fakePostRepo) SetCounters(ctx context.Context, postID string, likeCount, commentCount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[postID]
	if !ok {
		return errors.NotFound("Post", nil)
	}
	post.LikeCount = likeCount
	post.CommentCount = commentCount
	return nil
}

func (r *fakePostRepo) ListRecentIDs(ctx context.Context, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id := range r.posts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	purchases map[string]*entity.Purchase
	mirrors   map[string][]*entity.Purchase // customerID -> mirrored copies

	// failuresRemaining makes Finalize fail transiently that many times.
	failuresRemaining int
	finalizeCalls     int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		purchases: make(map[string]*entity.Purchase),
		mirrors:   make(map[string][]*entity.Purchase),
	}
}

func (r *fakeOrderRepo) Finalize(ctx context.Context, purchase *entity.Purchase) (*entity.Purchase, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finalizeCalls++

	if r.failuresRemaining != 0 {
		if r.failuresRemaining > 0 {
			r.failuresRemaining--
		}
		return nil, false, errors.Internal("injected failure", fmt.Errorf("unavailable"))
	}

	if existing, ok := r.purchases[purchase.PaymentIntentID]; ok {
		return existing, false, nil
	}
	r.purchases[purchase.PaymentIntentID] = purchase
	return purchase, true, nil
}

func (r *fakeOrderRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*entity.Purchase, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	purchase, ok := r.purchases[paymentIntentID]
	if !ok {
		return nil, errors.NotFound("Order", nil)
	}
	return purchase, nil
}

func (r *fakeOrderRepo) MirrorToCustomer(ctx context.Context, customerID string, purchase *entity.Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mirrors[customerID] = append(r.mirrors[customerID], purchase)
	return nil
}

type fakePromoRepo struct {
	mu     sync.Mutex
	promos map[string]*entity.PromoCode
	usage  map[string]int
}

func newFakePromoRepo(promos ...*entity.PromoCode) *fakePromoRepo {
	r := &fakePromoRepo{
		promos: make(map[string]*entity.PromoCode),
		usage:  make(map[string]int),
	}
	for _, p := range promos {
		r.promos[p.Code] = p
	}
	return r
}

func (r *fakePromoRepo) GetByCode(ctx context.Context, code string) (*entity.PromoCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promo, ok := r.promos[code]
	if !ok {
		return nil, errors.NotFound("Promo code", nil)
	}
	return promo, nil
}

func (r *fakePromoRepo) IncrementUsage(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.usage[code]++
	return nil
}

type fakePaymentGateway struct {
	mu          sync.Mutex
	createCalls int
	lastCreate  service.CreateIntentInput

	// status returned by RetrievePaymentIntent; defaults to "succeeded".
	retrieveStatus string
	retrieveErr    error
}

func newFakePaymentGateway() *fakePaymentGateway {
	return &fakePaymentGateway{retrieveStatus: "succeeded"}
}

func (g *fakePaymentGateway) CreatePaymentIntent(ctx context.Context, input service.CreateIntentInput) (*service.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createCalls++
	g.lastCreate = input
	return &service.PaymentIntent{
		ID:           "pi_" + uuid.New().String()[:8],
		ClientSecret: "secret",
		Status:       "requires_payment_method",
		Amount:       input.AmountCents,
		Currency:     input.Currency,
	}, nil
}

func (g *fakePaymentGateway) RetrievePaymentIntent(ctx context.Context, id string) (*service.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	return &service.PaymentIntent{
		ID:     id,
		Status: g.retrieveStatus,
	}, nil
}
