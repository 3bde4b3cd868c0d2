package conversation

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportchat/chat-api/internal/domain/cache"
	"github.com/supportchat/chat-api/internal/domain/faq"
	"github.com/supportchat/chat-api/internal/domain/llm"
	"github.com/supportchat/chat-api/internal/domain/prompt"
	"github.com/supportchat/chat-api/internal/utils/apperrors"
)

type fakeConvRepo struct {
	mu     sync.Mutex
	nextID uint
	bySess map[string]*Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{bySess: map[string]*Conversation{}}
}

func (r *fakeConvRepo) GetOrCreate(_ context.Context, sessionID string, userIdentifier *string, metadata map[string]any) (*Conversation, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.bySess[sessionID]; ok {
		return conv, false, nil
	}
	r.nextID++
	conv := &Conversation{ID: r.nextID, SessionID: sessionID, UserIdentifier: userIdentifier, Metadata: metadata, CreatedAt: time.Now()}
	r.bySess[sessionID] = conv
	return conv, true, nil
}

func (r *fakeConvRepo) FindBySessionID(_ context.Context, sessionID string) (*Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv, ok := r.bySess[sessionID]; ok {
		return conv, nil
	}
	return nil, apperrors.New(apperrors.KindNotFound, "conversation not found")
}

func (r *fakeConvRepo) Touch(context.Context, uint) error { return nil }

func (r *fakeConvRepo) DeleteBySessionID(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bySess, sessionID)
	return nil
}

type fakeMsgRepo struct {
	mu       sync.Mutex
	nextID   uint
	rows     []Message
	listErr  error
	createCt int
}

func (r *fakeMsgRepo) Create(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	msg.CreatedAt = time.Now()
	r.rows = append(r.rows, *msg)
	r.createCt++
	return nil
}

func (r *fakeMsgRepo) ListRecent(_ context.Context, conversationID uint, limit int) ([]Message, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, row := range r.rows {
		if row.ConversationID == conversationID {
			out = append(out, row)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMsgRepo) ListBefore(_ context.Context, conversationID uint, beforeID uint, limit int) ([]Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, row := range r.rows {
		if row.ConversationID != conversationID {
			continue
		}
		if beforeID != 0 && row.ID >= beforeID {
			continue
		}
		out = append(out, row)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeMsgRepo) CountByConversation(_ context.Context, conversationID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.ConversationID == conversationID {
			n++
		}
	}
	return n, nil
}

type fakeFAQs struct {
	entries []faq.FAQ
}

func (f *fakeFAQs) RetrieveRelevant(context.Context, string) []faq.FAQ { return f.entries }

type fakeGenerator struct {
	result *llm.Result
	err    error
	gotLen int
	last   []openai.ChatCompletionMessage
}

func (g *fakeGenerator) Generate(_ context.Context, messages []openai.ChatCompletionMessage) (*llm.Result, error) {
	g.gotLen = len(messages)
	g.last = messages
	if g.err != nil {
		return nil, g.err
	}
	return g.result, nil
}

type memStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStore() *memStore { return &memStore{data: map[string]string{}} }

func (m *memStore) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) Set(_ context.Context, key, value string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *memStore) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *memStore) Exists(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func newTestService(convs *fakeConvRepo, msgs *fakeMsgRepo, faqs *fakeFAQs, gen *fakeGenerator, store cache.Store) *Service {
	builder := prompt.NewBuilder(prompt.DefaultConfig(), zerolog.Nop())
	return NewService(convs, msgs, faqs, gen, builder, store, cache.NopLocker{}, ServiceConfig{
		Model:            "openai/gpt-4o-mini",
		HistoryLimit:     10,
		HistoryTTL:       5 * time.Minute,
		MaxMessageLength: 2000,
	}, zerolog.Nop())
}

func TestSendMessage_NewConversation(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "You can reset it from settings.", TokensUsed: 42}}
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, newMemStore())

	res, err := svc.SendMessage(context.Background(), SendInput{
		SessionID: "sess-1",
		Message:   "How do I reset my password?",
	})

	require.NoError(t, err)
	assert.True(t, res.ConversationCreated)
	assert.Equal(t, "sess-1", res.SessionID)
	assert.Equal(t, RoleAssistant, res.Reply.Role)
	assert.Equal(t, "You can reset it from settings.", res.Reply.Content)
	require.NotNil(t, res.Reply.TokensUsed)
	assert.Equal(t, 42, *res.Reply.TokensUsed)
	assert.Equal(t, "openai/gpt-4o-mini", res.Reply.Metadata["model"])

	// user + assistant rows persisted
	assert.Equal(t, 2, msgs.createCt)
	assert.Equal(t, RoleUser, msgs.rows[0].Role)
	assert.Equal(t, "How do I reset my password?", msgs.rows[0].Content)

	// prompt was system + user on a fresh conversation
	assert.Equal(t, 2, gen.gotLen)
}

func TestSendMessage_MetadataPersistedOnCreation(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "ok", TokensUsed: 1}}
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, newMemStore())

	_, err := svc.SendMessage(context.Background(), SendInput{
		SessionID: "sess-meta",
		Message:   "hello",
		Metadata:  map[string]any{"source": "widget", "plan": "pro"},
	})
	require.NoError(t, err)

	conv, err := convs.FindBySessionID(context.Background(), "sess-meta")
	require.NoError(t, err)
	assert.Equal(t, "widget", conv.Metadata["source"])
	assert.Equal(t, "pro", conv.Metadata["plan"])

	// a later turn must not overwrite the creation metadata
	_, err = svc.SendMessage(context.Background(), SendInput{
		SessionID: "sess-meta",
		Message:   "hello again",
		Metadata:  map[string]any{"source": "email"},
	})
	require.NoError(t, err)

	conv, err = convs.FindBySessionID(context.Background(), "sess-meta")
	require.NoError(t, err)
	assert.Equal(t, "widget", conv.Metadata["source"])
}

func TestSendMessage_ExistingConversationCarriesHistory(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "reply", TokensUsed: 5}}
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, newMemStore())

	_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-2", Message: "first question"})
	require.NoError(t, err)

	res, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-2", Message: "second question"})
	require.NoError(t, err)
	assert.False(t, res.ConversationCreated)

	// system + 2 prior turns + current user message
	assert.Equal(t, 4, gen.gotLen)
	assert.Equal(t, "first question", gen.last[1].Content)
	assert.Equal(t, "reply", gen.last[2].Content)
	assert.Equal(t, "second question", gen.last[3].Content)
}

func TestSendMessage_GeneratorFailurePropagatesAfterUserPersist(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	genErr := apperrors.New(apperrors.KindLLMService,
		"AI service temporarily unavailable, please try again").WithRetriable(true)
	gen := &fakeGenerator{err: genErr}
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, newMemStore())

	_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-3", Message: "hello"})

	require.Error(t, err)
	require.ErrorIs(t, err, genErr, "generation errors pass through unchanged")
	assert.Equal(t, apperrors.KindLLMService, apperrors.KindOf(err))
	assert.True(t, apperrors.IsRetriable(err))

	// the question survives even though the answer never came
	require.Equal(t, 1, msgs.createCt)
	assert.Equal(t, RoleUser, msgs.rows[0].Role)
}

func TestSendMessage_Validation(t *testing.T) {
	svc := newTestService(newFakeConvRepo(), &fakeMsgRepo{}, &fakeFAQs{}, &fakeGenerator{}, newMemStore())

	_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "s", Message: "   "})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.SendMessage(context.Background(), SendInput{SessionID: "s", Message: strings.Repeat("a", 2001)})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.SendMessage(context.Background(), SendInput{SessionID: "", Message: "hi"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestSendMessage_HistoryCachedAcrossReads(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "ok", TokensUsed: 1}}
	store := newMemStore()
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, store)

	_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-4", Message: "one"})
	require.NoError(t, err)

	// the turn invalidates the history cache after persisting new rows
	assert.False(t, store.Exists(context.Background(), cache.HistoryKey(1)))

	// a later turn repopulates it from the database before invalidating again
	_, err = svc.SendMessage(context.Background(), SendInput{SessionID: "sess-4", Message: "two"})
	require.NoError(t, err)
	assert.Equal(t, 4, gen.gotLen)
}

func TestGetHistory_Paging(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "ok", TokensUsed: 1}}
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, newMemStore())

	for i := 0; i < 3; i++ {
		_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-5", Message: "q"})
		require.NoError(t, err)
	}

	// 6 rows total; first page of 4 has more behind it
	page, err := svc.GetHistory(context.Background(), "sess-5", 4, 0)
	require.NoError(t, err)
	require.Len(t, page.Messages, 4)
	require.NotNil(t, page.Conversation)
	assert.Equal(t, "sess-5", page.Conversation.SessionID)
	assert.Equal(t, int64(6), page.TotalMessages)
	assert.True(t, page.HasMore)
	assert.Equal(t, page.Messages[0].ID, page.NextCursor)

	older, err := svc.GetHistory(context.Background(), "sess-5", 4, page.NextCursor)
	require.NoError(t, err)
	require.Len(t, older.Messages, 2)
	assert.False(t, older.HasMore)
}

func TestGetHistory_UnknownSession(t *testing.T) {
	svc := newTestService(newFakeConvRepo(), &fakeMsgRepo{}, &fakeFAQs{}, &fakeGenerator{}, newMemStore())

	_, err := svc.GetHistory(context.Background(), "missing", 10, 0)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDeleteConversation(t *testing.T) {
	convs := newFakeConvRepo()
	msgs := &fakeMsgRepo{}
	gen := &fakeGenerator{result: &llm.Result{Content: "ok", TokensUsed: 1}}
	store := newMemStore()
	svc := newTestService(convs, msgs, &fakeFAQs{}, gen, store)

	_, err := svc.SendMessage(context.Background(), SendInput{SessionID: "sess-6", Message: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteConversation(context.Background(), "sess-6"))
	assert.False(t, store.Exists(context.Background(), cache.HistoryKey(1)))

	err = svc.DeleteConversation(context.Background(), "sess-6")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
