//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-forum-notifier/internal/config"
	"telegram-forum-notifier/internal/domain"
	"telegram-forum-notifier/internal/domain/model"
	"telegram-forum-notifier/internal/domain/ports/adapter"
	"telegram-forum-notifier/internal/domain/ports/repository"
	"telegram-forum-notifier/internal/infra/i18n"
	"telegram-forum-notifier/internal/usecase"
)

const testBaseURL = "https://forum.example.com"

// =============================
// Adapters
// =============================

// ---- Mock TelegramBot ----

type MockTelegramBot struct {
	mu       sync.Mutex
	nextID   int
	Sent     []adapter.OutboundMessage
	Answers  []string // callback answers, "<id>|<text>"
	Edits    []adapter.KeyboardEdit
	Webhooks []string

	SendMessageFunc func(ctx context.Context, msg adapter.OutboundMessage) (int, error)
	SetupErr        error
}

var _ adapter.TelegramBot = (*MockTelegramBot)(nil)

func NewMockTelegramBot() *MockTelegramBot { return &MockTelegramBot{nextID: 100} }

func (m *MockTelegramBot) SendMessage(ctx context.Context, msg adapter.OutboundMessage) (int, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Sent = append(m.Sent, msg)
	return m.nextID, nil
}

func (m *MockTelegramBot) AnswerCallback(ctx context.Context, callbackID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answers = append(m.Answers, callbackID+"|"+text)
	return nil
}

func (m *MockTelegramBot) EditKeyboard(ctx context.Context, edit adapter.KeyboardEdit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, edit)
	return nil
}

func (m *MockTelegramBot) SetupWebhook(ctx context.Context, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Webhooks = append(m.Webhooks, secret)
	return m.SetupErr
}

// Calls counts every outbound request.
func (m *MockTelegramBot) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent) + len(m.Answers) + len(m.Edits) + len(m.Webhooks)
}

// ---- Mock JobQueue ----

// MockJobQueue keeps tasks until RunAll is called.
type MockJobQueue struct {
	mu    sync.Mutex
	Names []string
	tasks []func(ctx context.Context) error
	Err   error
}

var _ adapter.JobQueue = (*MockJobQueue)(nil)

func (q *MockJobQueue) Enqueue(name string, fn func(ctx context.Context) error) (string, error) {
	if q.Err != nil {
		return "", q.Err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.Names = append(q.Names, name)
	q.tasks = append(q.tasks, fn)
	return fmt.Sprintf("job-%d", len(q.tasks)), nil
}

func (q *MockJobQueue) RunAll(ctx context.Context) []error {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	var errs []error
	for _, fn := range tasks {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// =============================
// Repositories
// =============================

// ---- Settings ----

type MockSettingsRepo struct {
	mu      sync.Mutex
	st      *model.Settings
	version int
	Saves   int

	// Interleave runs once inside Modify, after fn and before the write,
	// standing in for a concurrent writer.
	Interleave func(r *MockSettingsRepo)
}

var _ repository.SettingsRepository = (*MockSettingsRepo)(nil)

func NewMockSettingsRepo(st *model.Settings) *MockSettingsRepo {
	r := &MockSettingsRepo{}
	if st != nil {
		cp := *st
		r.st = &cp
	}
	return r
}

func (r *MockSettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st == nil {
		return nil, domain.ErrNotFound
	}
	cp := *r.st
	return &cp, nil
}

func (r *MockSettingsRepo) Save(ctx context.Context, s *model.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.st = &cp
	r.version++
	r.Saves++
	return nil
}

func (r *MockSettingsRepo) SaveIfAbsent(ctx context.Context, s *model.Settings) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st != nil {
		return false, nil
	}
	cp := *s
	r.st = &cp
	r.version++
	r.Saves++
	return true, nil
}

func (r *MockSettingsRepo) Modify(ctx context.Context, fn func(s *model.Settings, found bool) error) (*model.Settings, error) {
	for {
		r.mu.Lock()
		seen := r.version
		cur := model.Settings{}
		found := r.st != nil
		if found {
			cur = *r.st
		}
		r.mu.Unlock()

		if err := fn(&cur, found); err != nil {
			return nil, err
		}

		if hook := r.Interleave; hook != nil {
			r.Interleave = nil
			hook(r)
		}

		r.mu.Lock()
		if r.version != seen {
			r.mu.Unlock()
			continue
		}
		cp := cur
		r.st = &cp
		r.version++
		r.Saves++
		r.mu.Unlock()
		return &cur, nil
	}
}

// ---- Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	seq   int
	Locks int
}

var _ repository.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker { return &MockLocker{held: map[string]string{}} }

func (l *MockLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[name]; ok {
		return "", domain.ErrLocked
	}
	l.seq++
	token := fmt.Sprintf("tok-%d", l.seq)
	l.held[name] = token
	l.Locks++
	return token, nil
}

func (l *MockLocker) Unlock(ctx context.Context, name, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] == token {
		delete(l.held, name)
	}
	return nil
}

// ---- Users and chat bindings ----

type MockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User
	seq   int64
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo { return &MockUserRepo{users: map[int64]*model.User{}} }

func (r *MockUserRepo) Create(ctx context.Context, tx repository.Tx, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.seq++
	u := &model.User{ID: r.seq, Username: username}
	r.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type MockChatBindingRepo struct {
	mu     sync.Mutex
	byUser map[int64]string
	Err    error
}

var _ repository.ChatBindingRepository = (*MockChatBindingRepo)(nil)

func NewMockChatBindingRepo() *MockChatBindingRepo {
	return &MockChatBindingRepo{byUser: map[int64]string{}}
}

func (r *MockChatBindingRepo) Save(ctx context.Context, tx repository.Tx, b *model.ChatBinding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[b.UserID] = b.ChatID
	return nil
}

func (r *MockChatBindingRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID int64) (*model.ChatBinding, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &model.ChatBinding{UserID: userID, ChatID: chat}, nil
}

func (r *MockChatBindingRepo) FindUserIDByChatID(ctx context.Context, tx repository.Tx, chatID string) (int64, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, 1)
	for id, chat := range r.byUser {
		if chat == chatID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, domain.ErrNotFound
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[0], nil
}

func (r *MockChatBindingRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

// ---- Message links ----

type MockMessageLinkRepo struct {
	mu    sync.Mutex
	links map[int]int64
}

var _ repository.MessageLinkRepository = (*MockMessageLinkRepo)(nil)

func NewMockMessageLinkRepo() *MockMessageLinkRepo {
	return &MockMessageLinkRepo{links: map[int]int64{}}
}

func (r *MockMessageLinkRepo) Save(ctx context.Context, messageID int, postID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[messageID] = postID
	return nil
}

func (r *MockMessageLinkRepo) FindPostID(ctx context.Context, messageID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.links[messageID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return id, nil
}

// ---- Topics, posts and post actions ----

type MockTopicRepo struct {
	mu     sync.Mutex
	topics map[int64]*model.Topic
	seq    int64
}

var _ repository.TopicRepository = (*MockTopicRepo)(nil)

func NewMockTopicRepo() *MockTopicRepo { return &MockTopicRepo{topics: map[int64]*model.Topic{}} }

func (r *MockTopicRepo) Create(ctx context.Context, tx repository.Tx, title, slug string) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	t := &model.Topic{ID: r.seq, Title: title, Slug: slug}
	r.topics[t.ID] = t
	cp := *t
	return &cp, nil
}

func (r *MockTopicRepo) FindByIDForUpdate(ctx context.Context, tx repository.Tx, id int64) (*model.Topic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.topics[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *MockTopicRepo) Close(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics[id].Closed = true
}

type MockPostRepo struct {
	mu     sync.Mutex
	topics *MockTopicRepo
	posts  map[int64]*model.Post
	seq    int64
}

var _ repository.PostRepository = (*MockPostRepo)(nil)

func NewMockPostRepo(topics *MockTopicRepo) *MockPostRepo {
	return &MockPostRepo{topics: topics, posts: map[int64]*model.Post{}}
}

func (r *MockPostRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MockPostRepo) FindByTopicAndNumber(ctx context.Context, tx repository.Tx, topicID int64, postNumber int) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.posts {
		if p.TopicID == topicID && p.PostNumber == postNumber {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockPostRepo) Create(ctx context.Context, tx repository.Tx, userID int64, np *model.NewPost) (*model.Post, error) {
	topic, err := r.topics.FindByIDForUpdate(ctx, tx, np.TopicID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	number := 0
	for _, p := range r.posts {
		if p.TopicID == np.TopicID && p.PostNumber > number {
			number = p.PostNumber
		}
	}
	r.seq++
	p := &model.Post{
		ID:         r.seq,
		TopicID:    np.TopicID,
		TopicSlug:  topic.Slug,
		PostNumber: number + 1,
		UserID:     userID,
		Raw:        np.Raw,
		CreatedAt:  time.Now(),
	}
	r.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *MockPostRepo) AdjustLikeCount(ctx context.Context, tx repository.Tx, postID int64, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return domain.ErrNotFound
	}
	p.LikeCount += delta
	if p.LikeCount < 0 {
		p.LikeCount = 0
	}
	return nil
}

type MockPostActionRepo struct {
	mu      sync.Mutex
	actions map[int64]*model.PostAction
	seq     int64
	Err     error
}

var _ repository.PostActionRepository = (*MockPostActionRepo)(nil)

func NewMockPostActionRepo() *MockPostActionRepo {
	return &MockPostActionRepo{actions: map[int64]*model.PostAction{}}
}

func (r *MockPostActionRepo) active(userID, postID int64, t model.PostActionType) *model.PostAction {
	for _, a := range r.actions {
		if a.UserID == userID && a.PostID == postID && a.ActionType == t && a.DeletedAt == nil {
			return a
		}
	}
	return nil
}

func (r *MockPostActionRepo) CountByUser(ctx context.Context, tx repository.Tx, userID, postID int64, t model.PostActionType) (int, error) {
	if r.Err != nil {
		return 0, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active(userID, postID, t) != nil {
		return 1, nil
	}
	return 0, nil
}

func (r *MockPostActionRepo) Create(ctx context.Context, tx repository.Tx, a *model.PostAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active(a.UserID, a.PostID, a.ActionType) != nil {
		return domain.ErrAlreadyActed
	}
	r.seq++
	a.ID = r.seq
	a.CreatedAt = time.Now()
	cp := *a
	r.actions[a.ID] = &cp
	return nil
}

func (r *MockPostActionRepo) FindActive(ctx context.Context, tx repository.Tx, userID, postID int64, t model.PostActionType) (*model.PostAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.active(userID, postID, t)
	if a == nil {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MockPostActionRepo) Remove(ctx context.Context, tx repository.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actions[id]
	if !ok || a.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	a.DeletedAt = &now
	return nil
}

// ---- Transaction manager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Shared fixtures
// =============================

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		panic(err)
	}
	return tr
}

func testForumConfig() config.ForumConfig {
	return config.ForumConfig{MinPostLength: 5, MaxPostLength: 200, UndoActionWindow: 10 * time.Minute}
}

// relay wires the use cases over in-memory repositories.
type relay struct {
	users    *MockUserRepo
	bindings *MockChatBindingRepo
	links    *MockMessageLinkRepo
	topics   *MockTopicRepo
	posts    *MockPostRepo
	actions  *MockPostActionRepo
	settings *MockSettingsRepo
	jobs     *MockJobQueue
	bot      *MockTelegramBot

	formatter  *usecase.MessageFormatter
	keyboard   *usecase.KeyboardBuilder
	settingsUC usecase.SettingsUseCase
	chatLinks  usecase.ChatLinkUseCase
	forum      usecase.ForumUseCase
	notifier   usecase.NotifierUseCase
	dispatcher usecase.DispatcherUseCase
}

func enabledSettings() *model.Settings {
	return &model.Settings{Enabled: true, AccessToken: "123:abc", Secret: "s3cret", EnableAllTypes: true}
}

func newRelay(st *model.Settings) *relay {
	log := newTestLogger()
	r := &relay{
		users:    NewMockUserRepo(),
		bindings: NewMockChatBindingRepo(),
		links:    NewMockMessageLinkRepo(),
		topics:   NewMockTopicRepo(),
		actions:  NewMockPostActionRepo(),
		settings: NewMockSettingsRepo(st),
		jobs:     &MockJobQueue{},
		bot:      NewMockTelegramBot(),
	}
	r.posts = NewMockPostRepo(r.topics)

	settingsUC := usecase.NewSettingsUseCase(r.settings, NewMockLocker(), r.jobs, model.Settings{}, log)
	settingsUC.SetBot(r.bot)
	r.settingsUC = settingsUC

	r.formatter = usecase.NewMessageFormatter(newTestTranslator(), "Example Forum", testBaseURL)
	r.keyboard = usecase.NewKeyboardBuilder(r.actions, r.formatter, testBaseURL)
	r.chatLinks = usecase.NewChatLinkUseCase(r.users, r.bindings, r.links, log)
	r.forum = usecase.NewForumUseCase(r.users, r.topics, r.posts, r.actions, &MockTxManager{}, testForumConfig(), log)
	r.notifier = usecase.NewNotifierUseCase(r.settingsUC, r.chatLinks, r.forum, r.keyboard, r.formatter, r.bot, r.jobs, log)
	r.dispatcher = usecase.NewDispatcherUseCase(r.settingsUC, r.chatLinks, r.forum, r.keyboard, r.formatter, r.bot, testBaseURL, log)
	return r
}

// seedPost creates a topic with one post by a fresh author and returns it.
func (r *relay) seedPost(title, slug string) *model.Post {
	ctx := context.Background()
	author, _ := r.users.Create(ctx, nil, "author-"+slug)
	topic, _ := r.topics.Create(ctx, nil, title, slug)
	p, err := r.posts.Create(ctx, nil, author.ID, &model.NewPost{Raw: "first post body", TopicID: topic.ID})
	if err != nil {
		panic(err)
	}
	return p
}

// bindUser creates a user bound to chatID.
func (r *relay) bindUser(username string, chatID int64) *model.User {
	ctx := context.Background()
	u, err := r.users.Create(ctx, nil, username)
	if err != nil {
		panic(err)
	}
	if err := r.chatLinks.BindChat(ctx, u.ID, fmt.Sprint(chatID)); err != nil {
		panic(err)
	}
	return u
}
