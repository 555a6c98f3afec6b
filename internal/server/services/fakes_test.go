package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/dbx"
	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/events"
	"github.com/dmitrijs2005/repoboard/internal/server/github"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/boards"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/comments"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/images"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/pins"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/users"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/votes"
	"github.com/dmitrijs2005/repoboard/internal/server/repositories/widgets"
	wdefs "github.com/dmitrijs2005/repoboard/internal/widgets"
)

// --- database ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// memStore backs every repository with maps so service tests can run
// without SQL. Transactions are not isolated.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	boards   map[string]*models.Board
	widgets  map[string]*models.Widget
	votes    []*models.PollVote
	comments []*models.GuestbookComment
	pins     map[string]*models.MapPin
	images   map[string]*models.ImageAsset

	nextID int
	locks  int

	failWidgetDelete error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		tokens:  map[string]*models.RefreshToken{},
		boards:  map[string]*models.Board{},
		widgets: map[string]*models.Widget{},
		pins:    map[string]*models.MapPin{},
		images:  map[string]*models.ImageAsset{},
	}
}

func (s *memStore) addUser(id, login string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: id, Login: login, SealedToken: []byte("tok-" + id), Nonce: []byte("n")}
	s.users[id] = u
	return u
}

func (s *memStore) addBoard(id, repo string) *models.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := &models.Board{ID: id, Name: repo, RepoFullName: repo, CreatedAt: time.Now()}
	s.boards[id] = b
	return b
}

func (s *memStore) addWidget(w *models.Widget) *models.Widget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.Version == 0 {
		w.Version = 1
	}
	s.widgets[w.ID] = w
	return w
}

type memRepoManager struct{ s *memStore }

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *memRepoManager) Users(dbx.DBTX) users.Repository                 { return memUsers{m.s} }
func (m *memRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{m.s} }
func (m *memRepoManager) Boards(dbx.DBTX) boards.Repository               { return memBoards{m.s} }
func (m *memRepoManager) Widgets(dbx.DBTX) widgets.Repository             { return memWidgets{m.s} }
func (m *memRepoManager) Votes(dbx.DBTX) votes.Repository                 { return memVotes{m.s} }
func (m *memRepoManager) Comments(dbx.DBTX) comments.Repository           { return memComments{m.s} }
func (m *memRepoManager) Pins(dbx.DBTX) pins.Repository                   { return memPins{m.s} }
func (m *memRepoManager) Images(dbx.DBTX) images.Repository               { return memImages{m.s} }

type memUsers struct{ s *memStore }

func (r memUsers) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.GitHubID == u.GitHubID {
			u.ID = existing.ID
			u.CreatedAt = existing.CreatedAt
			r.s.users[u.ID] = u
			return u, nil
		}
	}
	r.s.nextID++
	u.ID = "user-" + strconv.Itoa(r.s.nextID)
	u.CreatedAt = time.Now()
	r.s.users[u.ID] = u
	return u, nil
}

func (r memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(ctx context.Context, userID, token string, expires time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, ExpiresAt: expires}
	return nil
}

func (r memTokens) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (r memTokens) Delete(ctx context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, token)
	return nil
}

func (r memTokens) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, t := range r.s.tokens {
		if t.Expired(now) {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}

type memBoards struct{ s *memStore }

func (r memBoards) Create(ctx context.Context, b *models.Board) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.boards {
		if existing.RepoFullName == b.RepoFullName {
			return common.ErrorAlreadyExists
		}
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.s.boards[b.ID] = b
	return nil
}

func (r memBoards) GetByID(ctx context.Context, id string) (*models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return b, nil
}

func (r memBoards) GetByRepo(ctx context.Context, repo string) (*models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.boards {
		if b.RepoFullName == repo {
			return b, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memBoards) List(ctx context.Context, limit, offset int) ([]*models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Board
	for _, b := range r.s.boards {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memBoards) Update(ctx context.Context, id, name, description string) (*models.Board, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	b.Name, b.Description = name, description
	return b, nil
}

type memWidgets struct{ s *memStore }

func (r memWidgets) Create(ctx context.Context, w *models.Widget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w.Version = 1
	r.s.widgets[w.ID] = w
	return nil
}

func (r memWidgets) GetByID(ctx context.Context, id string) (*models.Widget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.widgets[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *w
	return &cp, nil
}

func (r memWidgets) GetForUpdate(ctx context.Context, id string) (*models.Widget, error) {
	return r.GetByID(ctx, id)
}

func (r memWidgets) ListByBoard(ctx context.Context, boardID string) ([]*models.Widget, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Widget
	for _, w := range r.s.widgets {
		if w.BoardID == boardID {
			cp := *w
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memWidgets) Update(ctx context.Context, w *models.Widget) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.widgets[w.ID]; !ok {
		return common.ErrorNotFound
	}
	w.Version++
	w.UpdatedAt = time.Now()
	cp := *w
	r.s.widgets[w.ID] = &cp
	return nil
}

func (r memWidgets) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWidgetDelete != nil {
		return r.s.failWidgetDelete
	}
	if _, ok := r.s.widgets[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.widgets, id)
	return nil
}

type memVotes struct{ s *memStore }

func (r memVotes) Create(ctx context.Context, v *models.PollVote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.votes {
		if existing.WidgetID == v.WidgetID && existing.UserID == v.UserID {
			return common.ErrorAlreadyExists
		}
	}
	r.s.votes = append(r.s.votes, v)
	return nil
}

func (r memVotes) Find(ctx context.Context, widgetID, userID string) (*models.PollVote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.votes {
		if v.WidgetID == widgetID && v.UserID == userID {
			return v, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memVotes) Counts(ctx context.Context, widgetID string) (map[string]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[string]int64{}
	for _, v := range r.s.votes {
		if v.WidgetID == widgetID {
			out[v.Option]++
		}
	}
	return out, nil
}

func (r memVotes) DeleteByWidget(ctx context.Context, widgetID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*models.PollVote
	var n int64
	for _, v := range r.s.votes {
		if v.WidgetID == widgetID {
			n++
			continue
		}
		kept = append(kept, v)
	}
	r.s.votes = kept
	return n, nil
}

type memComments struct{ s *memStore }

func (r memComments) Create(ctx context.Context, c *models.GuestbookComment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.CreatedAt = time.Now().Add(time.Duration(len(r.s.comments)) * time.Millisecond)
	r.s.comments = append(r.s.comments, c)
	return nil
}

func (r memComments) GetByID(ctx context.Context, id string) (*models.GuestbookComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.comments {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memComments) List(ctx context.Context, widgetID string, before time.Time, limit int) ([]*models.GuestbookComment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.GuestbookComment
	for i := len(r.s.comments) - 1; i >= 0 && len(out) < limit; i-- {
		c := r.s.comments[i]
		if c.WidgetID != widgetID || (!before.IsZero() && !c.CreatedAt.Before(before)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r memComments) CountByAuthor(ctx context.Context, widgetID, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, c := range r.s.comments {
		if c.WidgetID == widgetID && c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r memComments) LockAuthor(ctx context.Context, widgetID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.locks++
	return nil
}

func (r memComments) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, c := range r.s.comments {
		if c.ID == id {
			r.s.comments = append(r.s.comments[:i], r.s.comments[i+1:]...)
			return nil
		}
	}
	return common.ErrorNotFound
}

func (r memComments) DeleteByWidget(ctx context.Context, widgetID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var kept []*models.GuestbookComment
	var n int64
	for _, c := range r.s.comments {
		if c.WidgetID == widgetID {
			n++
			continue
		}
		kept = append(kept, c)
	}
	r.s.comments = kept
	return n, nil
}

type memPins struct{ s *memStore }

func (r memPins) Upsert(ctx context.Context, p *models.MapPin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.UpdatedAt = time.Now()
	r.s.pins[p.WidgetID+"|"+p.UserID] = p
	return nil
}

func (r memPins) List(ctx context.Context, widgetID string) ([]*models.MapPin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.MapPin
	for _, p := range r.s.pins {
		if p.WidgetID == widgetID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r memPins) Delete(ctx context.Context, widgetID, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := widgetID + "|" + userID
	if _, ok := r.s.pins[k]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.pins, k)
	return nil
}

func (r memPins) DeleteByWidget(ctx context.Context, widgetID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, p := range r.s.pins {
		if p.WidgetID == widgetID {
			delete(r.s.pins, k)
			n++
		}
	}
	return n, nil
}

type memImages struct{ s *memStore }

func (r memImages) Upsert(ctx context.Context, a *models.ImageAsset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *a
	r.s.images[a.WidgetID] = &cp
	return nil
}

func (r memImages) Get(ctx context.Context, widgetID string) (*models.ImageAsset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.images[widgetID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memImages) MarkUploaded(ctx context.Context, widgetID, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.images[widgetID]
	if !ok || a.StorageKey != key {
		return common.ErrorNotFound
	}
	a.Status = models.ImageStatusUploaded
	return nil
}

func (r memImages) Delete(ctx context.Context, widgetID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.images, widgetID)
	return nil
}

// --- collaborators ---

// fakeGitHub grants write access to the users listed in writers, keyed by
// the token the fake sealer hands out ("tok-<userID>").
type fakeGitHub struct {
	GitHub

	identity *github.Identity
	authErr  error
	writers  map[string]bool
	stars    map[string]int
	repos    []*github.Repo
	calls    int
}

func (f *fakeGitHub) Authenticate(ctx context.Context, token string) (*github.Identity, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.identity, nil
}

func (f *fakeGitHub) CanWrite(ctx context.Context, cacheKey, token, repo string) (bool, error) {
	f.calls++
	return f.writers[token], nil
}

func (f *fakeGitHub) StarCount(ctx context.Context, repo string) (int, error) {
	n, ok := f.stars[repo]
	if !ok {
		return 0, common.ErrorNotFound
	}
	return n, nil
}

func (f *fakeGitHub) ListRepos(ctx context.Context, token string) ([]*github.Repo, error) {
	return f.repos, nil
}

// fakeSealer stores tokens in clear text.
type fakeSealer struct {
	openErr error
}

func (fakeSealer) Seal(plaintext string) ([]byte, []byte, error) {
	return []byte(plaintext), []byte("n"), nil
}

func (f fakeSealer) Open(ciphertext, nonce []byte) (string, error) {
	if f.openErr != nil {
		return "", f.openErr
	}
	return string(ciphertext), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Kind
	for _, e := range p.events {
		out = append(out, e.Kind)
	}
	return out
}

type fakeStorage struct {
	putErr    error
	deleted   []string
	deleteErr error
}

func (f *fakeStorage) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	return "https://s3/put/" + key, nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://s3/get/" + key, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return f.deleteErr
}

var errBoom = errors.New("boom")

// fixture wires every service to one memStore. User "writer" can push to
// every repository, user "reader" cannot.
type fixture struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *memStore
	gh    *fakeGitHub
	pub   *recordingPublisher
	hooks *HookRegistry

	access    *AccessService
	boards    *BoardService
	widgets   *WidgetService
	poll      *PollService
	guestbook *GuestbookService
	maps      *MapService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	store := newMemStore()
	store.addUser("writer", "wendy")
	store.addUser("reader", "rick")
	store.addBoard("b1", "acme/app")

	rm := &memRepoManager{s: store}
	gh := &fakeGitHub{writers: map[string]bool{"tok-writer": true}}
	pub := &recordingPublisher{}
	log := logging.Nop()
	hooks := NewHookRegistry(log)
	access := NewAccessService(db, rm, gh, fakeSealer{}, log)

	return &fixture{
		db:        db,
		mock:      mock,
		store:     store,
		gh:        gh,
		pub:       pub,
		hooks:     hooks,
		access:    access,
		boards:    NewBoardService(db, rm, access, pub, log),
		widgets:   NewWidgetService(db, rm, wdefs.Builtin(), access, hooks, pub, log),
		poll:      NewPollService(db, rm, pub, log),
		guestbook: NewGuestbookService(db, rm, 0, pub, log),
		maps:      NewMapService(db, rm, pub, log),
	}
}

func (f *fixture) rm() *memRepoManager {
	return &memRepoManager{s: f.store}
}
