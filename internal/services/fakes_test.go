package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"eventcalendar/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeEventRepo is an in-memory EventRepository for tests. It stores copies
// so callers cannot mutate persisted state behind its back.
type fakeEventRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Event
	writes  int
	err     error // returned by every call when set
	lastQ   domain.EventQuery
	clock   time.Time
	onWrite func(e *domain.Event) // runs before Update takes the lock
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:  make(map[string]*domain.Event),
		clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fakeEventRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeEventRepo) seed(e *domain.Event) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt, e.UpdatedAt = f.tick(), f.clock
	f.byID[e.ID] = e.Clone()
	return e
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = f.tick(), f.clock
	f.byID[e.ID] = e.Clone()
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.byID[id]; ok {
		return e.Clone(), nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = q
	out := make([]*domain.Event, 0)
	for _, e := range f.byID {
		if q.Matches(e) {
			c := e.Clone()
			if q.OmitAttendees {
				c.Attendees = nil
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if f.onWrite != nil {
		f.onWrite(e)
	}
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	f.writes++
	c := e.Clone()
	c.CreatedBy = stored.CreatedBy
	c.CreatedAt = stored.CreatedAt
	c.UpdatedAt = f.tick()
	e.UpdatedAt = c.UpdatedAt
	f.byID[e.ID] = c
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	f.writes++
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) stored(id string) *domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Clone()
}

// fakeImageStore records uploads and deletions.
type fakeImageStore struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
}

func (f *fakeImageStore) Upload(ctx context.Context, name string, img *domain.ImageUpload) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := "https://img.example/" + uuid.NewString() + "-" + img.Filename
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImageStore) Owns(url string) bool {
	return strings.HasPrefix(url, "https://img.example/")
}

func (f *fakeImageStore) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	err       error
	hasEvents map[string]bool // ids Delete refuses
	updates   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	all := make([]*domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	start := min(params.Offset(), len(all))
	end := min(start+params.Limit(), len(all))
	return all[start:end], len(all), nil
}

func (f *fakeUserRepo) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.ResetTokenHash != "" && u.ResetTokenHash == tokenHash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	f.updates++
	u.UpdatedAt = u.UpdatedAt.Add(time.Second)
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	if f.hasEvents[id] {
		return domain.ErrUserHasEvents
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUserRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	var st domain.UserStats
	for _, u := range f.byID {
		st.Total++
		if u.IsActive {
			st.Active++
		} else {
			st.Inactive++
		}
		if u.Role == domain.RoleAdmin {
			st.Admins++
		} else {
			st.Users++
		}
	}
	return &st, nil
}

func (f *fakeUserRepo) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) { return "hash-" + password, nil }

func (fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(u *domain.User) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + u.ID, nil
}

// fakeTokenVerifier maps token strings to claims.
type fakeTokenVerifier map[string]domain.TokenClaims

func (f fakeTokenVerifier) Verify(token string) (domain.TokenClaims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return domain.TokenClaims{}, errors.New("bad signature")
}

// fakeResetTokens hands out predictable tokens and hashes them with an "h:" prefix.
type fakeResetTokens struct {
	next int
}

func (f *fakeResetTokens) New() (string, string, error) {
	f.next++
	token := "reset-" + strconv.Itoa(f.next)
	return token, f.Hash(token), nil
}

func (f *fakeResetTokens) Hash(token string) string { return "h:" + token }

// fakeEmailService records welcome and reset emails.
type fakeEmailService struct {
	sent   []*domain.WelcomeEmailData
	resets []*domain.PasswordResetEmailData
	err    error
}

func (f *fakeEmailService) SendPasswordReset(ctx context.Context, data *domain.PasswordResetEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.resets = append(f.resets, data)
	return nil
}

func (f *fakeEmailService) SendWelcome(ctx context.Context, data *domain.WelcomeEmailData) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}
