package usecase

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/account-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/account-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/security"
	"github.com/vasapolrittideah/account-api/shared/storage"
	"github.com/vasapolrittideah/account-api/shared/validation"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[bson.ObjectID]*model.User

	getErr    error
	createErr error
	creates   int
	updates   int
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[bson.ObjectID]*model.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = bson.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, repository.ErrDuplicateEmail
		}
	}
	r.creates++
	user.ID = bson.NewObjectID()
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return user, nil
}

func (r *fakeUserRepo) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}
	u, ok := r.users[oid]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email })
}

func (r *fakeUserRepo) GetUserByEmailFold(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, id string, p repository.UpdateUserParams) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrUserNotFound
	}
	u, ok := r.users[oid]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	r.updates++
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Gender != nil {
		u.Gender = *p.Gender
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.IsAddressComplete != nil {
		u.IsAddressComplete = *p.IsAddressComplete
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdatePasswordByEmailFold(_ context.Context, email, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			r.updates++
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	oid, _ := bson.ObjectIDFromHex(id)
	if u, ok := r.users[oid]; ok {
		now := time.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (r *fakeUserRepo) byEmail(email string) *model.User {
	u, _ := r.GetUserByEmail(context.Background(), email)
	return u
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, email)
	return "<id@test>", nil
}

var codePattern = regexp.MustCompile(`>(\d+)</h1>`)

// lastCode extracts the code from the most recent email.
func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		t.Fatal("no email sent")
	}
	match := codePattern.FindStringSubmatch(m.sent[len(m.sent)-1].HTMLBody)
	if match == nil {
		t.Fatal("no code in email body")
	}
	return match[1]
}

type fakeLedger struct {
	mu   sync.Mutex
	seen map[string]time.Time
	err  error
}

func (l *fakeLedger) Redeem(_ context.Context, signature string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return l.err
	}
	if l.seen == nil {
		l.seen = map[string]time.Time{}
	}
	if _, ok := l.seen[signature]; ok {
		return repository.ErrAlreadyRedeemed
	}
	l.seen[signature] = expiresAt
	return nil
}

type fakeBlobStore struct {
	uploaded []string
	deleted  []string
	err      error
}

func (s *fakeBlobStore) Upload(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	s.uploaded = append(s.uploaded, name)
	return "https://cdn.test/avatars/" + name, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, url string) error {
	if s.err != nil {
		return s.err
	}
	if !strings.HasPrefix(url, "https://cdn.test/avatars/") {
		return storage.ErrForeignURL
	}
	s.deleted = append(s.deleted, url)
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestHasher() *security.PasswordHasher {
	return security.NewPasswordHasher(security.PasswordHasherConfig{TimeCost: 1, MemoryCost: 1024, Parallelism: 1})
}

func newTestChallenger(t *testing.T, clock *fakeClock, ledger repository.OTPRedemptionRepository) *OTPChallenger {
	t.Helper()
	signer, err := security.NewSecretSigner("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	c := NewOTPChallenger(signer, ledger)
	c.now = clock.Now
	return c
}

var testPasswordPolicy = PasswordPolicy{MinLength: 8, MaxLength: 14}

func testEmailPolicy(domains ...string) EmailPolicy {
	return AllowDomains(validation.New(), domains...)
}

var errBoom = errors.New("boom")

// flakyHasher fails Hash while err is set.
type flakyHasher struct {
	*security.PasswordHasher
	err error
}

func (h *flakyHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return h.PasswordHasher.Hash(password)
}
