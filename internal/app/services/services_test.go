package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/uniconnect/api/internal/app/auth"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/repositories/memrepo"
	"github.com/uniconnect/api/internal/pkg/email"
	"github.com/uniconnect/api/internal/pkg/filestorage"
	"github.com/uniconnect/api/internal/pkg/websocket"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type publishedEvent struct {
	channel websocket.Channel
	payload interface{}
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(channel websocket.Channel, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{channel: channel, payload: payload})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

// revocation is one RevokeMember call
type revocation struct {
	communityID uuid.UUID
	accountID   uuid.UUID
}

// recordingRevoker remembers which subscriptions were revoked
type recordingRevoker struct {
	mu    sync.Mutex
	calls []revocation
}

func (r *recordingRevoker) RevokeMember(communityID, accountID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, revocation{communityID: communityID, accountID: accountID})
	return 1
}

func (r *recordingRevoker) all() []revocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]revocation(nil), r.calls...)
}

// fakeAssets is an in-memory asset store
type fakeAssets struct {
	mu        sync.Mutex
	stored    map[string]bool
	uploadErr error
	deleteErr error
	seq       int
}

func newFakeAssets() *fakeAssets {
	return &fakeAssets{stored: make(map[string]bool)}
}

func (f *fakeAssets) Upload(_ context.Context, fh *multipart.FileHeader, folder string) (*filestorage.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.seq++
	id := folder + "/" + uuid.NewString() + "_" + fh.Filename
	f.stored[id] = true
	return &filestorage.Asset{URL: "http://cdn.test/" + id, AssetID: id}, nil
}

func (f *fakeAssets) Delete(_ context.Context, assetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.stored, assetID)
	return nil
}

func (f *fakeAssets) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

// fakeMailer records confirmations and returns a fixed result
type fakeMailer struct {
	mu     sync.Mutex
	result email.Result
	sent   []string
	tokens []string
}

func (m *fakeMailer) Send(_ context.Context, to, _, _ string) email.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.result
}

func (m *fakeMailer) SendConfirmation(_ context.Context, to, _, token string) email.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.tokens = append(m.tokens, token)
	return m.result
}

// fakeTokens issues predictable credentials
type fakeTokens struct {
	err error
}

func (f fakeTokens) Issue(accountID uuid.UUID, role string) (string, int, error) {
	if f.err != nil {
		return "", 0, f.err
	}
	return "token-" + accountID.String() + "-" + role, 3600, nil
}

// plainHasher avoids bcrypt cost in tests
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) bool { return hash == "hashed:"+password }

var errBoom = errors.New("boom")

type fixture struct {
	store     *memrepo.Store
	publisher *recordingPublisher
	assets    *fakeAssets
	revoker   *recordingRevoker
	oracle    *auth.AuthorizationService
}

func newFixture() *fixture {
	store := memrepo.New()
	return &fixture{
		store:     store,
		publisher: &recordingPublisher{},
		assets:    newFakeAssets(),
		revoker:   &recordingRevoker{},
		oracle:    auth.NewAuthorizationService(store.Communities(), store.Accounts()),
	}
}

func (f *fixture) account(t *testing.T, handle string) *models.Account {
	t.Helper()
	a := &models.Account{
		Name:         handle,
		Handle:       handle,
		Email:        handle + "@puce.edu.ec",
		PasswordHash: "hashed:Secret123",
		Role:         models.RoleStudent,
		Confirmed:    true,
		Active:       true,
	}
	require.NoError(t, f.store.Accounts().Create(context.Background(), a))
	return a
}

func (f *fixture) community(t *testing.T, name string, members ...*models.Account) *models.Community {
	t.Helper()
	ctx := context.Background()
	c := &models.Community{Name: name}
	require.NoError(t, f.store.Communities().Create(ctx, c))
	for _, m := range members {
		require.NoError(t, f.store.Communities().AddMember(ctx, c.ID, m.ID))
	}
	return c
}

func (f *fixture) publications() PublicationService {
	return NewPublicationService(f.store.Publications(), f.store.Accounts(), f.oracle, f.assets, f.publisher, zerolog.Nop())
}

func (f *fixture) communities() CommunityService {
	return NewCommunityService(f.store.Communities(), f.revoker, zerolog.Nop())
}

func (f *fixture) comments() CommentService {
	return NewCommentService(f.store.Comments(), f.store.Publications(), f.store.Accounts(), f.oracle, f.publisher, zerolog.Nop())
}

func newFileHeader(t *testing.T, field, filename, contentType string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field][0]
}
