// Package memrepo provides in-memory implementations of the repository
// interfaces for service and handler tests.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/repositories"
)

// Store holds every table; the repositories it hands out share one lock
type Store struct {
	mu sync.Mutex

	accounts     map[uuid.UUID]*models.Account
	communities  map[uuid.UUID]*models.Community
	publications map[uuid.UUID]*models.Publication
	comments     map[uuid.UUID]*models.Comment

	failures map[string]error
	clock    time.Time
}

// New creates an empty store
func New() *Store {
	return &Store{
		accounts:     make(map[uuid.UUID]*models.Account),
		communities:  make(map[uuid.UUID]*models.Community),
		publications: make(map[uuid.UUID]*models.Publication),
		comments:     make(map[uuid.UUID]*models.Comment),
		failures:     make(map[string]error),
		clock:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// FailOn makes the named operation ("accounts.Create", "comments.Delete", ...) return err
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

// tick returns strictly increasing timestamps so ordering is deterministic
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// Accounts returns the account repository
func (s *Store) Accounts() *Accounts { return &Accounts{s: s} }

// Communities returns the community repository
func (s *Store) Communities() *Communities { return &Communities{s: s} }

// Publications returns the publication repository
func (s *Store) Publications() *Publications { return &Publications{s: s} }

// Comments returns the comment repository
func (s *Store) Comments() *Comments { return &Comments{s: s} }

// PublicationCount returns the number of stored publications
func (s *Store) PublicationCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.publications)
}

// CommentCount returns the number of stored comments
func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

// SetFriends overwrites an account's friend list, e.g. to plant a half-edge
func (s *Store) SetFriends(id uuid.UUID, friends ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.Friends = append([]uuid.UUID(nil), friends...)
	}
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	return append([]uuid.UUID{}, ids...)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	c.Friends = cloneIDs(a.Friends)
	c.Communities = cloneIDs(a.Communities)
	c.Interests = append([]string{}, a.Interests...)
	if a.Avatar != nil {
		m := *a.Avatar
		c.Avatar = &m
	}
	return &c
}

// Accounts implements repositories.IAccountRepository
type Accounts struct{ s *Store }

var _ repositories.IAccountRepository = (*Accounts)(nil)

// Create inserts account
func (r *Accounts) Create(_ context.Context, account *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.Create"); err != nil {
		return err
	}

	email := strings.ToLower(account.Email)
	for _, a := range r.s.accounts {
		if a.Email == email {
			return repositories.ErrEmailTaken
		}
		if a.Handle == account.Handle {
			return repositories.ErrHandleTaken
		}
	}

	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	account.Email = email
	account.CreatedAt = r.s.tick()
	account.UpdatedAt = account.CreatedAt
	r.s.accounts[account.ID] = cloneAccount(account)
	return nil
}

// GetByID retrieves an account
func (r *Accounts) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.GetByID"); err != nil {
		return nil, err
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// GetByIDs retrieves the existing accounts among ids
func (r *Accounts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.GetByIDs"); err != nil {
		return nil, err
	}
	out := []*models.Account{}
	seen := make(map[uuid.UUID]bool)
	for _, id := range ids {
		if a, ok := r.s.accounts[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneAccount(a))
		}
	}
	return out, nil
}

// GetByEmail retrieves an account by email
func (r *Accounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range r.s.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

// EmailExists checks whether the email is registered
func (r *Accounts) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == repositories.ErrAccountNotFound {
		return false, nil
	}
	return err == nil, err
}

// HandleExists checks whether the handle is taken
func (r *Accounts) HandleExists(_ context.Context, handle string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Handle == handle {
			return true, nil
		}
	}
	return false, nil
}

// Delete hard-deletes an account
func (r *Accounts) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.accounts[id]; !ok {
		return repositories.ErrAccountNotFound
	}
	delete(r.s.accounts, id)
	return nil
}

// ConfirmByToken confirms the account holding token and clears the token
func (r *Accounts) ConfirmByToken(_ context.Context, token string) (uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.ConfirmationToken != nil && *a.ConfirmationToken == token {
			a.Confirmed = true
			a.ConfirmationToken = nil
			a.UpdatedAt = r.s.tick()
			return a.ID, nil
		}
	}
	return uuid.Nil, repositories.ErrTokenNotFound
}

func (r *Accounts) mutate(id uuid.UUID, fn func(a *models.Account) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if err := fn(a); err != nil {
		return err
	}
	a.UpdatedAt = r.s.tick()
	return nil
}

// SetActive toggles the active flag
func (r *Accounts) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	return r.mutate(id, func(a *models.Account) error {
		a.Active = active
		return nil
	})
}

// UpdatePassword stores a new hash
func (r *Accounts) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return r.mutate(id, func(a *models.Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
}

// UpdateProfile writes the mutable profile fields
func (r *Accounts) UpdateProfile(_ context.Context, account *models.Account) error {
	email := strings.ToLower(account.Email)
	r.s.mu.Lock()
	for id, other := range r.s.accounts {
		if id == account.ID {
			continue
		}
		if other.Email == email {
			r.s.mu.Unlock()
			return repositories.ErrEmailTaken
		}
		if other.Handle == account.Handle {
			r.s.mu.Unlock()
			return repositories.ErrHandleTaken
		}
	}
	r.s.mu.Unlock()

	updated := cloneAccount(account)
	return r.mutate(account.ID, func(a *models.Account) error {
		a.Name = updated.Name
		a.Handle = updated.Handle
		a.Email = email
		a.Phone = updated.Phone
		a.University = updated.University
		a.Career = updated.Career
		a.Bio = updated.Bio
		a.Interests = updated.Interests
		a.Avatar = updated.Avatar
		return nil
	})
}

// AddFriendPair links both accounts atomically
func (r *Accounts) AddFriendPair(_ context.Context, a, b uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.AddFriendPair"); err != nil {
		return err
	}
	first, ok1 := r.s.accounts[a]
	second, ok2 := r.s.accounts[b]
	if !ok1 || !ok2 {
		return repositories.ErrAccountNotFound
	}
	if !containsID(first.Friends, b) {
		first.Friends = append(first.Friends, b)
	}
	if !containsID(second.Friends, a) {
		second.Friends = append(second.Friends, a)
	}
	return nil
}

// RemoveFriendPair unlinks both accounts atomically
func (r *Accounts) RemoveFriendPair(_ context.Context, a, b uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.RemoveFriendPair"); err != nil {
		return err
	}
	if first, ok := r.s.accounts[a]; ok {
		first.Friends = removeID(first.Friends, b)
	}
	if second, ok := r.s.accounts[b]; ok {
		second.Friends = removeID(second.Friends, a)
	}
	return nil
}

// RemoveFriendRef drops one dangling reference
func (r *Accounts) RemoveFriendRef(_ context.Context, owner, friend uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.RemoveFriendRef"); err != nil {
		return err
	}
	if a, ok := r.s.accounts[owner]; ok {
		a.Friends = removeID(a.Friends, friend)
	}
	return nil
}

func cloneCommunity(c *models.Community) *models.Community {
	out := *c
	out.Members = cloneIDs(c.Members)
	return &out
}

// Communities implements repositories.ICommunityRepository
type Communities struct{ s *Store }

var _ repositories.ICommunityRepository = (*Communities)(nil)

// Create inserts a community
func (r *Communities) Create(_ context.Context, community *models.Community) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.communities {
		if c.Name == community.Name {
			return repositories.ErrCommunityNameTaken
		}
	}
	if community.ID == uuid.Nil {
		community.ID = uuid.New()
	}
	if community.Members == nil {
		community.Members = []uuid.UUID{}
	}
	community.CreatedAt = r.s.tick()
	community.UpdatedAt = community.CreatedAt
	r.s.communities[community.ID] = cloneCommunity(community)
	return nil
}

// GetByID retrieves a community
func (r *Communities) GetByID(_ context.Context, id uuid.UUID) (*models.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("communities.GetByID"); err != nil {
		return nil, err
	}
	c, ok := r.s.communities[id]
	if !ok {
		return nil, repositories.ErrCommunityNotFound
	}
	return cloneCommunity(c), nil
}

// GetByName retrieves a community by name
func (r *Communities) GetByName(_ context.Context, name string) (*models.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.communities {
		if c.Name == name {
			return cloneCommunity(c), nil
		}
	}
	return nil, repositories.ErrCommunityNotFound
}

// List returns every community ordered by name
func (r *Communities) List(_ context.Context) ([]*models.Community, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Community{}
	for _, c := range r.s.communities {
		out = append(out, cloneCommunity(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddMember links account and community in both records
func (r *Communities) AddMember(_ context.Context, communityID, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[communityID]
	if !ok {
		return repositories.ErrCommunityNotFound
	}
	a, ok := r.s.accounts[accountID]
	if !ok {
		return repositories.ErrAccountNotFound
	}
	if !containsID(c.Members, accountID) {
		c.Members = append(c.Members, accountID)
	}
	if !containsID(a.Communities, communityID) {
		a.Communities = append(a.Communities, communityID)
	}
	return nil
}

// RemoveMember unlinks account and community in both records
func (r *Communities) RemoveMember(_ context.Context, communityID, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.communities[communityID]
	if !ok {
		return repositories.ErrCommunityNotFound
	}
	c.Members = removeID(c.Members, accountID)
	if a, ok := r.s.accounts[accountID]; ok {
		a.Communities = removeID(a.Communities, communityID)
	}
	return nil
}

// Publications implements repositories.IPublicationRepository
type Publications struct{ s *Store }

var _ repositories.IPublicationRepository = (*Publications)(nil)

func clonePublication(p *models.Publication) *models.Publication {
	out := *p
	out.Author = nil
	if p.Media != nil {
		m := *p.Media
		out.Media = &m
	}
	return &out
}

// Create inserts a publication
func (r *Publications) Create(_ context.Context, publication *models.Publication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("publications.Create"); err != nil {
		return err
	}
	if publication.ID == uuid.Nil {
		publication.ID = uuid.New()
	}
	publication.CreatedAt = r.s.tick()
	r.s.publications[publication.ID] = clonePublication(publication)
	return nil
}

// GetByID retrieves a publication
func (r *Publications) GetByID(_ context.Context, id uuid.UUID) (*models.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.publications[id]
	if !ok {
		return nil, repositories.ErrPublicationNotFound
	}
	return clonePublication(p), nil
}

// ListByCommunity returns publications newest first
func (r *Publications) ListByCommunity(_ context.Context, communityID uuid.UUID) ([]*models.Publication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Publication{}
	for _, p := range r.s.publications {
		if p.CommunityID == communityID {
			out = append(out, clonePublication(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a publication and cascades to its comments
func (r *Publications) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("publications.Delete"); err != nil {
		return err
	}
	if _, ok := r.s.publications[id]; !ok {
		return repositories.ErrPublicationNotFound
	}
	delete(r.s.publications, id)
	for cid, c := range r.s.comments {
		if c.PublicationID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

// Comments implements repositories.ICommentRepository
type Comments struct{ s *Store }

var _ repositories.ICommentRepository = (*Comments)(nil)

func cloneComment(c *models.Comment) *models.Comment {
	out := *c
	out.Author = nil
	return &out
}

// Create inserts a comment
func (r *Comments) Create(_ context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("comments.Create"); err != nil {
		return err
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = r.s.tick()
	comment.UpdatedAt = comment.CreatedAt
	r.s.comments[comment.ID] = cloneComment(comment)
	return nil
}

// GetByID retrieves a comment
func (r *Comments) GetByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

// ListByPublication returns comments oldest first
func (r *Comments) ListByPublication(_ context.Context, publicationID uuid.UUID) ([]*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range r.s.comments {
		if c.PublicationID == publicationID {
			out = append(out, cloneComment(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UpdateText replaces the text of a comment
func (r *Comments) UpdateText(_ context.Context, id uuid.UUID, text string) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	c.Text = text
	c.UpdatedAt = r.s.tick()
	return cloneComment(c), nil
}

// Delete removes a comment
func (r *Comments) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}
