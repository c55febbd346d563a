package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sell-it/server/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stand-ins for the Mongo repositories. They implement the same
// contracts the real repos document, including check-and-clear redemption and
// the pair-uniqueness constraint, so service behaviour can be exercised
// without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
}

func (f *fakeUserRepo) add(u *models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, user.Email) || strings.EqualFold(existing.Username, user.Username) {
			return nil, fmt.Errorf("email or username already taken: %w", models.ErrConflict)
		}
	}
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUserRepo) UpdateUser(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if name, ok := set["name"].(string); ok {
		u.Name = name
	}
	u.UpdatedAt = time.Now()
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SetPhone(ctx context.Context, id primitive.ObjectID, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u.Phone = phone
	u.PhoneVerified = false
	u.PhoneCodeHash = ""
	u.PhoneCodeExpiresAt = nil
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) SetEmailToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if u.EmailVerified {
		return models.ErrAlreadyVerified
	}
	u.EmailTokenHash = tokenHash
	u.EmailTokenExpiresAt = &expires
	return nil
}

func (f *fakeUserRepo) RedeemEmailToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.EmailTokenHash != tokenHash || tokenHash == "" {
			continue
		}
		expired := u.EmailTokenExpiresAt == nil || !u.EmailTokenExpiresAt.After(now)
		u.EmailTokenHash = ""
		u.EmailTokenExpiresAt = nil
		if expired {
			return nil, models.ErrExpired
		}
		u.EmailVerified = true
		copied := *u
		return &copied, nil
	}
	return nil, models.ErrInvalidToken
}

func (f *fakeUserRepo) SetPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrNotFound
	}
	if u.PhoneVerified {
		return models.ErrAlreadyVerified
	}
	u.PhoneCodeHash = codeHash
	u.PhoneCodeExpiresAt = &expires
	return nil
}

func (f *fakeUserRepo) RedeemPhoneCode(ctx context.Context, id primitive.ObjectID, codeHash string, now time.Time) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok || u.PhoneCodeHash == "" || u.PhoneCodeHash != codeHash {
		return nil, models.ErrInvalidCode
	}
	expired := u.PhoneCodeExpiresAt == nil || !u.PhoneCodeExpiresAt.After(now)
	u.PhoneCodeHash = ""
	u.PhoneCodeExpiresAt = nil
	if expired {
		return nil, models.ErrExpired
	}
	u.PhoneVerified = true
	copied := *u
	return &copied, nil
}

type fakeListingRepo struct {
	mu       sync.Mutex
	listings map[primitive.ObjectID]*models.Listing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[primitive.ObjectID]*models.Listing{}}
}

func (f *fakeListingRepo) add(l *models.Listing) *models.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	f.listings[l.ID] = l
	return l
}

func (f *fakeListingRepo) CreateListing(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	listing.ID = primitive.NewObjectID()
	f.listings[listing.ID] = listing
	return listing, nil
}

func (f *fakeListingRepo) GetListingByID(ctx context.Context, id primitive.ObjectID) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id.Hex(), models.ErrNotFound)
	}
	copied := *l
	return &copied, nil
}

func (f *fakeListingRepo) ListListings(ctx context.Context, query models.ListingQuery, offset, limit int) ([]*models.Listing, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Listing{}
	for _, l := range f.listings {
		copied := *l
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (f *fakeListingRepo) ListListingsByOwner(ctx context.Context, ownerID primitive.ObjectID, offset, limit int) ([]*models.Listing, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Listing{}
	for _, l := range f.listings {
		if l.Owner.ID == ownerID {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, len(out), nil
}

func (f *fakeListingRepo) UpdateListing(ctx context.Context, id primitive.ObjectID, set map[string]interface{}) (*models.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.listings[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if title, ok := set["title"].(string); ok {
		l.Title = title
	}
	if price, ok := set["price"].(float64); ok {
		l.Price = price
	}
	l.UpdatedAt = time.Now()
	copied := *l
	return &copied, nil
}

func (f *fakeListingRepo) DeleteListing(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.listings[id]; !ok {
		return models.ErrNotFound
	}
	delete(f.listings, id)
	return nil
}

func (f *fakeListingRepo) ExpandOwner(ctx context.Context, listing *models.Listing) error {
	listing.Owner.Profile = &models.PublicProfile{ID: listing.Owner.ID}
	return nil
}

type pairKey struct {
	user    primitive.ObjectID
	listing primitive.ObjectID
}

type fakeFavouriteRepo struct {
	mu    sync.Mutex
	pairs map[pairKey]*models.Favourite
}

func newFakeFavouriteRepo() *fakeFavouriteRepo {
	return &fakeFavouriteRepo{pairs: map[pairKey]*models.Favourite{}}
}

func (f *fakeFavouriteRepo) AddFavourite(ctx context.Context, fav *models.Favourite) (*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{fav.UserID, fav.ListingID}
	if _, ok := f.pairs[key]; ok {
		return nil, fmt.Errorf("listing already favourited: %w", models.ErrConflict)
	}
	fav.ID = primitive.NewObjectID()
	f.pairs[key] = fav
	return fav, nil
}

func (f *fakeFavouriteRepo) RemoveFavourite(ctx context.Context, userID, listingID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := pairKey{userID, listingID}
	if _, ok := f.pairs[key]; !ok {
		return models.ErrNotFound
	}
	delete(f.pairs, key)
	return nil
}

func (f *fakeFavouriteRepo) ListFavouritesByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Favourite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Favourite{}
	for _, fav := range f.pairs {
		if fav.UserID == userID {
			copied := *fav
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeFavouriteRepo) ListFavouriteIDsByUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	favs, _ := f.ListFavouritesByUser(ctx, userID)
	ids := []primitive.ObjectID{}
	for _, fav := range favs {
		ids = append(ids, fav.ListingID)
	}
	return ids, nil
}

type fakeImageStore struct {
	mu       sync.Mutex
	delay    time.Duration
	failWith error
	uploaded []string
	deleted  []string
}

func (f *fakeImageStore) Upload(ctx context.Context, images []string, folder string) ([]string, []string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.failWith != nil {
		return nil, nil, f.failWith
	}
	urls := make([]string, 0, len(images))
	ids := make([]string, 0, len(images))
	for i, img := range images {
		urls = append(urls, "https://img.test/"+img)
		ids = append(ids, fmt.Sprintf("%s/%s-%d", folder, img, i))
	}
	f.mu.Lock()
	f.uploaded = append(f.uploaded, ids...)
	f.mu.Unlock()
	return urls, ids, nil
}

func (f *fakeImageStore) Delete(ctx context.Context, publicIDs []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicIDs...)
}

func (f *fakeImageStore) uploadedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.uploaded...)
}

func (f *fakeImageStore) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []string // tokens in send order
	to       []string
	failWith error
}

func (m *fakeMailer) SendVerificationEmail(ctx context.Context, to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.to = append(m.to, to)
	m.sent = append(m.sent, token)
	return nil
}

func (m *fakeMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1]
}

type fakeSMS struct {
	mu       sync.Mutex
	codes    []string
	failWith error
}

func (s *fakeSMS) SendVerificationCode(ctx context.Context, to, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.codes = append(s.codes, code)
	return nil
}

func (s *fakeSMS) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return ""
	}
	return s.codes[len(s.codes)-1]
}

var errDeliveryDown = errors.New("delivery unavailable")
