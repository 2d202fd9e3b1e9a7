package store

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/lomedigitalschool/kotiz-web/internal/models"
	"github.com/lomedigitalschool/kotiz-web/internal/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sentinel errors returned to programmatic callers. Remote and persistence
// failures never surface as errors: they are absorbed into the LastError
// state field, which is the whole resilience contract of this store.
var ErrInvalidAmount = errors.New("contribution amount must be positive")

// RemoteClient is the contract the store consumes from the sync boundary.
type RemoteClient interface {
	FetchCagnottes(ctx context.Context) ([]models.Cagnotte, error)
}

// Store is the canonical in-memory home of cagnottes and contributions. It
// is dependency-injected (no ambient singleton) and serializes every
// operation behind one mutex, so multi-slot writes are observably atomic to
// Snapshot readers.
type Store struct {
	mu       sync.Mutex
	slots    storage.SlotStore
	remote   RemoteClient
	cfg      models.StoreConfig
	state    models.State
	handlers []func(Event)
}

// New builds a store and warms its state from the durable slots, so a
// process restart reproduces the last observed collections.
func New(ctx context.Context, slots storage.SlotStore, remote RemoteClient, cfg models.StoreConfig) *Store {
	s := &Store{
		slots:  slots,
		remote: remote,
		cfg:    cfg,
		state: models.State{
			Cagnottes:         []models.Cagnotte{},
			Contributions:     []models.Contribution{},
			UserContributions: []models.Contribution{},
		},
	}

	slots.Load(ctx, storage.SlotCagnottes, &s.state.Cagnottes)
	slots.Load(ctx, storage.SlotContributions, &s.state.Contributions)
	var current models.Cagnotte
	if slots.Load(ctx, storage.SlotCagnotte, &current) {
		s.state.Cagnotte = &current
	}

	zap.L().Info("Cagnotte store initialized from durable storage",
		zap.Int("cagnottes", len(s.state.Cagnottes)),
		zap.Int("contributions", len(s.state.Contributions)))
	return s
}

// Subscribe registers a handler for domain events. Handlers run after the
// triggering mutation commits; a panicking handler is logged and ignored.
func (s *Store) Subscribe(h func(Event)) {
	s.mu.Lock()
	s.handlers = append(s.handlers, h)
	s.mu.Unlock()
}

// Snapshot returns a deep copy of the reactive state.
func (s *Store) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetCagnottes replaces the collection, de-duplicating by id with the first
// occurrence winning in insertion order. Entries are otherwise passed through
// unfiltered.
func (s *Store) SetCagnottes(ctx context.Context, cagnottes []models.Cagnotte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unique := dedupeById(cagnottes)
	s.state.Cagnottes = unique
	s.persist(ctx, storage.SlotCagnottes, unique)
}

// FetchAllCagnottes refreshes the collection from the remote API. On any
// failure (no token, network error, non-2xx) it falls back to the last
// persisted snapshot and records the failure in LastError: previously-seen
// data is never lost to a transient failure.
func (s *Store) FetchAllCagnottes(ctx context.Context) {
	s.mu.Lock()
	s.state.Loading = true
	s.state.LastError = ""
	s.mu.Unlock()

	var fetched []models.Cagnotte
	var err error
	if s.remote == nil {
		err = errors.New("remote API not configured")
	} else {
		fetched, err = s.remote.FetchCagnottes(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Loading = false

	if err != nil {
		var cached []models.Cagnotte
		if s.slots.Load(ctx, storage.SlotCagnottes, &cached) {
			s.state.Cagnottes = cached
		}
		s.state.LastError = err.Error()
		zap.L().Warn("Cagnotte refresh failed, serving cached snapshot",
			zap.Int("cached", len(s.state.Cagnottes)),
			zap.Error(err))
		return
	}

	unique := dedupeById(fetched)
	s.state.Cagnottes = unique
	s.persist(ctx, storage.SlotCagnottes, unique)
	zap.L().Info("Cagnottes refreshed from remote API", zap.Int("count", len(unique)))
}

// FetchCagnotte selects a cagnotte from the already-loaded collection (no
// network call) and scopes Contributions to it. Returns nil when the id is
// unknown; absence is state, not an error.
func (s *Store) FetchCagnotte(ctx context.Context, id string) *models.Cagnotte {
	s.mu.Lock()
	defer s.mu.Unlock()

	var selected *models.Cagnotte
	for i := range s.state.Cagnottes {
		if s.state.Cagnottes[i].Id == id {
			c := s.state.Cagnottes[i].Clone()
			selected = &c
			break
		}
	}

	var all []models.Contribution
	s.slots.Load(ctx, storage.SlotContributions, &all)
	scoped := make([]models.Contribution, 0, len(all))
	for _, contribution := range all {
		if contribution.CagnotteId == id {
			scoped = append(scoped, contribution)
		}
	}

	s.state.Cagnotte = selected
	s.state.Contributions = scoped

	if selected == nil {
		return nil
	}
	out := selected.Clone()
	return &out
}

// AddCagnotte appends a new pool. Missing fields get their creation defaults:
// a position-based id, active status, public visibility, the fallback
// creator, and a zero collected amount.
func (s *Store) AddCagnotte(ctx context.Context, cagnotte models.Cagnotte) models.Cagnotte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cagnotte.Id == "" {
		cagnotte.Id = strconv.Itoa(len(s.state.Cagnottes) + 1)
	}
	cagnotte.Normalize(s.cfg.DefaultCreatorId)
	if cagnotte.CreatedAt.IsZero() {
		cagnotte.CreatedAt = time.Now().UTC()
	}

	s.state.Cagnottes = append(s.state.Cagnottes, cagnotte)
	s.persist(ctx, storage.SlotCagnottes, s.state.Cagnottes)

	// Track pools created on this client in the legacy shadow list.
	var local []models.Cagnotte
	s.slots.Load(ctx, storage.SlotLocalCagnottes, &local)
	local = append(local, cagnotte)
	s.persist(ctx, storage.SlotLocalCagnottes, local)

	zap.L().Info("Cagnotte added",
		zap.String("id", cagnotte.Id),
		zap.String("title", cagnotte.Title),
		zap.String("goal", cagnotte.GoalAmount.String()),
		zap.String("currency", cagnotte.Currency))
	return cagnotte
}

// UpdateCagnotte replaces the document with the same id; no partial merge.
// When the replaced entity is the currently-selected one, the singular slot
// follows. Closing a cagnotte emits CagnotteClosed.
func (s *Store) UpdateCagnotte(ctx context.Context, updated models.Cagnotte) {
	var closed *models.Cagnotte

	s.mu.Lock()
	for i := range s.state.Cagnottes {
		if s.state.Cagnottes[i].Id != updated.Id {
			continue
		}
		if s.state.Cagnottes[i].Status != models.StatusClosed && updated.Status == models.StatusClosed {
			c := updated.Clone()
			closed = &c
		}
		s.state.Cagnottes[i] = updated
	}
	s.persist(ctx, storage.SlotCagnottes, s.state.Cagnottes)

	if s.state.Cagnotte != nil && s.state.Cagnotte.Id == updated.Id {
		current := updated.Clone()
		s.state.Cagnotte = &current
		s.persist(ctx, storage.SlotCagnotte, s.state.Cagnotte)
	}
	s.mu.Unlock()

	if closed != nil {
		s.emit(CagnotteClosed{Cagnotte: *closed})
	}
}

// DeleteCagnotte removes a pool and cascades to every contribution that
// references it, across the whole persisted collection. Deleting an unknown
// id is a no-op.
func (s *Store) DeleteCagnotte(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.state.Cagnottes)
	remaining := make([]models.Cagnotte, 0, before)
	for _, c := range s.state.Cagnottes {
		if c.Id != id {
			remaining = append(remaining, c)
		}
	}
	s.state.Cagnottes = remaining
	s.persist(ctx, storage.SlotCagnottes, remaining)

	var all []models.Contribution
	s.slots.Load(ctx, storage.SlotContributions, &all)
	kept := make([]models.Contribution, 0, len(all))
	for _, contribution := range all {
		if contribution.CagnotteId != id {
			kept = append(kept, contribution)
		}
	}
	s.persist(ctx, storage.SlotContributions, kept)

	scoped := make([]models.Contribution, 0, len(s.state.Contributions))
	for _, contribution := range s.state.Contributions {
		if contribution.CagnotteId != id {
			scoped = append(scoped, contribution)
		}
	}
	s.state.Contributions = scoped

	if s.state.Cagnotte != nil && s.state.Cagnotte.Id == id {
		s.state.Cagnotte = nil
		if err := s.slots.Delete(ctx, storage.SlotCagnotte); err != nil {
			zap.L().Error("Failed to delete current cagnotte slot", zap.Error(err))
		}
	}

	// Prune the locally-created shadow list as well.
	var local []models.Cagnotte
	if s.slots.Load(ctx, storage.SlotLocalCagnottes, &local) {
		localKept := make([]models.Cagnotte, 0, len(local))
		for _, c := range local {
			if c.Id != id {
				localKept = append(localKept, c)
			}
		}
		s.persist(ctx, storage.SlotLocalCagnottes, localKept)
	}

	zap.L().Info("Cagnotte deleted",
		zap.String("id", id),
		zap.Bool("existed", len(remaining) != before),
		zap.Int("contributions_removed", len(all)-len(kept)))
}

// FetchUserContributions resolves the contributions that carry a user id.
// The remote listing endpoint is not part of the contract yet, so this reads
// the durable collection.
func (s *Store) FetchUserContributions(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Contribution
	s.slots.Load(ctx, storage.SlotContributions, &all)

	mine := make([]models.Contribution, 0, len(all))
	for _, contribution := range all {
		if contribution.UserId != nil {
			mine = append(mine, contribution)
		}
	}
	s.state.UserContributions = mine
}

// AddContribution records a donation: it denormalizes the parent title onto
// the record, appends it to the durable collection, bumps the parent's
// collected amount, appends the contributor display name, persists the three
// affected slots, and emits ContributionAdded. All of it commits as one state
// transition.
func (s *Store) AddContribution(ctx context.Context, contribution models.Contribution) (models.Contribution, error) {
	if contribution.Amount.LessThanOrEqual(decimal.Zero) {
		return contribution, ErrInvalidAmount
	}

	s.mu.Lock()

	parentIdx := -1
	for i := range s.state.Cagnottes {
		if s.state.Cagnottes[i].Id == contribution.CagnotteId {
			parentIdx = i
			break
		}
	}

	if contribution.Id == "" {
		contribution.Id = uuid.New().String()
	}
	if contribution.CreatedAt.IsZero() {
		contribution.CreatedAt = time.Now().UTC()
	}
	// Snapshot the title as it is now; later edits must not rewrite history.
	if parentIdx >= 0 {
		contribution.CagnotteTitle = s.state.Cagnottes[parentIdx].Title
		if contribution.Currency == "" {
			contribution.Currency = s.state.Cagnottes[parentIdx].Currency
		}
	} else {
		contribution.CagnotteTitle = models.UnknownCagnotteTitle
	}

	var all []models.Contribution
	s.slots.Load(ctx, storage.SlotContributions, &all)
	all = append(all, contribution)
	s.persist(ctx, storage.SlotContributions, all)
	s.state.Contributions = append(s.state.Contributions, contribution)

	var updatedParent *models.Cagnotte
	if parentIdx >= 0 {
		parent := &s.state.Cagnottes[parentIdx]
		parent.CurrentAmount = parent.CurrentAmount.Add(contribution.Amount)
		parent.Contributors = append(parent.Contributors, contribution.DisplayName())

		if s.state.Cagnotte != nil && s.state.Cagnotte.Id == parent.Id {
			current := parent.Clone()
			s.state.Cagnotte = &current
			s.persist(ctx, storage.SlotCagnotte, s.state.Cagnotte)
		}
		s.persist(ctx, storage.SlotCagnottes, s.state.Cagnottes)

		updated := parent.Clone()
		updatedParent = &updated
	}

	s.mu.Unlock()

	zap.L().Info("Contribution added",
		zap.String("id", contribution.Id),
		zap.String("cagnotte_id", contribution.CagnotteId),
		zap.String("amount", contribution.Amount.String()),
		zap.Bool("anonymous", contribution.Anonymous),
		zap.Bool("cagnotte_found", updatedParent != nil))

	s.emit(ContributionAdded{Contribution: contribution, Cagnotte: updatedParent})
	return contribution, nil
}

// Reset clears every durable slot and returns the state to its initial empty
// shape. Unconditional and total; used on logout.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.slots.Clear(ctx); err != nil {
		zap.L().Error("Failed to clear durable storage on reset", zap.Error(err))
	}
	s.state = models.State{
		Cagnottes:         []models.Cagnotte{},
		Contributions:     []models.Contribution{},
		UserContributions: []models.Contribution{},
	}
	zap.L().Info("Store reset")
}

func (s *Store) emit(e Event) {
	s.mu.Lock()
	handlers := append([]func(Event){}, s.handlers...)
	s.mu.Unlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					zap.L().Error("Event handler panicked", zap.Any("panic", r))
				}
			}()
			h(e)
		}()
	}
}

// persist logs instead of failing: durable writes are best-effort from the
// mutation's point of view, per the store's no-propagation policy.
func (s *Store) persist(ctx context.Context, key string, value any) {
	if err := s.slots.Save(ctx, key, value); err != nil {
		zap.L().Error("Failed to persist slot", zap.String("key", key), zap.Error(err))
	}
}

func dedupeById(in []models.Cagnotte) []models.Cagnotte {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Cagnotte, 0, len(in))
	for _, c := range in {
		if _, dup := seen[c.Id]; dup {
			continue
		}
		seen[c.Id] = struct{}{}
		out = append(out, c)
	}
	return out
}
