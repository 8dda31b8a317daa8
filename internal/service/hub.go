package service

import (
	"context"
	"errors"
	"sync"

	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
	"github.com/yourname/bloomhealth/internal/provider"
	"github.com/yourname/bloomhealth/internal/storage"
)

var (
	ErrNoSession     = errors.New("no active health session")
	ErrNotAuthorized = errors.New("health data access not authorized")
)

// SessionObserver is told when sessions come and go.
type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

type HubOptions struct {
	Policies   health.PolicyTable
	Collection string
	Recorder   health.Recorder
	Observer   SessionObserver
}

// Hub keeps one aggregator per user. A session starts when the user's
// health view is activated and ends when it is torn down.
type Hub struct {
	source   provider.Source
	store    storage.DocumentStore
	opts     HubOptions
	logger   internal.Logger
	mu       sync.Mutex
	sessions map[string]*health.Aggregator
}

func NewHub(source provider.Source, store storage.DocumentStore, logger internal.Logger, opts HubOptions) *Hub {
	if opts.Policies == nil {
		opts.Policies = health.DefaultPolicies()
	}
	return &Hub{
		source:   source,
		store:    store,
		opts:     opts,
		logger:   logger,
		sessions: make(map[string]*health.Aggregator),
	}
}

func (h *Hub) newAggregator(userID string) *health.Aggregator {
	opts := []health.Option{
		health.WithPolicies(h.opts.Policies),
		health.WithCollection(h.opts.Collection),
		health.WithLogger(h.logger),
	}
	if h.opts.Recorder != nil {
		opts = append(opts, health.WithRecorder(h.opts.Recorder))
	}
	return health.NewAggregator(h.source.For(userID), h.store, opts...)
}

// Activate returns the user's aggregator, creating it on first use, and
// requests authorization again. A granted request starts a fetch cycle.
func (h *Hub) Activate(ctx context.Context, user *internal.User) (*health.Aggregator, bool) {
	h.mu.Lock()
	agg, ok := h.sessions[user.ID]
	if !ok {
		agg = h.newAggregator(user.ID)
		h.sessions[user.ID] = agg
		if h.opts.Observer != nil {
			h.opts.Observer.SessionOpened()
		}
		h.logger.Infof("service: health session opened for %s", user.ID)
	}
	h.mu.Unlock()

	return agg, agg.RequestAuthorization(ctx)
}

func (h *Hub) Get(userID string) (*health.Aggregator, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	agg, ok := h.sessions[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return agg, nil
}

// Refresh starts a new fetch cycle for the user's session.
func (h *Hub) Refresh(userID string) (*health.Aggregator, error) {
	agg, err := h.Get(userID)
	if err != nil {
		return nil, err
	}
	if !agg.FetchAll() {
		return agg, ErrNotAuthorized
	}
	return agg, nil
}

// Push stores the user's current snapshot and returns the new document id.
func (h *Hub) Push(ctx context.Context, userID string) (string, error) {
	agg, err := h.Get(userID)
	if err != nil {
		return "", err
	}
	return agg.PushSnapshot(ctx), nil
}

// Deactivate tears down the user's session. It reports whether one existed.
func (h *Hub) Deactivate(userID string) bool {
	h.mu.Lock()
	agg, ok := h.sessions[userID]
	delete(h.sessions, userID)
	h.mu.Unlock()
	if !ok {
		return false
	}

	agg.Close()
	if h.opts.Observer != nil {
		h.opts.Observer.SessionClosed()
	}
	h.logger.Infof("service: health session closed for %s", userID)
	return true
}

// Each calls fn for every session. fn runs without the hub lock held.
func (h *Hub) Each(fn func(userID string, agg *health.Aggregator)) {
	h.mu.Lock()
	sessions := make(map[string]*health.Aggregator, len(h.sessions))
	for id, agg := range h.sessions {
		sessions[id] = agg
	}
	h.mu.Unlock()

	for id, agg := range sessions {
		fn(id, agg)
	}
}

// RefreshAll starts a fetch cycle on every authorized session and returns
// how many were started.
func (h *Hub) RefreshAll() int {
	started := 0
	h.Each(func(userID string, agg *health.Aggregator) {
		if agg.FetchAll() {
			started++
		}
	})
	return started
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.Deactivate(id)
	}
}
