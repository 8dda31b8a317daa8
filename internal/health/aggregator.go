package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/storage"
)

type State int

const (
	StateUnauthorized State = iota
	StateIdle
	StateFetching
)

var stateNames = [...]string{"unauthorized", "idle", "fetching"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// Status describes where the aggregator is in its lifecycle. Pending counts
// fetches started but not yet reported back.
type Status struct {
	State      State `json:"state"`
	Authorized bool  `json:"authorized"`
	Cycles     int   `json:"cycles"`
	Pending    int   `json:"pending"`
}

// Fetch and push outcomes reported to the Recorder.
const (
	OutcomeLive        = "live"
	OutcomePlaceholder = "placeholder"
	OutcomeEmpty       = "empty"
	OutcomeError       = "error"
	OutcomeOK          = "ok"
)

type Recorder interface {
	FetchCompleted(kind Kind, outcome string)
	PushCompleted(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) FetchCompleted(Kind, string) {}
func (nopRecorder) PushCompleted(string)        {}

type Option func(*Aggregator)

func WithPolicies(t PolicyTable) Option {
	return func(a *Aggregator) { a.policies = t.Clone() }
}

func WithCollection(collection string) Option {
	return func(a *Aggregator) {
		if collection != "" {
			a.collection = collection
		}
	}
}

func WithLogger(l internal.Logger) Option {
	return func(a *Aggregator) { a.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

type op int

const (
	opAuthorize op = iota
	opFetch
	opFetched
)

type message struct {
	op      op
	granted bool
	apply   func(*internal.HealthSnapshot)
	reply   chan bool
}

// Aggregator collects one user's metrics from a Provider into an immutable
// HealthSnapshot. A single owner goroutine applies every change; fetches run
// in their own goroutines and only report results to it through the mailbox.
type Aggregator struct {
	provider   Provider
	store      storage.DocumentStore
	policies   PolicyTable
	collection string
	logger     internal.Logger
	recorder   Recorder

	mailbox   chan message
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	mu       sync.RWMutex
	snapshot internal.HealthSnapshot
	status   Status
	subs     map[int]func(internal.HealthSnapshot)
	nextSub  int
}

func NewAggregator(provider Provider, store storage.DocumentStore, opts ...Option) *Aggregator {
	a := &Aggregator{
		provider:   provider,
		store:      store,
		policies:   DefaultPolicies(),
		collection: DefaultCollection,
		logger:     internal.NewNopLogger(),
		recorder:   nopRecorder{},
		mailbox:    make(chan message, 64),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		status:     Status{State: StateUnauthorized},
		subs:       make(map[int]func(internal.HealthSnapshot)),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.store == nil {
		a.store = storage.NopStore{}
	}
	go a.run()
	return a
}

func (a *Aggregator) run() {
	defer close(a.stopped)

	snap := internal.HealthSnapshot{}
	status := Status{State: StateUnauthorized}

	for {
		select {
		case <-a.done:
			return
		case m := <-a.mailbox:
			changed := false
			switch m.op {
			case opAuthorize:
				status.Authorized = m.granted
				snap.Authorized = m.granted
				status.State = stateFor(status)
				a.publish(snap, status, true)
				m.reply <- true
				continue
			case opFetch:
				if !status.Authorized {
					m.reply <- false
					continue
				}
				status.Cycles++
				kinds := AllKinds()
				status.Pending += len(kinds)
				status.State = StateFetching
				// FetchAll must not return before the new cycle is visible in Status.
				a.publish(snap, status, false)
				for _, k := range kinds {
					go a.fetch(k, a.policies.For(k))
				}
				m.reply <- true
				continue
			case opFetched:
				status.Pending--
				if m.apply != nil {
					m.apply(&snap)
					changed = true
				}
				status.State = stateFor(status)
			}
			a.publish(snap, status, changed)
		}
	}
}

func stateFor(s Status) State {
	switch {
	case !s.Authorized:
		return StateUnauthorized
	case s.Pending > 0:
		return StateFetching
	default:
		return StateIdle
	}
}

func (a *Aggregator) publish(snap internal.HealthSnapshot, status Status, changed bool) {
	var subs []func(internal.HealthSnapshot)
	a.mu.Lock()
	a.status = status
	if changed {
		a.snapshot = snap
		subs = make([]func(internal.HealthSnapshot), 0, len(a.subs))
		for _, fn := range a.subs {
			subs = append(subs, fn)
		}
	}
	a.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (a *Aggregator) send(m message) bool {
	select {
	case <-a.done:
		return false
	default:
	}
	select {
	case a.mailbox <- m:
		return true
	case <-a.done:
		return false
	}
}

// RequestAuthorization asks the provider for read access to every metric
// kind. A provider error counts as a denial and is only logged. The result is
// visible in Status and Snapshot when it returns. When access is granted one
// fetch cycle is started.
func (a *Aggregator) RequestAuthorization(ctx context.Context) bool {
	granted, err := a.provider.RequestAuthorization(ctx, AllKinds())
	if err != nil {
		a.logger.Warnf("health: authorization request failed: %v", err)
		granted = false
	}
	reply := make(chan bool, 1)
	if !a.send(message{op: opAuthorize, granted: granted, reply: reply}) {
		return false
	}
	select {
	case <-reply:
	case <-a.stopped:
		return false
	}
	if granted {
		a.FetchAll()
	}
	return granted
}

// FetchAll starts one independent fetch per metric kind and returns without
// waiting for any of them. It reports false when the aggregator is not
// authorized or already closed.
func (a *Aggregator) FetchAll() bool {
	reply := make(chan bool, 1)
	if !a.send(message{op: opFetch, reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-a.stopped:
		return false
	}
}

func (a *Aggregator) fetch(kind Kind, policy Policy) {
	apply, outcome := a.resolve(context.Background(), kind, policy)
	a.recorder.FetchCompleted(kind, outcome)
	a.send(message{op: opFetched, apply: apply})
}

// resolve produces the snapshot update for one kind. A nil update leaves the
// field at its previous value.
func (a *Aggregator) resolve(ctx context.Context, kind Kind, policy Policy) (func(*internal.HealthSnapshot), string) {
	switch kind {
	case KindBloodType:
		bt, err := a.provider.BloodType(ctx)
		if err != nil {
			a.logger.Warnf("health: error fetching blood type: %v", err)
			return nil, OutcomeError
		}
		return func(s *internal.HealthSnapshot) { s.BloodType = bt }, OutcomeLive
	case KindBiologicalSex:
		sex, err := a.provider.BiologicalSex(ctx)
		if err != nil {
			a.logger.Warnf("health: error fetching biological sex: %v", err)
			return nil, OutcomeError
		}
		return func(s *internal.HealthSnapshot) { s.BiologicalSex = sex }, OutcomeLive
	case KindDateOfBirth:
		dob, err := a.provider.DateOfBirth(ctx)
		if err != nil {
			a.logger.Warnf("health: error fetching date of birth: %v", err)
			return nil, OutcomeError
		}
		if dob == nil {
			return nil, OutcomeEmpty
		}
		t := *dob
		return func(s *internal.HealthSnapshot) { s.DateOfBirth = &t }, OutcomeLive
	}

	if policy.Mode == Placeholder {
		return setQuantity(kind, policy.Value), OutcomePlaceholder
	}

	sample, err := a.provider.QueryLatest(ctx, kind)
	if err != nil {
		a.logger.Warnf("health: error querying %s: %v", kind, err)
		return nil, OutcomeError
	}
	if sample == nil {
		return nil, OutcomeEmpty
	}
	v, err := Convert(sample.Quantity, kind.DisplayUnit())
	if err != nil {
		a.logger.Warnf("health: error converting %s sample: %v", kind, err)
		return nil, OutcomeError
	}
	return setQuantity(kind, v), OutcomeLive
}

func setQuantity(kind Kind, v float64) func(*internal.HealthSnapshot) {
	return func(s *internal.HealthSnapshot) {
		switch kind {
		case KindHeartRate:
			s.HeartRate = v
		case KindStepCount:
			s.StepCount = int(v)
		case KindHeight:
			s.Height = v
		case KindBodyMass:
			s.BodyMass = v
		case KindBodyMassIndex:
			s.BodyMassIndex = v
		case KindLeanBodyMass:
			s.LeanBodyMass = v
		case KindBodyFatPercentage:
			s.BodyFatPercentage = v
		case KindWaistCircumference:
			s.WaistCircumference = v
		case KindSystolicBloodPressure:
			s.SystolicBloodPressure = v
		case KindDiastolicBloodPressure:
			s.DiastolicBloodPressure = v
		case KindBloodGlucose:
			s.BloodGlucose = v
		}
	}
}

func (a *Aggregator) Snapshot() internal.HealthSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

func (a *Aggregator) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

func (a *Aggregator) Policies() PolicyTable {
	return a.policies.Clone()
}

// Subscribe registers fn to receive every new snapshot. fn runs on the
// aggregator's owner goroutine and must not block or call back into the
// aggregator synchronously.
func (a *Aggregator) Subscribe(fn func(internal.HealthSnapshot)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

// PushSnapshot writes the current snapshot to the document store under a new
// id and returns that id without waiting for the write. Failures are logged.
func (a *Aggregator) PushSnapshot(ctx context.Context) string {
	id := uuid.NewString()
	record := ToRecord(a.Snapshot())
	ctx = context.WithoutCancel(ctx)

	go func() {
		start := time.Now()
		if err := a.store.Put(ctx, a.collection, id, record); err != nil {
			a.logger.Errorf("health: error adding health data %s to %s: %v", id, a.collection, err)
			a.recorder.PushCompleted(OutcomeError)
			return
		}
		a.logger.Infof("health: health data %s added to %s in %s", id, a.collection, time.Since(start))
		a.recorder.PushCompleted(OutcomeOK)
	}()
	return id
}

// Done is closed once the aggregator has stopped.
func (a *Aggregator) Done() <-chan struct{} {
	return a.stopped
}

// Close stops the owner goroutine. Fetches still in flight drop their
// results.
func (a *Aggregator) Close() {
	a.closeOnce.Do(func() {
		close(a.done)
	})
	<-a.stopped
}
