package provider

import (
	"context"
	"sync"
	"time"

	"github.com/yourname/bloomhealth/internal"
	"github.com/yourname/bloomhealth/internal/health"
)

// Profile holds the characteristics a user has entered once.
type Profile struct {
	BloodType     internal.BloodType     `json:"bloodType"`
	BiologicalSex internal.BiologicalSex `json:"biologicalSex"`
	DateOfBirth   *time.Time             `json:"dateOfBirth,omitempty"`
}

type userData struct {
	denied  bool
	latest  map[health.Kind]health.Sample
	profile Profile
}

// Memory is an in-process sample source. Samples are pushed in through Add
// and only the most recent one per kind (by end date) is kept.
type Memory struct {
	mu     sync.RWMutex
	users  map[string]*userData
	logger internal.Logger
}

func NewMemory(logger internal.Logger) *Memory {
	return &Memory{users: make(map[string]*userData), logger: logger}
}

func (m *Memory) user(userID string) *userData {
	u, ok := m.users[userID]
	if !ok {
		u = &userData{latest: make(map[health.Kind]health.Sample)}
		m.users[userID] = u
	}
	return u
}

// SetAuthorization controls the answer to the next authorization request.
// Users are granted access unless denied here.
func (m *Memory) SetAuthorization(userID string, granted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user(userID).denied = !granted
}

// Add records a sample. It replaces the stored one for its kind unless the
// stored sample ended later.
func (m *Memory) Add(userID string, s health.Sample) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.user(userID)
	if prev, ok := u.latest[s.Kind]; ok && prev.End.After(s.End) {
		m.logger.Debugf("provider: ignoring older %s sample for %s", s.Kind, userID)
		return
	}
	u.latest[s.Kind] = s
}

func (m *Memory) SetProfile(userID string, p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user(userID).profile = p
}

func (m *Memory) For(userID string) health.Provider {
	return &memoryProvider{memory: m, userID: userID}
}

var _ Source = (*Memory)(nil)

type memoryProvider struct {
	memory *Memory
	userID string
}

func (p *memoryProvider) RequestAuthorization(ctx context.Context, kinds []health.Kind) (bool, error) {
	p.memory.mu.RLock()
	defer p.memory.mu.RUnlock()
	u, ok := p.memory.users[p.userID]
	return !ok || !u.denied, nil
}

func (p *memoryProvider) QueryLatest(ctx context.Context, kind health.Kind) (*health.Sample, error) {
	p.memory.mu.RLock()
	defer p.memory.mu.RUnlock()
	u, ok := p.memory.users[p.userID]
	if !ok {
		return nil, nil
	}
	s, ok := u.latest[kind]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (p *memoryProvider) profile() Profile {
	p.memory.mu.RLock()
	defer p.memory.mu.RUnlock()
	if u, ok := p.memory.users[p.userID]; ok {
		return u.profile
	}
	return Profile{}
}

func (p *memoryProvider) BloodType(ctx context.Context) (internal.BloodType, error) {
	return p.profile().BloodType, nil
}

func (p *memoryProvider) BiologicalSex(ctx context.Context) (internal.BiologicalSex, error) {
	return p.profile().BiologicalSex, nil
}

func (p *memoryProvider) DateOfBirth(ctx context.Context) (*time.Time, error) {
	dob := p.profile().DateOfBirth
	if dob == nil {
		return nil, nil
	}
	t := *dob
	return &t, nil
}
