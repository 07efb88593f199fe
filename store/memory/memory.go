// Package memory provides in-memory catalog and cache implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/loan-projection/catalog"
)

// =============================================================================
// MEMORY CATALOG - In-memory implementation (for testing/dev)
// =============================================================================

type Catalog struct {
	mu         sync.RWMutex
	colleges   map[string]catalog.College
	salaries   map[salaryKey]catalog.Salary
	stateTaxes map[string]catalog.StateTax
}

type salaryKey struct {
	Major string
	State string
}

func NewCatalog() *Catalog {
	return &Catalog{
		colleges:   make(map[string]catalog.College),
		salaries:   make(map[salaryKey]catalog.Salary),
		stateTaxes: make(map[string]catalog.StateTax),
	}
}

// SaveCollege upserts a college by normalized name.
func (m *Catalog) SaveCollege(_ context.Context, c catalog.College) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.State = catalog.NormalizeState(c.State)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.colleges[catalog.NormalizeCollege(c.Name)] = c
	return nil
}

// SaveSalary upserts a salary by (major, state).
func (m *Catalog) SaveSalary(_ context.Context, s catalog.Salary) error {
	if err := s.Validate(); err != nil {
		return err
	}
	s.State = catalog.NormalizeState(s.State)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.salaries[salaryKey{catalog.NormalizeMajor(s.Major), s.State}] = s
	return nil
}

// SaveStateTax upserts a state tax rate.
func (m *Catalog) SaveStateTax(_ context.Context, t catalog.StateTax) error {
	if err := t.Validate(); err != nil {
		return err
	}
	t.State = catalog.NormalizeState(t.State)
	if t.Name == "" {
		t.Name = catalog.States[t.State]
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stateTaxes[t.State] = t
	return nil
}

func (m *Catalog) GetCollege(_ context.Context, name string) (*catalog.College, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.colleges[catalog.NormalizeCollege(name)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Catalog) SearchColleges(_ context.Context, f catalog.Filter) ([]catalog.College, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []catalog.College
	for _, c := range m.colleges {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *Catalog) GetSalary(_ context.Context, major, state string) (*catalog.Salary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.salaries[salaryKey{catalog.NormalizeMajor(major), catalog.NormalizeState(state)}]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// ListMajors returns every major with a national or state salary, sorted.
func (m *Catalog) ListMajors(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]string)
	for k, s := range m.salaries {
		if _, ok := seen[k.Major]; !ok || s.IsNational() {
			seen[k.Major] = s.Major
		}
	}

	majors := make([]string, 0, len(seen))
	for _, name := range seen {
		majors = append(majors, name)
	}
	sort.Strings(majors)
	return majors, nil
}

func (m *Catalog) GetStateTax(_ context.Context, state string) (*catalog.StateTax, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.stateTaxes[catalog.NormalizeState(state)]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Catalog) ListStateTaxes(_ context.Context) ([]catalog.StateTax, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]catalog.StateTax, 0, len(m.stateTaxes))
	for _, t := range m.stateTaxes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out, nil
}

// Reset removes every record.
func (m *Catalog) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.colleges = make(map[string]catalog.College)
	m.salaries = make(map[salaryKey]catalog.Salary)
	m.stateTaxes = make(map[string]catalog.StateTax)
	return nil
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

type entry struct {
	value   string
	expires time.Time // zero = never
}

// Cache is an in-process catalog.Cache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *Cache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= sweepThreshold {
		c.sweepLocked()
	}

	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// sweepThreshold is the size at which Set drops expired entries.
const sweepThreshold = 4096

func (c *Cache) sweepLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
