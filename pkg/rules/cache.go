// Package rules keeps an in-memory copy of the community rules so commands
// never block on the API. The copy is an immutable snapshot swapped
// atomically on refresh: readers always see a complete, consistent rule set.
package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tortoise-community/tortoise-bot/pkg/logger"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

// Source is where the cache fetches rules from. *api.Client satisfies it.
type Source interface {
	GetAllRules(ctx context.Context) ([]models.Rule, error)
}

// snapshot is one immutable view of the rule set. Never mutated after build.
type snapshot struct {
	ordered   []models.Rule
	byNumber  map[int]models.Rule
	byAlias   map[string]models.Rule
	refreshed time.Time
}

// Cache holds the current rules snapshot and its refresher.
type Cache struct {
	source      Source
	snap        atomic.Pointer[snapshot]
	mu          sync.Mutex
	stopRefresh chan struct{}
	refreshing  bool
}

var (
	cache     *Cache
	cacheOnce sync.Once
)

// Init initializes the global rules cache with the given source
func Init(source Source) *Cache {
	cacheOnce.Do(func() {
		cache = NewCache(source)
	})
	return cache
}

// Get returns the global rules cache instance
func Get() *Cache {
	return cache
}

// NewCache creates a Cache with an empty snapshot
func NewCache(source Source) *Cache {
	c := &Cache{
		source:      source,
		stopRefresh: make(chan struct{}),
	}
	c.snap.Store(&snapshot{
		byNumber: make(map[int]models.Rule),
		byAlias:  make(map[string]models.Rule),
	})
	return c
}

// Refresh fetches the rules and swaps in a new snapshot. On failure the
// previous snapshot stays in place, so readers never see a partial set.
func (c *Cache) Refresh(ctx context.Context) error {
	fetched, err := c.source.GetAllRules(ctx)
	if err != nil {
		logger.Error("RulesCache: Error fetching rules: "+err.Error(), "RulesCache")
		return err
	}

	next := &snapshot{
		ordered:   make([]models.Rule, len(fetched)),
		byNumber:  make(map[int]models.Rule, len(fetched)),
		byAlias:   make(map[string]models.Rule),
		refreshed: time.Now(),
	}
	copy(next.ordered, fetched)
	sort.Slice(next.ordered, func(i, j int) bool {
		return next.ordered[i].Number < next.ordered[j].Number
	})
	for _, rule := range next.ordered {
		next.byNumber[rule.Number] = rule
		for _, alias := range rule.Alias {
			next.byAlias[strings.ToLower(alias)] = rule
		}
	}

	c.snap.Store(next)
	logger.Info(fmt.Sprintf("RulesCache: Cache refreshed with %d rules", len(next.ordered)), "RulesCache")
	return nil
}

// StartAutoRefresh starts automatic cache refresh at the specified interval
// If already refreshing, it will stop the current refresher and start a new one
func (c *Cache) StartAutoRefresh(interval time.Duration) {
	c.mu.Lock()
	if c.refreshing {
		close(c.stopRefresh)
		c.refreshing = false
	}
	c.refreshing = true
	c.stopRefresh = make(chan struct{})
	stopChan := c.stopRefresh
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		logger.Info("RulesCache: Auto-refresh started (interval: "+interval.String()+")", "RulesCache")

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				if err := c.Refresh(ctx); err != nil {
					logger.Error("RulesCache: Auto-refresh failed: "+err.Error(), "RulesCache")
				}
				cancel()
			case <-stopChan:
				logger.Info("RulesCache: Auto-refresh stopped", "RulesCache")
				return
			}
		}
	}()
}

// StopAutoRefresh stops the automatic cache refresh
func (c *Cache) StopAutoRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		close(c.stopRefresh)
		c.refreshing = false
	}
}

// All returns the current rule set ordered by rule number. The returned
// slice belongs to the caller.
func (c *Cache) All() []models.Rule {
	snap := c.snap.Load()
	out := make([]models.Rule, len(snap.ordered))
	copy(out, snap.ordered)
	return out
}

// ByNumber looks up a rule by its number
func (c *Cache) ByNumber(number int) (models.Rule, bool) {
	snap := c.snap.Load()
	rule, ok := snap.byNumber[number]
	return rule, ok
}

// ByAlias looks up a rule by one of its aliases, case-insensitively
func (c *Cache) ByAlias(alias string) (models.Rule, bool) {
	snap := c.snap.Load()
	rule, ok := snap.byAlias[strings.ToLower(alias)]
	return rule, ok
}

// Size returns the number of rules in the current snapshot
func (c *Cache) Size() int {
	return len(c.snap.Load().ordered)
}

// LastRefreshed returns when the current snapshot was built. Zero until
// the first successful refresh.
func (c *Cache) LastRefreshed() time.Time {
	return c.snap.Load().refreshed
}
