package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

type fakeSource struct {
	rules []models.Rule
	err   error
	calls int
}

func (f *fakeSource) GetAllRules(ctx context.Context) ([]models.Rule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func testRules() []models.Rule {
	// Deliberately out of order to exercise sorting
	return []models.Rule{
		{Number: 3, Alias: []string{"spam"}, Statement: "No spamming."},
		{Number: 1, Alias: []string{"tos", "guidelines"}, Statement: "Follow the Discord Community Guidelines."},
		{Number: 2, Alias: []string{"NSFW"}, Statement: "No NSFW content."},
	}
}

func TestRefreshAndLookup(t *testing.T) {
	source := &fakeSource{rules: testRules()}
	cache := NewCache(source)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}

	if cache.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", cache.Size())
	}

	all := cache.All()
	for i, rule := range all {
		if rule.Number != i+1 {
			t.Errorf("All()[%d].Number = %d, want %d", i, rule.Number, i+1)
		}
	}

	rule, ok := cache.ByNumber(2)
	if !ok || rule.Statement != "No NSFW content." {
		t.Errorf("ByNumber(2) = %+v, %v", rule, ok)
	}

	if _, ok := cache.ByNumber(99); ok {
		t.Error("ByNumber(99) should not find a rule")
	}

	// Alias lookup is case-insensitive in both directions
	rule, ok = cache.ByAlias("TOS")
	if !ok || rule.Number != 1 {
		t.Errorf("ByAlias(TOS) = %+v, %v", rule, ok)
	}

	rule, ok = cache.ByAlias("nsfw")
	if !ok || rule.Number != 2 {
		t.Errorf("ByAlias(nsfw) = %+v, %v", rule, ok)
	}
}

func TestEmptyCacheBeforeRefresh(t *testing.T) {
	cache := NewCache(&fakeSource{})

	if cache.Size() != 0 {
		t.Errorf("Size() = %d before first refresh", cache.Size())
	}

	if len(cache.All()) != 0 {
		t.Error("All() should be empty before first refresh")
	}

	if !cache.LastRefreshed().IsZero() {
		t.Error("LastRefreshed() should be zero before first refresh")
	}
}

func TestFailedRefreshKeepsOldSnapshot(t *testing.T) {
	source := &fakeSource{rules: testRules()}
	cache := NewCache(source)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}
	refreshedAt := cache.LastRefreshed()

	source.err = errors.New("api is down")
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should propagate the fetch error")
	}

	if cache.Size() != 3 {
		t.Errorf("failed refresh dropped the snapshot, Size() = %d", cache.Size())
	}

	if !cache.LastRefreshed().Equal(refreshedAt) {
		t.Error("failed refresh should not bump LastRefreshed()")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	source := &fakeSource{rules: testRules()}
	cache := NewCache(source)

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}

	before := cache.All()

	source.rules = []models.Rule{{Number: 1, Alias: []string{"only"}, Statement: "Only rule."}}
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}

	// The slice handed out before the refresh is untouched
	if len(before) != 3 || before[0].Statement != "Follow the Discord Community Guidelines." {
		t.Errorf("earlier All() result was mutated by refresh: %+v", before)
	}

	if cache.Size() != 1 {
		t.Errorf("Size() = %d after refresh, want 1", cache.Size())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	source := &fakeSource{rules: testRules()}
	cache := NewCache(source)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() returned error: %v", err)
	}

	first := cache.All()
	first[0].Statement = "tampered"

	second := cache.All()
	if second[0].Statement == "tampered" {
		t.Error("All() should return a copy, not the snapshot's backing slice")
	}
}
