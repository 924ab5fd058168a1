package server

import (
	"fmt"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

func TestRuleChoicesValueIsString(t *testing.T) {
	all := []models.Rule{
		{Number: 1, Alias: []string{"tos", "guidelines"}, Statement: "Follow the Discord Community Guidelines."},
		{Number: 2, Alias: []string{"nsfw"}, Statement: "No NSFW content."},
	}

	choices := ruleChoices(all, "")
	if len(choices) != 2 {
		t.Fatalf("ruleChoices() returned %d choices, want 2", len(choices))
	}

	if choices[0].Name != "1 - tos, guidelines" {
		t.Errorf("choices[0].Name = %q", choices[0].Name)
	}

	// Discord rejects autocomplete responses whose value is not a string
	// for a string option, so check the marshaled wire payload.
	for _, choice := range choices {
		raw, err := json.Marshal(choice)
		if err != nil {
			t.Fatalf("marshal choice: %v", err)
		}

		var wire struct {
			Value interface{} `json:"value"`
		}
		if err := json.Unmarshal(raw, &wire); err != nil {
			t.Fatalf("unmarshal choice: %v", err)
		}

		value, ok := wire.Value.(string)
		if !ok {
			t.Fatalf("choice %q wire value is %T, want string", choice.Name, wire.Value)
		}

		if _, found := lookupRuleIn(all, value); !found {
			t.Errorf("choice value %q does not resolve to a rule", value)
		}
	}
}

func TestRuleChoicesFiltersOnTypedText(t *testing.T) {
	all := []models.Rule{
		{Number: 1, Alias: []string{"tos"}},
		{Number: 2, Alias: []string{"nsfw"}},
		{Number: 3, Alias: []string{"spam"}},
	}

	choices := ruleChoices(all, "nsfw")
	if len(choices) != 1 {
		t.Fatalf("ruleChoices(\"nsfw\") returned %d choices, want 1", len(choices))
	}
	if choices[0].Value != "2" {
		t.Errorf("choices[0].Value = %v, want \"2\"", choices[0].Value)
	}
}

func TestRuleChoicesCapsAtTwentyFive(t *testing.T) {
	all := make([]models.Rule, 30)
	for i := range all {
		all[i] = models.Rule{Number: i + 1, Alias: []string{fmt.Sprintf("rule%d", i+1)}}
	}

	choices := ruleChoices(all, "")
	if len(choices) != 25 {
		t.Errorf("ruleChoices() returned %d choices, want 25", len(choices))
	}
}

// lookupRuleIn resolves a choice value against a rule list the way
// ruleHandler does against the cache, numbers first.
func lookupRuleIn(all []models.Rule, value string) (models.Rule, bool) {
	for _, r := range all {
		if fmt.Sprintf("%d", r.Number) == value {
			return r, true
		}
		for _, a := range r.Alias {
			if a == value {
				return r, true
			}
		}
	}
	return models.Rule{}, false
}
