package selfassign

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type fakeGateway struct {
	added   []string // "userID:roleID"
	removed []string
	dms     []string
}

func (f *fakeGateway) AddRole(guildID, userID, roleID string) error {
	f.added = append(f.added, userID+":"+roleID)
	return nil
}

func (f *fakeGateway) RemoveRole(guildID, userID, roleID string) error {
	f.removed = append(f.removed, userID+":"+roleID)
	return nil
}

func (f *fakeGateway) SendDM(userID string, embed *discordgo.MessageEmbed) error {
	f.dms = append(f.dms, userID)
	return nil
}

const (
	reactChannel = "603237922176434177"
	botID        = "bot-user"
)

func newTestAssigner(gateway *fakeGateway) *Assigner {
	roles := map[string]string{
		"emoji-python": "role-python",
		"emoji-go":     "role-go",
	}
	a := NewAssigner(gateway, reactChannel, roles, botID)
	a.SetRoleName("role-python", "Python")
	return a
}

func TestReactionAddAssignsRole(t *testing.T) {
	gateway := &fakeGateway{}
	assigner := newTestAssigner(gateway)

	if err := assigner.OnReactionAdd("guild", reactChannel, "123", "emoji-python"); err != nil {
		t.Fatalf("OnReactionAdd() returned error: %v", err)
	}

	if len(gateway.added) != 1 || gateway.added[0] != "123:role-python" {
		t.Errorf("added = %v", gateway.added)
	}

	if len(gateway.dms) != 1 || gateway.dms[0] != "123" {
		t.Errorf("member should be notified over DM, dms = %v", gateway.dms)
	}
}

func TestReactionRemoveRevokesRole(t *testing.T) {
	gateway := &fakeGateway{}
	assigner := newTestAssigner(gateway)

	if err := assigner.OnReactionRemove("guild", reactChannel, "123", "emoji-go"); err != nil {
		t.Fatalf("OnReactionRemove() returned error: %v", err)
	}

	if len(gateway.removed) != 1 || gateway.removed[0] != "123:role-go" {
		t.Errorf("removed = %v", gateway.removed)
	}

	if len(gateway.dms) != 0 {
		t.Error("role removal should not DM the member")
	}
}

func TestOtherChannelsIgnored(t *testing.T) {
	gateway := &fakeGateway{}
	assigner := newTestAssigner(gateway)

	if err := assigner.OnReactionAdd("guild", "general", "123", "emoji-python"); err != nil {
		t.Fatalf("OnReactionAdd() returned error: %v", err)
	}

	if len(gateway.added) != 0 {
		t.Errorf("reactions outside the react-for-roles channel must be ignored, added = %v", gateway.added)
	}
}

func TestBotReactionsIgnored(t *testing.T) {
	gateway := &fakeGateway{}
	assigner := newTestAssigner(gateway)

	if err := assigner.OnReactionAdd("guild", reactChannel, botID, "emoji-python"); err != nil {
		t.Fatalf("OnReactionAdd() returned error: %v", err)
	}

	if len(gateway.added) != 0 {
		t.Errorf("the bot's own reactions must be ignored, added = %v", gateway.added)
	}
}

func TestUnmappedEmojiIgnored(t *testing.T) {
	gateway := &fakeGateway{}
	assigner := newTestAssigner(gateway)

	if err := assigner.OnReactionAdd("guild", reactChannel, "123", "emoji-unknown"); err != nil {
		t.Fatalf("OnReactionAdd() returned error: %v", err)
	}

	if len(gateway.added) != 0 {
		t.Errorf("unmapped emojis must not assign roles, added = %v", gateway.added)
	}
}
