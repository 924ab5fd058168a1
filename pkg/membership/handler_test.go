package membership

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tortoise-community/tortoise-bot/pkg/api"
	"github.com/tortoise-community/tortoise-bot/pkg/models"
)

type fakeAPI struct {
	meta    *models.MemberMeta
	metaErr error
	roles   []string

	inserted      []string
	rejoined      []string
	left          []string
	editedRoles   map[string][]string
	editedRolesOf []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{editedRoles: make(map[string][]string)}
}

func (f *fakeAPI) GetMemberMeta(ctx context.Context, memberID string) (*models.MemberMeta, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return f.meta, nil
}

func (f *fakeAPI) InsertNewMember(ctx context.Context, userID, guildID, name, tag string) error {
	f.inserted = append(f.inserted, userID)
	return nil
}

func (f *fakeAPI) MemberRejoined(ctx context.Context, userID, guildID string) error {
	f.rejoined = append(f.rejoined, userID)
	return nil
}

func (f *fakeAPI) MemberLeft(ctx context.Context, userID, guildID string) error {
	f.left = append(f.left, userID)
	return nil
}

func (f *fakeAPI) GetMemberRoles(ctx context.Context, memberID string) ([]string, error) {
	return f.roles, nil
}

func (f *fakeAPI) EditMemberRoles(ctx context.Context, userID, guildID string, roleIDs []string) error {
	f.editedRoles[userID] = roleIDs
	f.editedRolesOf = append(f.editedRolesOf, userID)
	return nil
}

type roleChange struct {
	userID string
	roleID string
}

type fakeGateway struct {
	added      []roleChange
	removed    []roleChange
	dms        map[string][]*discordgo.MessageEmbed
	embeds     map[string][]*discordgo.MessageEmbed
	ghostPings []string

	failAddRole map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		dms:         make(map[string][]*discordgo.MessageEmbed),
		embeds:      make(map[string][]*discordgo.MessageEmbed),
		failAddRole: make(map[string]error),
	}
}

func (f *fakeGateway) AddRole(guildID, userID, roleID string) error {
	if err, ok := f.failAddRole[roleID]; ok {
		return err
	}
	f.added = append(f.added, roleChange{userID, roleID})
	return nil
}

func (f *fakeGateway) RemoveRole(guildID, userID, roleID string) error {
	f.removed = append(f.removed, roleChange{userID, roleID})
	return nil
}

func (f *fakeGateway) SendDM(userID string, embed *discordgo.MessageEmbed) error {
	f.dms[userID] = append(f.dms[userID], embed)
	return nil
}

func (f *fakeGateway) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	f.embeds[channelID] = append(f.embeds[channelID], embed)
	return nil
}

func (f *fakeGateway) GhostPing(channelID, userID string) error {
	f.ghostPings = append(f.ghostPings, userID)
	return nil
}

func (f *fakeGateway) hasRole(userID, roleID string) bool {
	for _, change := range f.added {
		if change.userID == userID && change.roleID == roleID {
			return true
		}
	}
	return false
}

func testOptions() Options {
	return Options{
		GuildID:               "577192344529404154",
		VerifiedRoleID:        "599647985198039050",
		UnverifiedRoleID:      "605808609195982864",
		VerificationChannelID: "602156675863937024",
		SystemLogChannelID:    "593883395436838942",
		VerificationURL:       "https://www.tortoisecommunity.org/verification/",
	}
}

func notFound() error {
	return &api.ResponseCodeError{Status: http.StatusNotFound}
}

func TestNewMemberJoin(t *testing.T) {
	apiClient := newFakeAPI()
	apiClient.metaErr = notFound()
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "111", "newbie", "0001"); err != nil {
		t.Fatalf("OnMemberJoin() returned error: %v", err)
	}

	if len(apiClient.inserted) != 1 || apiClient.inserted[0] != "111" {
		t.Errorf("inserted = %v, want [111]", apiClient.inserted)
	}

	if !gateway.hasRole("111", testOptions().UnverifiedRoleID) {
		t.Error("new member should get the unverified role")
	}

	if len(gateway.ghostPings) != 1 || gateway.ghostPings[0] != "111" {
		t.Errorf("ghostPings = %v", gateway.ghostPings)
	}

	if len(gateway.embeds[testOptions().SystemLogChannelID]) != 1 {
		t.Error("join should be announced in the system log channel")
	}

	if len(gateway.dms["111"]) != 1 {
		t.Error("new member should receive a verification DM")
	}
}

func TestVerifiedRejoinRestoresRoles(t *testing.T) {
	leaveDate := time.Now().Add(-24 * time.Hour)
	apiClient := newFakeAPI()
	apiClient.meta = &models.MemberMeta{UserID: "222", Verified: true, LeaveDate: &leaveDate}
	apiClient.roles = []string{"roleA", "roleB"}
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "222", "regular", "0002"); err != nil {
		t.Fatalf("OnMemberJoin() returned error: %v", err)
	}

	if len(apiClient.inserted) != 0 {
		t.Error("rejoining member must not be inserted again")
	}

	if len(apiClient.rejoined) != 1 || apiClient.rejoined[0] != "222" {
		t.Errorf("rejoined = %v, want [222]", apiClient.rejoined)
	}

	for _, roleID := range []string{"roleA", "roleB", testOptions().VerifiedRoleID} {
		if !gateway.hasRole("222", roleID) {
			t.Errorf("role %s was not restored", roleID)
		}
	}

	if len(gateway.removed) != 1 || gateway.removed[0].roleID != testOptions().UnverifiedRoleID {
		t.Errorf("unverified role should be removed, removed = %v", gateway.removed)
	}

	if len(gateway.dms["222"]) != 1 {
		t.Error("rejoining member should receive a welcome-back DM")
	}
}

func TestUnverifiedRejoin(t *testing.T) {
	leaveDate := time.Now().Add(-24 * time.Hour)
	apiClient := newFakeAPI()
	apiClient.meta = &models.MemberMeta{UserID: "333", Verified: false, LeaveDate: &leaveDate}
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "333", "ghost", "0003"); err != nil {
		t.Fatalf("OnMemberJoin() returned error: %v", err)
	}

	if len(apiClient.rejoined) != 1 {
		t.Errorf("rejoined = %v, want one entry", apiClient.rejoined)
	}

	if !gateway.hasRole("333", testOptions().UnverifiedRoleID) {
		t.Error("unverified rejoiner should get the unverified role")
	}

	if gateway.hasRole("333", testOptions().VerifiedRoleID) {
		t.Error("unverified rejoiner must not get the verified role")
	}

	if len(gateway.ghostPings) != 1 {
		t.Errorf("ghostPings = %v", gateway.ghostPings)
	}
}

func TestPresentVerifiedMemberIgnored(t *testing.T) {
	apiClient := newFakeAPI()
	apiClient.meta = &models.MemberMeta{UserID: "444", Verified: true, LeaveDate: nil}
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "444", "present", "0004"); err != nil {
		t.Fatalf("OnMemberJoin() returned error: %v", err)
	}

	if len(apiClient.inserted)+len(apiClient.rejoined)+len(gateway.added) != 0 {
		t.Error("a present verified member should be left alone")
	}
}

func TestJoinPropagatesUnexpectedErrors(t *testing.T) {
	apiClient := newFakeAPI()
	apiClient.metaErr = errors.New("connection refused")
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "555", "x", "0005"); err == nil {
		t.Fatal("transport errors must not be treated as unknown member")
	}

	if len(apiClient.inserted) != 0 {
		t.Error("member must not be inserted when the meta lookup failed")
	}
}

func TestJoinPropagatesServerErrors(t *testing.T) {
	apiClient := newFakeAPI()
	apiClient.metaErr = &api.ResponseCodeError{Status: http.StatusInternalServerError}
	gateway := newFakeGateway()
	handler := NewHandler(apiClient, gateway, testOptions())

	if err := handler.OnMemberJoin(context.Background(), "556", "y", "0006"); err == nil {
		t.Fatal("a 500 from the meta lookup must not be treated as unknown member")
	}

	if len(apiClient.inserted) != 0 {
		t.Error("member must not be inserted on a server error")
	}
}

func TestMemberLeave(t *testing.T) {
	apiClient := newFakeAPI()
	handler := NewHandler(apiClient, newFakeGateway(), testOptions())

	if err := handler.OnMemberLeave(context.Background(), "666"); err != nil {
		t.Fatalf("OnMemberLeave() returned error: %v", err)
	}

	if len(apiClient.left) != 1 || apiClient.left[0] != "666" {
		t.Errorf("left = %v, want [666]", apiClient.left)
	}
}

func TestOnMemberUpdatePersistsRoles(t *testing.T) {
	apiClient := newFakeAPI()
	handler := NewHandler(apiClient, newFakeGateway(), testOptions())

	before := []string{"a"}
	after := []string{"a", "b"}
	if err := handler.OnMemberUpdate(context.Background(), "777", before, after); err != nil {
		t.Fatalf("OnMemberUpdate() returned error: %v", err)
	}

	got := apiClient.editedRoles["777"]
	if len(got) != 2 || got[1] != "b" {
		t.Errorf("editedRoles = %v", got)
	}

	// Unchanged roles must not hit the API
	if err := handler.OnMemberUpdate(context.Background(), "777", after, after); err != nil {
		t.Fatalf("OnMemberUpdate() returned error: %v", err)
	}
	if len(apiClient.editedRolesOf) != 1 {
		t.Errorf("unchanged roles triggered a persist, calls = %v", apiClient.editedRolesOf)
	}
}

func TestSuppressionIsScopedPerMember(t *testing.T) {
	apiClient := newFakeAPI()
	handler := NewHandler(apiClient, newFakeGateway(), testOptions())

	release := handler.suppressed.suppress("888")
	defer release()

	// Suppressed member: skipped
	if err := handler.OnMemberUpdate(context.Background(), "888", []string{}, []string{"x"}); err != nil {
		t.Fatalf("OnMemberUpdate() returned error: %v", err)
	}
	if len(apiClient.editedRolesOf) != 0 {
		t.Error("suppressed member's role change was persisted")
	}

	// Other members keep flowing through
	if err := handler.OnMemberUpdate(context.Background(), "999", []string{}, []string{"x"}); err != nil {
		t.Fatalf("OnMemberUpdate() returned error: %v", err)
	}
	if len(apiClient.editedRolesOf) != 1 || apiClient.editedRolesOf[0] != "999" {
		t.Errorf("editedRolesOf = %v, want [999]", apiClient.editedRolesOf)
	}

	// After release the member flows through again
	release()
	if err := handler.OnMemberUpdate(context.Background(), "888", []string{}, []string{"x"}); err != nil {
		t.Fatalf("OnMemberUpdate() returned error: %v", err)
	}
	if len(apiClient.editedRolesOf) != 2 {
		t.Error("released member's role change was not persisted")
	}
}

func TestSuppressionReleaseIsIdempotent(t *testing.T) {
	set := newSuppressionSet()

	first := set.suppress("1")
	second := set.suppress("1")

	first()
	first() // double release of the same scope is a no-op
	if !set.active("1") {
		t.Fatal("member released too early, second scope still open")
	}

	second()
	if set.active("1") {
		t.Fatal("member still suppressed after all scopes released")
	}
}

func TestAddVerifiedRolesSkipsFailedRoles(t *testing.T) {
	apiClient := newFakeAPI()
	gateway := newFakeGateway()
	gateway.failAddRole["deleted-role"] = errors.New("Unknown Role")
	handler := NewHandler(apiClient, gateway, testOptions())

	handler.AddVerifiedRoles("123", []string{"deleted-role", "alive-role"})

	if !gateway.hasRole("123", "alive-role") {
		t.Error("roles after a failed one should still be added")
	}

	if !gateway.hasRole("123", testOptions().VerifiedRoleID) {
		t.Error("verified role should always be added")
	}

	if handler.suppressed.active("123") {
		t.Error("suppression must be released after AddVerifiedRoles")
	}
}
