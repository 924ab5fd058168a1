package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
)

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"verified": true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret-token")
	if _, err := client.IsVerified(context.Background(), "123"); err != nil {
		t.Fatalf("IsVerified() returned error: %v", err)
	}

	if gotAuth != "Token secret-token" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Token secret-token")
	}
}

func TestResponseCodeErrorJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.IsVerified(context.Background(), "123")

	var rcErr *ResponseCodeError
	if !errors.As(err, &rcErr) {
		t.Fatalf("expected ResponseCodeError, got %v", err)
	}

	if rcErr.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", rcErr.Status, http.StatusNotFound)
	}

	if rcErr.ResponseJSON["detail"] != "Not found." {
		t.Errorf("ResponseJSON = %v", rcErr.ResponseJSON)
	}

	if rcErr.ResponseText != "" {
		t.Errorf("ResponseText should be empty when the body parsed as JSON, got %q", rcErr.ResponseText)
	}
}

func TestResponseCodeErrorText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	_, err := client.GetAllRules(context.Background())

	var rcErr *ResponseCodeError
	if !errors.As(err, &rcErr) {
		t.Fatalf("expected ResponseCodeError, got %v", err)
	}

	if rcErr.ResponseText != "upstream exploded" {
		t.Errorf("ResponseText = %q", rcErr.ResponseText)
	}

	if !strings.Contains(rcErr.Error(), "500") {
		t.Errorf("Error() should mention the status, got %q", rcErr.Error())
	}
}

func TestDoesMemberExist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/verify-confirmation/123/") {
			w.Write([]byte(`{"verified": false}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	exists, err := client.DoesMemberExist(context.Background(), "123")
	if err != nil {
		t.Fatalf("DoesMemberExist() returned error: %v", err)
	}
	if !exists {
		t.Error("DoesMemberExist() = false for a known member")
	}

	exists, err = client.DoesMemberExist(context.Background(), "999")
	if err != nil {
		t.Fatalf("DoesMemberExist() returned error for unknown member: %v", err)
	}
	if exists {
		t.Error("DoesMemberExist() = true for an unknown member")
	}
}

func TestVerbMethods(t *testing.T) {
	var gotMethods []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethods = append(gotMethods, r.Method)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	ctx := context.Background()

	if err := client.get(ctx, "x/", nil); err != nil {
		t.Fatalf("get() returned error: %v", err)
	}
	if err := client.post(ctx, "x/", nil); err != nil {
		t.Fatalf("post() returned error: %v", err)
	}
	if err := client.put(ctx, "x/", nil); err != nil {
		t.Fatalf("put() returned error: %v", err)
	}
	if err := client.patch(ctx, "x/", nil); err != nil {
		t.Fatalf("patch() returned error: %v", err)
	}
	if err := client.delete(ctx, "x/"); err != nil {
		t.Fatalf("delete() returned error: %v", err)
	}

	want := []string{"GET", "POST", "PUT", "PATCH", "DELETE"}
	for i, m := range want {
		if gotMethods[i] != m {
			t.Errorf("request %d used %s, want %s", i, gotMethods[i], m)
		}
	}
}

func TestDeleteSuggestionNoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	if err := client.DeleteSuggestion(context.Background(), "456"); err != nil {
		t.Fatalf("DeleteSuggestion() returned error: %v", err)
	}
}

func TestMemberRejoinedClearsLeaveDate(t *testing.T) {
	var body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	if err := client.MemberRejoined(context.Background(), "123", "577192344529404154"); err != nil {
		t.Fatalf("MemberRejoined() returned error: %v", err)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}

	if leaveDate, present := payload["leave_date"]; !present || leaveDate != nil {
		t.Errorf("leave_date should be present and null, payload: %s", body)
	}

	if payload["member"] != true {
		t.Errorf("member should be true, payload: %s", body)
	}
}

func TestGetMemberRoles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/members/123/roles/" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"roles": ["589128905279991842", "603157798225838101"]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	roles, err := client.GetMemberRoles(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetMemberRoles() returned error: %v", err)
	}

	if len(roles) != 2 || roles[0] != "589128905279991842" {
		t.Errorf("GetMemberRoles() = %v", roles)
	}
}

func TestGetAllRules(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"number": 1, "alias": ["tos", "guidelines"], "statement": "Follow the Discord Community Guidelines."},
			{"number": 2, "alias": ["nsfw"], "statement": "No NSFW content."}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")
	rules, err := client.GetAllRules(context.Background())
	if err != nil {
		t.Fatalf("GetAllRules() returned error: %v", err)
	}

	if len(rules) != 2 {
		t.Fatalf("GetAllRules() returned %d rules, want 2", len(rules))
	}

	if rules[0].Number != 1 || rules[0].Alias[0] != "tos" {
		t.Errorf("rules[0] = %+v", rules[0])
	}
}

func TestWarningsRoundTrip(t *testing.T) {
	existing := `{"id":"aaaa-bbbb","mod":"197918569894379520","reason":"spam","date":"2020-05-04T21:36:43.045204Z"}`

	var putBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			payload := map[string]interface{}{
				"user_id":     "123",
				"verified":    true,
				"warnings":    []string{existing},
				"muted_until": nil,
				"mod_mail":    true,
				"perks":       300,
			}
			json.NewEncoder(w).Encode(payload)
		case http.MethodPut:
			raw, _ := io.ReadAll(r.Body)
			putBody = string(raw)
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	warnings, err := client.GetMemberWarnings(context.Background(), "123")
	if err != nil {
		t.Fatalf("GetMemberWarnings() returned error: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Reason != "spam" {
		t.Fatalf("GetMemberWarnings() = %+v", warnings)
	}

	count, err := client.GetMemberWarningsCount(context.Background(), "123")
	if err != nil || count != 1 {
		t.Fatalf("GetMemberWarningsCount() = %d, %v", count, err)
	}

	warning, err := client.AddMemberWarning(context.Background(), "612349409736392928", "123", "being rude")
	if err != nil {
		t.Fatalf("AddMemberWarning() returned error: %v", err)
	}
	if warning.ID == "" || warning.Reason != "being rude" {
		t.Errorf("AddMemberWarning() = %+v", warning)
	}

	var payload struct {
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(putBody), &payload); err != nil {
		t.Fatalf("PUT body is not JSON: %v", err)
	}
	if len(payload.Warnings) != 2 {
		t.Fatalf("PUT carried %d warnings, want 2", len(payload.Warnings))
	}
	if payload.Warnings[0] != existing {
		t.Errorf("existing warning was rewritten: %s", payload.Warnings[0])
	}
}

func TestRemoveMemberWarning(t *testing.T) {
	first := `{"id":"keep-me","mod":"1","reason":"a","date":"2020-05-04T21:36:43Z"}`
	second := `{"id":"drop-me","mod":"1","reason":"b","date":"2020-05-05T21:36:43Z"}`

	var putBody string
	putCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			payload := map[string]interface{}{
				"user_id":  "123",
				"warnings": []string{first, second},
			}
			json.NewEncoder(w).Encode(payload)
		case http.MethodPut:
			putCount++
			raw, _ := io.ReadAll(r.Body)
			putBody = string(raw)
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "token")

	removed, err := client.RemoveMemberWarning(context.Background(), "123", "drop-me")
	if err != nil {
		t.Fatalf("RemoveMemberWarning() returned error: %v", err)
	}
	if !removed {
		t.Fatal("RemoveMemberWarning() = false for an existing warning")
	}

	var payload struct {
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal([]byte(putBody), &payload); err != nil {
		t.Fatalf("PUT body is not JSON: %v", err)
	}
	if len(payload.Warnings) != 1 || payload.Warnings[0] != first {
		t.Errorf("PUT warnings = %v", payload.Warnings)
	}

	removed, err = client.RemoveMemberWarning(context.Background(), "123", "never-existed")
	if err != nil {
		t.Fatalf("RemoveMemberWarning() returned error: %v", err)
	}
	if removed {
		t.Error("RemoveMemberWarning() = true for an unknown warning")
	}
	if putCount != 1 {
		t.Errorf("unexpected PUT for unknown warning, putCount = %d", putCount)
	}
}
