package audit

import (
	"testing"
)

func TestParseRoute_GetChannel(t *testing.T) {
	ar := ParseRoute("GET", "/api/channels/{channelID}")

	if ar.Action != "get" {
		t.Errorf("action = %q, want %q", ar.Action, "get")
	}
	if ar.Resource != "channel" {
		t.Errorf("resource = %q, want %q", ar.Resource, "channel")
	}
}

func TestParseRoute_ListMessages(t *testing.T) {
	ar := ParseRoute("GET", "/api/channels/{channelID}/messages")

	if ar.Action != "get" {
		t.Errorf("action = %q, want %q", ar.Action, "get")
	}
	if ar.Resource != "message" {
		t.Errorf("resource = %q, want %q", ar.Resource, "message")
	}
}

func TestParseRoute_CreateMessage(t *testing.T) {
	ar := ParseRoute("POST", "/api/channels/{channelID}/messages")

	if ar.Action != "create" {
		t.Errorf("action = %q, want %q", ar.Action, "create")
	}
	if ar.Resource != "message" {
		t.Errorf("resource = %q, want %q", ar.Resource, "message")
	}
}

func TestParseRoute_RenameChannel(t *testing.T) {
	ar := ParseRoute("PUT", "/api/channels/{channelID}")

	if ar.Action != "update" {
		t.Errorf("action = %q, want %q", ar.Action, "update")
	}
	if ar.Resource != "channel" {
		t.Errorf("resource = %q, want %q", ar.Resource, "channel")
	}
}

func TestParseRoute_AddMemberOverride(t *testing.T) {
	ar := ParseRoute("POST", "/api/channels/{channelID}/members")

	if ar.Action != "member_added" {
		t.Errorf("action = %q, want %q", ar.Action, "member_added")
	}
	if ar.Resource != "channel" {
		t.Errorf("resource = %q, want %q", ar.Resource, "channel")
	}
}

func TestParseRoute_RemoveMemberOverride(t *testing.T) {
	ar := ParseRoute("DELETE", "/api/channels/{channelID}/members/{userID}")

	if ar.Action != "member_removed" {
		t.Errorf("action = %q, want %q", ar.Action, "member_removed")
	}
	if ar.Resource != "channel" {
		t.Errorf("resource = %q, want %q", ar.Resource, "channel")
	}
}

func TestParseRoute_AuthOverrides(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		action  string
	}{
		{"/api/auth/register", "register"},
		{"/api/auth/login", "login"},
		{"/api/auth/logout", "logout"},
	} {
		ar := ParseRoute("POST", tc.pattern)
		if ar.Action != tc.action {
			t.Errorf("%s: action = %q, want %q", tc.pattern, ar.Action, tc.action)
		}
		if ar.Resource != "auth" {
			t.Errorf("%s: resource = %q, want %q", tc.pattern, ar.Resource, "auth")
		}
	}
}

func TestParseRoute_UnknownPattern(t *testing.T) {
	ar := ParseRoute("GET", "/")

	if ar.Resource != "unknown" {
		t.Errorf("resource = %q, want %q", ar.Resource, "unknown")
	}
}
