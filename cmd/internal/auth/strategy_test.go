package auth

import (
	"net/http/httptest"
	"testing"

	"quill/cmd/identity"
)

func TestBearer_CallerID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "ok", header: "Bearer 01ARZ3NDEKTSV4RRFFQ69G5FAV", want: "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
		{name: "case-insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "missing header", header: "", wantErr: true},
		{name: "no scheme", header: "abc", wantErr: true},
		{name: "empty token", header: "Bearer ", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
	}

	for _, tc := range cases {
		r := httptest.NewRequest("POST", "/graphql", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}

		got, err := Bearer{}.CallerID(r)
		if tc.wantErr {
			if !identity.IsUnauthenticated(err) {
				t.Fatalf("%s: expected unauthenticated, got %v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: CallerID: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: CallerID = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestHeaderLiteral_CallerID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest("POST", "/graphql", nil)
	r.Header.Set(DefaultIdentityHeader, "01ARZ3NDEKTSV4RRFFQ69G5FAV")

	got, err := HeaderLiteral{}.CallerID(r)
	if err != nil {
		t.Fatalf("CallerID: %v", err)
	}
	if got != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("CallerID = %q", got)
	}

	// Custom header name.
	r2 := httptest.NewRequest("POST", "/graphql", nil)
	r2.Header.Set("X-Caller", "u1")
	got, err = HeaderLiteral{Header: "X-Caller"}.CallerID(r2)
	if err != nil || got != "u1" {
		t.Fatalf("CallerID = (%q, %v), want (u1, nil)", got, err)
	}

	// Absent header fails.
	r3 := httptest.NewRequest("POST", "/graphql", nil)
	if _, err := (HeaderLiteral{}).CallerID(r3); !identity.IsUnauthenticated(err) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	if s, err := FromConfig("bearer", ""); err != nil {
		t.Fatalf("FromConfig(bearer): %v", err)
	} else if _, ok := s.(Bearer); !ok {
		t.Fatalf("FromConfig(bearer) = %T", s)
	}

	if s, err := FromConfig("header", "X-Caller"); err != nil {
		t.Fatalf("FromConfig(header): %v", err)
	} else if hl, ok := s.(HeaderLiteral); !ok || hl.Header != "X-Caller" {
		t.Fatalf("FromConfig(header) = %#v", s)
	}

	// Default is bearer; unknown names are rejected.
	if _, err := FromConfig("", ""); err != nil {
		t.Fatalf("FromConfig(\"\"): %v", err)
	}
	if _, err := FromConfig("cookie", ""); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
