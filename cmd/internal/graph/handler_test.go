package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"quill/cmd/identity"
	"quill/cmd/internal/auth"
	"quill/cmd/internal/content"
	"quill/cmd/security/password"
)

func testCodec() password.Codec {
	c := password.DefaultCodec()
	c.Params.MemoryKiB = 8 * 1024
	c.Params.Iterations = 1
	c.MinLength = 6
	return c
}

func newTestHandler(t *testing.T, ownerOnly bool) *Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := identity.NewMemoryStore()
	posts := content.NewService(log, content.NewMemoryStore(users), nil, ownerOnly)
	resolver := NewResolver(log, users, posts, testCodec(), auth.Bearer{})

	h, err := NewHandler(log, resolver)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// do executes a GraphQL query against the handler. callerID, when non-empty,
// is sent as a bearer token.
func do(t *testing.T, h *Handler, query, callerID string) gqlResponse {
	t.Helper()

	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if callerID != "" {
		r.Header.Set("Authorization", "Bearer "+callerID)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	var resp gqlResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (%s)", err, rr.Body.String())
	}
	return resp
}

func mustData(t *testing.T, resp gqlResponse, field string, dst any) {
	t.Helper()

	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %+v", resp.Errors)
	}
	raw, ok := resp.Data[field]
	if !ok {
		t.Fatalf("missing field %q in %v", field, resp.Data)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("unmarshal %q: %v", field, err)
	}
}

func mustError(t *testing.T, resp gqlResponse, substr string) {
	t.Helper()

	if len(resp.Errors) == 0 {
		t.Fatalf("expected an error containing %q, got none", substr)
	}
	if !strings.Contains(resp.Errors[0].Message, substr) {
		t.Fatalf("error = %q, want substring %q", resp.Errors[0].Message, substr)
	}
}

type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func signUp(t *testing.T, h *Handler, username, pw string) userPayload {
	t.Helper()

	resp := do(t, h, fmt.Sprintf(
		`mutation { signUp(username: %q, password: %q) { id username } }`, username, pw), "")
	var u userPayload
	mustData(t, resp, "signUp", &u)
	return u
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)

	alice := signUp(t, h, "alice", "secret1")
	if alice.ID == "" || alice.Username != "alice" {
		t.Fatalf("unexpected signUp payload: %+v", alice)
	}

	// Duplicate username always fails and never creates a second user.
	resp := do(t, h, `mutation { signUp(username: "alice", password: "secret1") { id } }`, "")
	mustError(t, resp, "conflict")

	// Unknown username is a distinct failure from a wrong password.
	resp = do(t, h, `mutation { signIn(username: "nobody", password: "secret1") { id } }`, "")
	mustError(t, resp, "not_found")

	resp = do(t, h, `mutation { signIn(username: "alice", password: "wrong-pass") { id } }`, "")
	mustError(t, resp, "invalid_credentials")

	resp = do(t, h, `mutation { signIn(username: "alice", password: "secret1") { id username } }`, "")
	var signedIn userPayload
	mustData(t, resp, "signIn", &signedIn)
	if signedIn.ID != alice.ID || signedIn.Username != "alice" {
		t.Fatalf("signIn = %+v, want %+v", signedIn, alice)
	}
}

func TestCreateUserAliasesSignUp(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)

	resp := do(t, h, `mutation { createUser(username: "carol", password: "secret1") { id username } }`, "")
	var u userPayload
	mustData(t, resp, "createUser", &u)
	if u.Username != "carol" {
		t.Fatalf("createUser = %+v", u)
	}
}

func TestMe(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	alice := signUp(t, h, "alice", "secret1")

	// Without the identity header the operation fails.
	resp := do(t, h, `{ me { id } }`, "")
	mustError(t, resp, "you must be logged in")

	// A header naming a nonexistent user yields null, not an error.
	resp = do(t, h, `{ me { id } }`, "01ZZZZZZZZZZZZZZZZZZZZZZZZ")
	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %+v", resp.Errors)
	}
	if string(resp.Data["me"]) != "null" {
		t.Fatalf("me = %s, want null", resp.Data["me"])
	}

	resp = do(t, h, `{ me { id username } }`, alice.ID)
	var me userPayload
	mustData(t, resp, "me", &me)
	if me.ID != alice.ID {
		t.Fatalf("me = %+v, want %+v", me, alice)
	}
}

func TestEndToEndScenario(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)

	alice := signUp(t, h, "alice", "secret1")

	resp := do(t, h, `mutation { createPost(title: "T", description: "D") { id title description user { id username } } }`, alice.ID)
	var created struct {
		ID          string      `json:"id"`
		Title       string      `json:"title"`
		Description string      `json:"description"`
		User        userPayload `json:"user"`
	}
	mustData(t, resp, "createPost", &created)
	if created.Title != "T" || created.Description != "D" || created.User.Username != "alice" {
		t.Fatalf("createPost = %+v", created)
	}

	resp = do(t, h, `{ allPosts { id title user { username } } }`, "")
	var all []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	mustData(t, resp, "allPosts", &all)
	if len(all) != 1 || all[0].Title != "T" || all[0].User.Username != "alice" {
		t.Fatalf("allPosts = %+v", all)
	}

	resp = do(t, h, `{ me { yourPosts { id title } } }`, alice.ID)
	var mine struct {
		YourPosts []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"yourPosts"`
	}
	mustData(t, resp, "me", &mine)
	if len(mine.YourPosts) != 1 || mine.YourPosts[0].ID != created.ID {
		t.Fatalf("yourPosts = %+v", mine)
	}
}

func TestEditPost_ReassignsOwnerUnderDefaultPolicy(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)

	alice := signUp(t, h, "alice", "secret1")
	mallory := signUp(t, h, "mallory", "secret2")

	resp := do(t, h, `mutation { createPost(title: "T", description: "D") { id } }`, alice.ID)
	var created struct {
		ID string `json:"id"`
	}
	mustData(t, resp, "createPost", &created)

	// A different authenticated caller edits the post and silently becomes
	// its owner.
	resp = do(t, h, fmt.Sprintf(
		`mutation { editPost(id: %q, title: "T2", description: "D2") { id title user { username } } }`,
		created.ID), mallory.ID)
	var edited struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	mustData(t, resp, "editPost", &edited)
	if edited.Title != "T2" || edited.User.Username != "mallory" {
		t.Fatalf("editPost = %+v", edited)
	}
}

func TestEditPost_ForbiddenUnderOwnerOnlyPolicy(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, true)

	alice := signUp(t, h, "alice", "secret1")
	mallory := signUp(t, h, "mallory", "secret2")

	resp := do(t, h, `mutation { createPost(title: "T", description: "D") { id } }`, alice.ID)
	var created struct {
		ID string `json:"id"`
	}
	mustData(t, resp, "createPost", &created)

	resp = do(t, h, fmt.Sprintf(
		`mutation { editPost(id: %q, title: "T2") { id } }`, created.ID), mallory.ID)
	mustError(t, resp, "forbidden")
}

func TestDeletePost(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)
	alice := signUp(t, h, "alice", "secret1")

	resp := do(t, h, `mutation { createPost(title: "T") { id } }`, alice.ID)
	var created struct {
		ID string `json:"id"`
	}
	mustData(t, resp, "createPost", &created)

	// Mutations without identity fail before touching the store.
	resp = do(t, h, fmt.Sprintf(`mutation { deletePost(id: %q) { id } }`, created.ID), "")
	mustError(t, resp, "you must be logged in")

	resp = do(t, h, fmt.Sprintf(`mutation { deletePost(id: %q) { id title } }`, created.ID), alice.ID)
	var deleted struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	mustData(t, resp, "deletePost", &deleted)
	if deleted.ID != created.ID || deleted.Title != "T" {
		t.Fatalf("deletePost = %+v", deleted)
	}

	resp = do(t, h, `{ allPosts { id } }`, "")
	var all []struct{}
	mustData(t, resp, "allPosts", &all)
	if len(all) != 0 {
		t.Fatalf("allPosts after delete = %+v", all)
	}
}

func TestHandler_TransportErrors(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t, false)

	r := httptest.NewRequest(http.MethodGet, "/graphql", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET status = %d, want 405", rr.Code)
	}

	r = httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json status = %d, want 400", rr.Code)
	}
}
