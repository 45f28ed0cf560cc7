package aw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type chatDoc struct {
	ID       string   `json:"$id"`
	ChatID   string   `json:"chatID"`
	Messages []string `json:"messages"`
}

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "proj-1", zap.NewNop())
}

func TestGetNotFoundIsDistinguishable(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Document with the requested ID could not be found.","code":404,"type":"document_not_found"}`))
	}))
	d := NewDatabases(c, "db")

	var doc chatDoc
	err := d.Get(context.Background(), "chats", "missing", &doc)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if IsConflict(err) || IsUnauthorized(err) {
		t.Errorf("error %v matched the wrong condition", err)
	}
}

func TestListSendsQueriesAndDecodesDocuments(t *testing.T) {
	var gotQueries []string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQueries = r.URL.Query()["queries[]"]
		_, _ = w.Write([]byte(`{"total":2,"documents":[{"$id":"c1","chatID":"c1","messages":["m"]},{"$id":"c2","chatID":"c2"}]}`))
	}))
	d := NewDatabases(c, "db")

	var docs []chatDoc
	if err := d.List(context.Background(), "chats", []string{`{"method":"equal"}`}, &docs); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(gotQueries) != 1 || gotQueries[0] != `{"method":"equal"}` {
		t.Errorf("queries sent = %v", gotQueries)
	}
	if len(docs) != 2 || docs[0].ChatID != "c1" || len(docs[0].Messages) != 1 {
		t.Errorf("docs = %+v", docs)
	}
}

func TestListEmptyResultLeavesOutUntouched(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"documents":[]}`))
	}))
	d := NewDatabases(c, "db")

	var docs []chatDoc
	if err := d.List(context.Background(), "chats", nil, &docs); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("docs = %+v, want empty", docs)
	}
}

func TestCreateWrapsDocumentIDAndData(t *testing.T) {
	var body map[string]any
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"$id":"c1"}`))
	}))
	d := NewDatabases(c, "db")

	err := d.Create(context.Background(), "chats", "c1", map[string]any{"chatID": "c1"}, nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if body["documentId"] != "c1" {
		t.Errorf("documentId = %v", body["documentId"])
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["chatID"] != "c1" {
		t.Errorf("data = %v", body["data"])
	}
}

func TestSessionHeaderAttachedAfterLogin(t *testing.T) {
	var sawSession string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/account/sessions/email":
			_, _ = w.Write([]byte(`{"$id":"s1","userId":"u1","secret":"tok-123"}`))
		case "/account":
			sawSession = r.Header.Get("X-Appwrite-Session")
			_, _ = w.Write([]byte(`{"$id":"u1","email":"a@b.c","name":"A"}`))
		}
	}))
	acct := NewAccount(c)

	sess, err := acct.CreateEmailSession(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("CreateEmailSession() error = %v", err)
	}
	if sess.Secret != "tok-123" || sess.UserID != "u1" {
		t.Errorf("session = %+v", sess)
	}

	if _, err := acct.Get(context.Background()); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sawSession != "tok-123" {
		t.Errorf("session header = %q, want tok-123", sawSession)
	}
}

func TestUnauthorizedGet(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"User (role: guests) missing scope (account)","code":401,"type":"general_unauthorized_scope"}`))
	}))
	acct := NewAccount(c)

	_, err := acct.Get(context.Background())
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized(%v) = false, want true", err)
	}
}

func TestViewURL(t *testing.T) {
	c := NewClient("https://cloud.example.com/v1/", "proj-1", zap.NewNop())
	s := NewStorage(c, "avatars")

	got := s.ViewURL("f1")
	want := "https://cloud.example.com/v1/storage/buckets/avatars/files/f1/view?project=proj-1"
	if got != want {
		t.Errorf("ViewURL() = %s, want %s", got, want)
	}
}

func TestCreateFileUploadsMultipart(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not a multipart request: %v", err)
		}
		if got := r.FormValue("fileId"); got != "f1" {
			t.Errorf("fileId = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("file part missing: %v", err)
		}
		defer func() { _ = f.Close() }()
		if hdr.Filename != "avatar.png" {
			t.Errorf("filename = %q", hdr.Filename)
		}
		_, _ = w.Write([]byte(`{"$id":"f1"}`))
	}))
	s := NewStorage(c, "avatars")

	id, err := s.CreateFile(context.Background(), "f1", "avatar.png", strings.NewReader("fake-png"))
	if err != nil {
		t.Fatalf("CreateFile() error = %v", err)
	}
	if id != "f1" {
		t.Errorf("file id = %q, want f1", id)
	}
}
