package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ipmerge/ipmerge/src/internal/errors"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClientWithBaseURL(server.URL, "secret-token", server.Client()), server
}

func TestGetFile_Found(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/contents/BestProxy/proxy.txt" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Unexpected Accept header %q", got)
		}
		_, _ = w.Write([]byte(`{"type":"file","path":"BestProxy/proxy.txt","sha":"abc123","size":10}`))
	})

	lookup, err := client.GetFile(context.Background(), "owner", "repo", "BestProxy/proxy.txt", "")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if lookup.State != FileFound || lookup.SHA != "abc123" {
		t.Errorf("Expected found with sha abc123, got %+v", lookup)
	}
}

func TestGetFile_BranchRef(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "data" {
			t.Errorf("Expected ref=data, got %q", got)
		}
		_, _ = w.Write([]byte(`{"type":"file","sha":"abc"}`))
	})

	if _, err := client.GetFile(context.Background(), "owner", "repo", "proxy.txt", "data"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	})

	lookup, err := client.GetFile(context.Background(), "owner", "repo", "proxy.txt", "")
	if err != nil {
		t.Fatalf("Expected 404 to be a value, got error %v", err)
	}
	if lookup.State != FileAbsent || lookup.SHA != "" {
		t.Errorf("Expected absent lookup, got %+v", lookup)
	}
}

func TestGetFile_OtherError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
	})

	_, err := client.GetFile(context.Background(), "owner", "repo", "proxy.txt", "")
	if err == nil {
		t.Fatal("Expected error for 401")
	}
	if !errors.HasCode(err, errors.ErrCodePublish) {
		t.Errorf("Expected publish error, got %v", err)
	}
}

func TestGetFile_Directory(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"type":"dir","sha":"abc"}`))
	})

	if _, err := client.GetFile(context.Background(), "owner", "repo", "BestProxy", ""); err == nil {
		t.Error("Expected error when the path is a directory")
	}
}

func TestPutFile_Create(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if _, ok := body["sha"]; ok {
			t.Error("Expected no sha when creating a file")
		}
		if _, ok := body["branch"]; ok {
			t.Error("Expected no branch when none is configured")
		}
		if body["message"] != "Update proxy.txt" {
			t.Errorf("Unexpected message %v", body["message"])
		}
		decoded, err := base64.StdEncoding.DecodeString(body["content"].(string))
		if err != nil {
			t.Fatalf("Content is not base64: %v", err)
		}
		if string(decoded) != "1.1.1.1\n2.2.2.2" {
			t.Errorf("Unexpected content %q", string(decoded))
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"sha":"blob1"},"commit":{"sha":"commit1"}}`))
	})

	result, err := client.PutFile(context.Background(), "owner", "repo", "proxy.txt", FileUpdate{
		Message: "Update proxy.txt",
		Content: []byte("1.1.1.1\n2.2.2.2"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.Created || result.CommitSHA != "commit1" || result.ContentSHA != "blob1" {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestPutFile_UpdateWithRevision(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body putContentRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("Failed to decode body: %v", err)
		}
		if body.SHA != "abc123" {
			t.Errorf("Expected sha abc123, got %q", body.SHA)
		}
		if body.Branch != "data" {
			t.Errorf("Expected branch data, got %q", body.Branch)
		}
		_, _ = w.Write([]byte(`{"content":{"sha":"blob2"},"commit":{"sha":"commit2"}}`))
	})

	result, err := client.PutFile(context.Background(), "owner", "repo", "proxy.txt", FileUpdate{
		Message: "update",
		Content: []byte("x"),
		SHA:     "abc123",
		Branch:  "data",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.Created {
		t.Error("Expected 200 to be reported as an update")
	}
	if result.CommitSHA != "commit2" {
		t.Errorf("Expected commit2, got %s", result.CommitSHA)
	}
}

func TestPutFile_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   errors.ErrorCode
	}{
		{name: "conflict", status: http.StatusConflict, code: errors.ErrCodeConflict},
		{name: "stale sha", status: http.StatusUnprocessableEntity, code: errors.ErrCodeConflict},
		{name: "forbidden", status: http.StatusForbidden, code: errors.ErrCodePublish},
		{name: "server error", status: http.StatusInternalServerError, code: errors.ErrCodePublish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"message":"rejected"}`))
			})

			_, err := client.PutFile(context.Background(), "owner", "repo", "proxy.txt", FileUpdate{Message: "m"})
			if err == nil {
				t.Fatal("Expected error")
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestContentsEndpoint(t *testing.T) {
	got := contentsEndpoint("owner", "repo", "/dir with space/file.txt")
	want := "/repos/owner/repo/contents/dir%20with%20space/file.txt"
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
