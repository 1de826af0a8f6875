package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCoursesFollowsPagination(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Query().Get("page") {
		case "", "1":
			next := fmt.Sprintf("%s/api/v1/courses?page=2", serverURL(r))
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, next, next))
			fmt.Fprint(w, `[{"id": 1, "name": "Algorithms"}, {"id": 2, "name": "Databases"}]`)
		case "2":
			w.Header().Set("Link", `<ignored>; rel="prev"`)
			fmt.Fprint(w, `[{"id": 3, "name": "Operating Systems"}]`)
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret-token")
	courses, err := client.Courses(context.Background(), "active")
	if err != nil {
		t.Fatalf("Courses: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("got %d courses, want 3 across both pages", len(courses))
	}
	if courses[2].ID != 3 {
		t.Errorf("last course ID = %d, want 3", courses[2].ID)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("Authorization header = %q", gotAuth)
	}
}

func TestDoRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"id": 42}`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	id, err := client.CurrentUserID(context.Background())
	if err != nil {
		t.Fatalf("CurrentUserID: %v", err)
	}
	if id != 42 {
		t.Errorf("user ID = %d, want 42", id)
	}
	if calls != 2 {
		t.Errorf("server saw %d requests, want 2", calls)
	}
}

func TestDoRetriesRateLimit(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "throttled", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	if _, err := client.Conversations(context.Background()); err != nil {
		t.Fatalf("Conversations: %v", err)
	}
	if calls != 2 {
		t.Errorf("server saw %d requests, want 2", calls)
	}
}

func TestDoGivesUpAfterMaxRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	_, err := client.CurrentUserID(context.Background())
	if err == nil {
		t.Fatal("expected error from persistently failing server")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want the 503 status surfaced", err)
	}
	if calls != maxRetries+1 {
		t.Errorf("server saw %d requests, want %d", calls, maxRetries+1)
	}
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "no such user", http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "tok")
	if _, err := client.CurrentUserID(context.Background()); err == nil {
		t.Fatal("expected error for 404")
	}
	if calls != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 4xx)", calls)
	}
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{
			name:   "next among other rels",
			header: `<https://canvas.test/api/v1/courses?page=1>; rel="current", <https://canvas.test/api/v1/courses?page=2>; rel="next", <https://canvas.test/api/v1/courses?page=9>; rel="last"`,
			want:   "https://canvas.test/api/v1/courses?page=2",
		},
		{
			name:   "last page",
			header: `<https://canvas.test/api/v1/courses?page=9>; rel="current", <https://canvas.test/api/v1/courses?page=1>; rel="first"`,
			want:   "",
		},
		{
			name:   "empty header",
			header: "",
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextPageURL(tt.header); got != tt.want {
				t.Errorf("nextPageURL(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func serverURL(r *http.Request) string {
	return "http://" + r.Host
}
