package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the capability the sync engine needs from the Canvas REST API.
// Each call returns already-decoded domain objects or an error on any
// transport or API failure.
type Client interface {
	// CurrentUserID returns the Canvas user id of the token owner.
	CurrentUserID(ctx context.Context) (int64, error)

	// Courses lists courses for the current user, filtered to the given
	// enrollment state ("active" excludes dropped and invited enrollments).
	Courses(ctx context.Context, enrollmentState string) ([]RemoteCourse, error)

	// CourseDetail fetches a single course with syllabus body and teacher info.
	CourseDetail(ctx context.Context, courseID int64) (*RemoteCourse, error)

	Assignments(ctx context.Context, courseID int64) ([]RemoteAssignment, error)
	Modules(ctx context.Context, courseID int64) ([]RemoteModule, error)
	ModuleItems(ctx context.Context, courseID, moduleID int64) ([]RemoteModuleItem, error)
	Announcements(ctx context.Context, courseID int64) ([]RemoteAnnouncement, error)
	Conversations(ctx context.Context) ([]RemoteConversation, error)
	ConversationDetail(ctx context.Context, conversationID int64) (*RemoteConversation, error)
	Files(ctx context.Context, courseID int64) ([]RemoteFile, error)

	// Enrollment returns the caller's own enrollment (with computed grades)
	// for one course, or nil when none exists.
	Enrollment(ctx context.Context, courseID int64) (*RemoteEnrollment, error)
}

const (
	defaultPerPage = 100

	// maxRetries bounds re-attempts on 429 and 5xx responses.
	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
)

// HTTPClient talks to a Canvas instance over its REST API.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient creates a client for the given Canvas base URL and API token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *HTTPClient) buildURL(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("per_page", strconv.Itoa(defaultPerPage))
	return c.baseURL + "/api/v1" + path + "?" + params.Encode()
}

// get fetches a single object (no pagination).
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	_, err := c.do(ctx, c.buildURL(path, params), out)
	return err
}

// getPaged fetches a whole collection, following rel="next" Link headers
// until the last page.
func getPaged[T any](ctx context.Context, c *HTTPClient, path string, params url.Values) ([]T, error) {
	var all []T
	next := c.buildURL(path, params)
	for next != "" {
		var page []T
		n, err := c.do(ctx, next, &page)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		next = n
	}
	return all, nil
}

// do performs one GET against a fully-built URL and decodes the body into
// out. Rate-limit (429) and server (5xx) responses are retried with
// exponential backoff; any other non-200 fails immediately. Returns the
// rel="next" page URL, empty on the last page.
func (c *HTTPClient) do(ctx context.Context, rawURL string, out any) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryBaseDelay << (attempt - 1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("canvas API returned %d for %s: %s", resp.StatusCode, rawURL, body)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return "", fmt.Errorf("canvas API returned %d for %s: %s", resp.StatusCode, rawURL, body)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			resp.Body.Close()
			return "", fmt.Errorf("failed to decode response for %s: %w", rawURL, err)
		}
		next := nextPageURL(resp.Header.Get("Link"))
		resp.Body.Close()
		return next, nil
	}
	return "", lastErr
}

// nextPageURL extracts the rel="next" target from a Link header, empty when
// there is no next page.
func nextPageURL(header string) string {
	for _, part := range strings.Split(header, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		for _, attr := range segments[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

// CurrentUserID implements Client.
func (c *HTTPClient) CurrentUserID(ctx context.Context) (int64, error) {
	var user struct {
		ID int64 `json:"id"`
	}
	if err := c.get(ctx, "/users/self", nil, &user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Courses implements Client.
func (c *HTTPClient) Courses(ctx context.Context, enrollmentState string) ([]RemoteCourse, error) {
	params := url.Values{}
	if enrollmentState != "" {
		params.Set("enrollment_state", enrollmentState)
	}
	return getPaged[RemoteCourse](ctx, c, "/courses", params)
}

// CourseDetail implements Client.
func (c *HTTPClient) CourseDetail(ctx context.Context, courseID int64) (*RemoteCourse, error) {
	params := url.Values{}
	params.Add("include[]", "syllabus_body")
	params.Add("include[]", "teachers")
	var course RemoteCourse
	if err := c.get(ctx, fmt.Sprintf("/courses/%d", courseID), params, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Assignments implements Client.
func (c *HTTPClient) Assignments(ctx context.Context, courseID int64) ([]RemoteAssignment, error) {
	return getPaged[RemoteAssignment](ctx, c, fmt.Sprintf("/courses/%d/assignments", courseID), nil)
}

// Modules implements Client.
func (c *HTTPClient) Modules(ctx context.Context, courseID int64) ([]RemoteModule, error) {
	return getPaged[RemoteModule](ctx, c, fmt.Sprintf("/courses/%d/modules", courseID), nil)
}

// ModuleItems implements Client.
func (c *HTTPClient) ModuleItems(ctx context.Context, courseID, moduleID int64) ([]RemoteModuleItem, error) {
	path := fmt.Sprintf("/courses/%d/modules/%d/items", courseID, moduleID)
	params := url.Values{}
	params.Add("include[]", "content_details")
	return getPaged[RemoteModuleItem](ctx, c, path, params)
}

// Announcements implements Client.
func (c *HTTPClient) Announcements(ctx context.Context, courseID int64) ([]RemoteAnnouncement, error) {
	params := url.Values{}
	params.Add("context_codes[]", fmt.Sprintf("course_%d", courseID))
	return getPaged[RemoteAnnouncement](ctx, c, "/announcements", params)
}

// Conversations implements Client.
func (c *HTTPClient) Conversations(ctx context.Context) ([]RemoteConversation, error) {
	return getPaged[RemoteConversation](ctx, c, "/conversations", nil)
}

// ConversationDetail implements Client.
func (c *HTTPClient) ConversationDetail(ctx context.Context, conversationID int64) (*RemoteConversation, error) {
	var conversation RemoteConversation
	if err := c.get(ctx, fmt.Sprintf("/conversations/%d", conversationID), nil, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Files implements Client.
func (c *HTTPClient) Files(ctx context.Context, courseID int64) ([]RemoteFile, error) {
	return getPaged[RemoteFile](ctx, c, fmt.Sprintf("/courses/%d/files", courseID), nil)
}

// Enrollment implements Client.
func (c *HTTPClient) Enrollment(ctx context.Context, courseID int64) (*RemoteEnrollment, error) {
	params := url.Values{}
	params.Set("user_id", "self")
	var enrollments []struct {
		Grades RemoteEnrollment `json:"grades"`
	}
	if err := c.get(ctx, fmt.Sprintf("/courses/%d/enrollments", courseID), params, &enrollments); err != nil {
		return nil, err
	}
	if len(enrollments) == 0 {
		return nil, nil
	}
	return &enrollments[0].Grades, nil
}
