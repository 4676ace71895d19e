package headhunter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the recruitment platform's API root.
	DefaultBaseURL = "https://api.hh.ru"

	perPage = 50
)

// ErrUnauthorized signals a missing or expired access token. Callers abort
// the current tick and retry after the session manager refreshes.
var ErrUnauthorized = errors.New("platform rejected credentials")

// APIError is a non-2xx platform response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error (status %d): %s", e.Status, e.Body)
}

// Client is a typed wrapper over the platform's search, apply and
// negotiation endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient() *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			// Apply success may arrive as a redirect whose Location holds
			// the negotiation id; keep the redirect response as is.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: "hh-autopilot/1.0",
	}
}

// SetBaseURL overrides the API root (used in tests).
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// SearchVacancies runs a vacancy search and drains all result pages.
func (c *Client) SearchVacancies(ctx context.Context, token, query string, params SearchParams) ([]VacancySummary, error) {
	values := url.Values{}
	values.Set("text", query)
	values.Set("per_page", strconv.Itoa(perPage))
	if params.SalaryFloor > 0 {
		values.Set("salary", strconv.Itoa(params.SalaryFloor))
	}
	if params.OnlyWithSalary {
		values.Set("only_with_salary", "true")
	}
	if params.Experience != "" {
		values.Set("experience", params.Experience)
	}
	if params.Employment != "" {
		values.Set("employment", params.Employment)
	}
	if params.Schedule != "" {
		values.Set("schedule", params.Schedule)
	}
	if params.Area != "" {
		values.Set("area", params.Area)
	}

	var all []VacancySummary
	for pageNum := 0; ; pageNum++ {
		values.Set("page", strconv.Itoa(pageNum))

		var resp page[VacancySummary]
		if err := c.getJSON(ctx, token, "/vacancies?"+values.Encode(), &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)

		if pageNum+1 >= resp.Pages || len(resp.Items) == 0 {
			break
		}
	}
	return all, nil
}

// GetVacancy fetches the full vacancy record.
func (c *Client) GetVacancy(ctx context.Context, token, vacancyID string) (*VacancyDetail, error) {
	var detail VacancyDetail
	if err := c.getJSON(ctx, token, "/vacancies/"+vacancyID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Apply submits an application and returns the negotiation id. The platform
// signals success either with a created-resource body or with a bare
// redirect-style response; when no id can be extracted from a successful
// response, a deterministic local id is synthesized so the vacancy is never
// left stuck after a real submission.
func (c *Client) Apply(ctx context.Context, token, vacancyID, resumeID, coverLetter string) (string, error) {
	form := url.Values{}
	form.Set("vacancy_id", vacancyID)
	form.Set("resume_id", resumeID)
	form.Set("message", coverLetter)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/negotiations", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	// 2xx and redirect-style 3xx responses are both success forms here.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrUnauthorized
	}
	if resp.StatusCode >= 400 || resp.StatusCode < 200 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	// Created-resource body with an id
	var created struct {
		ID string `json:"id"`
	}
	if len(body) > 0 && json.Unmarshal(body, &created) == nil && created.ID != "" {
		return created.ID, nil
	}

	// Redirect-style response: id is the last Location path segment
	if loc := resp.Header.Get("Location"); loc != "" {
		if id := lastPathSegment(loc); id != "" {
			return id, nil
		}
	}

	// Ambiguous success: the submission went through but no id came back.
	return "local-" + vacancyID, nil
}

// ListNegotiations returns all negotiations, draining pagination.
func (c *Client) ListNegotiations(ctx context.Context, token string) ([]NegotiationSummary, error) {
	var all []NegotiationSummary
	for pageNum := 0; ; pageNum++ {
		var resp page[NegotiationSummary]
		path := fmt.Sprintf("/negotiations?per_page=%d&page=%d", perPage, pageNum)
		if err := c.getJSON(ctx, token, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)

		if pageNum+1 >= resp.Pages || len(resp.Items) == 0 {
			break
		}
	}
	return all, nil
}

// ListMessages returns all messages of a negotiation, draining pagination.
func (c *Client) ListMessages(ctx context.Context, token, negotiationID string) ([]Message, error) {
	var all []Message
	for pageNum := 0; ; pageNum++ {
		var resp page[Message]
		path := fmt.Sprintf("/negotiations/%s/messages?per_page=%d&page=%d", negotiationID, perPage, pageNum)
		if err := c.getJSON(ctx, token, path, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Items...)

		if pageNum+1 >= resp.Pages || len(resp.Items) == 0 {
			break
		}
	}
	return all, nil
}

// SendMessage posts a message into a negotiation. Fire-and-forget: a failure
// surfaces as an error and is not retried here.
func (c *Client) SendMessage(ctx context.Context, token, negotiationID, text string) error {
	form := url.Values{}
	form.Set("message", text)

	path := fmt.Sprintf("%s/negotiations/%s/messages", c.baseURL, negotiationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return checkStatus(resp.StatusCode, body)
}

func (c *Client) getJSON(ctx context.Context, token, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := checkStatus(resp.StatusCode, body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Status: resp.StatusCode, Body: "malformed response body"}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
}

func checkStatus(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status < 200 || status >= 300:
		return &APIError{Status: status, Body: string(body)}
	}
	return nil
}

func lastPathSegment(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	trimmed := strings.TrimRight(parsed.Path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
