package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// OpenRouterAPIURL is the chat-completions endpoint backing all oracle
	// capabilities.
	OpenRouterAPIURL = "https://openrouter.ai/api/v1/chat/completions"
)

// Client wraps the scoring/generation language model. Every capability is a
// single request/response round trip; callers treat the model as unreliable
// and substitute conservative defaults on any failure.
type Client struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
	model      *string // Optional: if nil, uses the provider account default
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		apiURL: OpenRouterAPIURL,
		httpClient: &http.Client{
			Timeout: 300 * time.Second, // free models are slow
		},
		model: nil,
	}
}

// SetModel sets a specific model to use (optional)
func (c *Client) SetModel(model string) {
	c.model = &model
}

// SetAPIURL overrides the completions endpoint (used in tests).
func (c *Client) SetAPIURL(url string) {
	c.apiURL = url
}

// VacancyInfo is the posting snapshot passed into scoring and generation.
type VacancyInfo struct {
	Title       string
	Employer    string
	Description string
	Salary      string
}

// ContactInfo is injected into generated cover letters and intros.
type ContactInfo struct {
	Telegram string
	Email    string
}

// Evaluation is the scoring verdict for one vacancy.
type Evaluation struct {
	Score            int      `json:"score"`
	Recommendation   string   `json:"recommendation"`
	Priority         int      `json:"priority"`
	MatchReasons     []string `json:"match_reasons"`
	Concerns         []string `json:"concerns"`
	SalaryAssessment string   `json:"salary_assessment"`
}

// Classification is the verdict for one inbound employer message.
type Classification struct {
	IsBot            bool   `json:"is_bot"`
	IsHumanRecruiter bool   `json:"is_human_recruiter"`
	RequiresResponse bool   `json:"requires_response"`
	Sentiment        string `json:"sentiment"`
	Intent           string `json:"intent"`
	ShouldHandOff    bool   `json:"should_hand_off"`
}

// EvaluateVacancy scores a vacancy against the candidate resume. The output
// is validated and clamped before use; any malformed output is an error and
// the caller falls back to score 0 / skip.
func (c *Client) EvaluateVacancy(ctx context.Context, vacancy VacancyInfo, resume string) (*Evaluation, error) {
	prompt := fmt.Sprintf(`You evaluate how well a job vacancy matches a candidate.

Return STRICT JSON only, with exactly these keys:

{
  "score": 0,
  "recommendation": "apply",
  "priority": 3,
  "match_reasons": [],
  "concerns": [],
  "salary_assessment": ""
}

Rules:
- score: integer 0-100, overall fit.
- recommendation: one of "apply", "maybe", "skip".
- priority: integer 1-5, how urgently to apply (5 = immediately).
- match_reasons: short strings naming concrete matches.
- concerns: short strings naming concrete mismatches or risks.
- salary_assessment: one sentence on the offered salary vs the candidate.
- Output ONLY the JSON object, no explanations.

Vacancy:
Title: %s
Employer: %s
Salary: %s

%s

Candidate resume:
%s`, vacancy.Title, vacancy.Employer, vacancy.Salary, vacancy.Description, resume)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(extractJSON(content)), &eval); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation JSON: %w", err)
	}
	if err := validateEvaluation(&eval); err != nil {
		return nil, err
	}
	return &eval, nil
}

// WriteCoverLetter generates an application cover letter.
func (c *Client) WriteCoverLetter(ctx context.Context, vacancy VacancyInfo, resume string, contact ContactInfo) (string, error) {
	prompt := fmt.Sprintf(`Write a short cover letter (at most 150 words) for the vacancy below, from the candidate described by the resume. Plain text only, no placeholders, no subject line. Mention 2-3 concrete matches between the resume and the vacancy. Close with the contact details.

Vacancy:
Title: %s
Employer: %s

%s

Candidate resume:
%s

Contacts: telegram %s, email %s`,
		vacancy.Title, vacancy.Employer, vacancy.Description, resume, contact.Telegram, contact.Email)

	return c.complete(ctx, prompt)
}

// ClassifyMessage classifies one inbound employer message against the
// conversation so far.
func (c *Client) ClassifyMessage(ctx context.Context, messageText string, history []string) (*Classification, error) {
	prompt := fmt.Sprintf(`You classify an incoming message from an employer in a job-application chat.

Return STRICT JSON only:

{
  "is_bot": false,
  "is_human_recruiter": false,
  "requires_response": false,
  "sentiment": "neutral",
  "intent": "unknown",
  "should_hand_off": false
}

Rules:
- is_bot: true when the message is an automated screening bot or template.
- is_human_recruiter: true when a real person is clearly writing.
- requires_response: true when the message expects an answer.
- sentiment: one word, e.g. "positive", "neutral", "negative".
- intent: one short phrase, e.g. "screening_question", "interview_invite", "rejection".
- should_hand_off: true when the thread is promising enough that the candidate should take over personally.
- Output ONLY the JSON object.

Conversation so far:
%s

New message:
%s`, strings.Join(history, "\n"), messageText)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var cls Classification
	if err := json.Unmarshal([]byte(extractJSON(content)), &cls); err != nil {
		return nil, fmt.Errorf("failed to parse classification JSON: %w", err)
	}
	if cls.Sentiment == "" {
		cls.Sentiment = "neutral"
	}
	if cls.Intent == "" {
		cls.Intent = "unknown"
	}
	return &cls, nil
}

// DraftReply writes an applicant-voiced answer to an employer message.
func (c *Client) DraftReply(ctx context.Context, messageText, resume, vacancyTitle string) (string, error) {
	prompt := fmt.Sprintf(`You answer on behalf of a job applicant in a chat about the vacancy "%s". Write a short, polite, concrete reply to the employer message below, in the first person, using only facts from the resume. Plain text only.

Employer message:
%s

Applicant resume:
%s`, vacancyTitle, messageText, resume)

	return c.complete(ctx, prompt)
}

// DraftIntro writes the short follow-up message sent right after applying.
func (c *Client) DraftIntro(ctx context.Context, coverLetter string, contact ContactInfo) (string, error) {
	prompt := fmt.Sprintf(`Write one short chat message (2-3 sentences) from a job applicant who just submitted the application below. Friendly, concrete, no repetition of the whole letter. End with the contact details: telegram %s, email %s. Plain text only.

Cover letter already sent:
%s`, contact.Telegram, contact.Email, coverLetter)

	return c.complete(ctx, prompt)
}

// GenerateSearchTags proposes search query strings for the candidate, used
// when neither configuration nor the store has any active queries.
func (c *Client) GenerateSearchTags(ctx context.Context, resume string) ([]string, error) {
	prompt := fmt.Sprintf(`Propose 3-5 search query strings for a job board, tailored to the candidate below. Each query is 1-4 words, the kind a person would type into vacancy search. Return a STRICT JSON array of strings, nothing else.

Candidate resume:
%s`, resume)

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var tags []string
	if err := json.Unmarshal([]byte(extractJSONArray(content)), &tags); err != nil {
		return nil, fmt.Errorf("failed to parse tags JSON: %w", err)
	}

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("no usable tags in response")
	}
	return cleaned, nil
}

// complete performs one chat-completion round trip and returns the message
// content.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}
	if c.model != nil {
		reqBody["model"] = *c.model
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse API response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}

// validateEvaluation enforces the output contract: clamp numeric ranges and
// reject unknown recommendations.
func validateEvaluation(eval *Evaluation) error {
	switch eval.Recommendation {
	case "apply", "maybe", "skip":
	default:
		return fmt.Errorf("invalid recommendation %q", eval.Recommendation)
	}
	if eval.Score < 0 {
		eval.Score = 0
	}
	if eval.Score > 100 {
		eval.Score = 100
	}
	if eval.Priority < 1 {
		eval.Priority = 1
	}
	if eval.Priority > 5 {
		eval.Priority = 5
	}
	return nil
}

// extractJSON pulls the first JSON object out of a model response that may be
// wrapped in markdown fences or explanatory text.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		// No object found, let the JSON parser produce the error
		return content
	}
	return strings.TrimSpace(content[startIdx : endIdx+1])
}

// extractJSONArray pulls the first JSON array out of a model response.
func extractJSONArray(content string) string {
	content = strings.TrimSpace(content)

	startIdx := strings.Index(content, "[")
	endIdx := strings.LastIndex(content, "]")
	if startIdx == -1 || endIdx == -1 || startIdx > endIdx {
		return content
	}
	return strings.TrimSpace(content[startIdx : endIdx+1])
}
