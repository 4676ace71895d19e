package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"score": 85}`,
			expected: `{"score": 85}`,
		},
		{
			name:     "JSON with markdown code blocks",
			input:    "```json\n{\"score\": 85}\n```",
			expected: `{"score": 85}`,
		},
		{
			name:     "JSON with explanatory text before",
			input:    "Here is my evaluation:\n{\"score\": 85}",
			expected: `{"score": 85}`,
		},
		{
			name:     "JSON with text before and after",
			input:    "Evaluation below.\n{\"score\": 85}\nGood luck!",
			expected: `{"score": 85}`,
		},
		{
			name:     "no JSON at all",
			input:    "I cannot evaluate this vacancy.",
			expected: "I cannot evaluate this vacancy.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSON(tt.input)
			if result != tt.expected {
				t.Errorf("Expected:\n%s\n\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	input := "```json\n[\"golang developer\", \"backend engineer\"]\n```"
	expected := `["golang developer", "backend engineer"]`
	if got := extractJSONArray(input); got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestValidateEvaluation(t *testing.T) {
	tests := []struct {
		name     string
		eval     Evaluation
		wantErr  bool
		score    int
		priority int
	}{
		{
			name:     "valid",
			eval:     Evaluation{Score: 85, Recommendation: "apply", Priority: 4},
			wantErr:  false,
			score:    85,
			priority: 4,
		},
		{
			name:     "score clamped high",
			eval:     Evaluation{Score: 150, Recommendation: "apply", Priority: 3},
			wantErr:  false,
			score:    100,
			priority: 3,
		},
		{
			name:     "score clamped low and priority raised",
			eval:     Evaluation{Score: -10, Recommendation: "skip", Priority: 0},
			wantErr:  false,
			score:    0,
			priority: 1,
		},
		{
			name:    "invalid recommendation",
			eval:    Evaluation{Score: 85, Recommendation: "yes please", Priority: 3},
			wantErr: true,
		},
		{
			name:    "empty recommendation",
			eval:    Evaluation{Score: 85, Priority: 3},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEvaluation(&tt.eval)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tt.eval.Score != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, tt.eval.Score)
			}
			if tt.eval.Priority != tt.priority {
				t.Errorf("expected priority %d, got %d", tt.priority, tt.eval.Priority)
			}
		})
	}
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		}
		if err := writeJSON(w, resp); err != nil {
			t.Fatalf("failed to write response: %v", err)
		}
	}))
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func TestEvaluateVacancy_ParsesResponse(t *testing.T) {
	server := completionServer(t, "```json\n{\"score\": 85, \"recommendation\": \"apply\", \"priority\": 4, \"match_reasons\": [\"Go experience\"], \"concerns\": [], \"salary_assessment\": \"above expectations\"}\n```")
	defer server.Close()

	client := NewClient("test-key")
	client.SetAPIURL(server.URL)

	eval, err := client.EvaluateVacancy(context.Background(), VacancyInfo{Title: "Go Developer"}, "resume text")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if eval.Score != 85 || eval.Recommendation != "apply" || eval.Priority != 4 {
		t.Errorf("unexpected evaluation: %+v", eval)
	}
	if len(eval.MatchReasons) != 1 || eval.MatchReasons[0] != "Go experience" {
		t.Errorf("unexpected match reasons: %v", eval.MatchReasons)
	}
}

func TestEvaluateVacancy_MalformedOutput(t *testing.T) {
	server := completionServer(t, "Sorry, I can't help with that.")
	defer server.Close()

	client := NewClient("test-key")
	client.SetAPIURL(server.URL)

	if _, err := client.EvaluateVacancy(context.Background(), VacancyInfo{}, "resume"); err == nil {
		t.Fatal("expected error for malformed output, got nil")
	}
}

func TestClassifyMessage_Defaults(t *testing.T) {
	server := completionServer(t, `{"is_bot": true, "requires_response": true}`)
	defer server.Close()

	client := NewClient("test-key")
	client.SetAPIURL(server.URL)

	cls, err := client.ClassifyMessage(context.Background(), "Please answer our screening questions", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !cls.IsBot || !cls.RequiresResponse {
		t.Errorf("unexpected classification: %+v", cls)
	}
	if cls.Sentiment != "neutral" || cls.Intent != "unknown" {
		t.Errorf("expected defaulted sentiment/intent, got %s/%s", cls.Sentiment, cls.Intent)
	}
}

func TestGenerateSearchTags(t *testing.T) {
	server := completionServer(t, "Here are some queries:\n[\"golang developer\", \" backend engineer \", \"\"]")
	defer server.Close()

	client := NewClient("test-key")
	client.SetAPIURL(server.URL)

	tags, err := client.GenerateSearchTags(context.Background(), "resume")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags after cleanup, got %d: %v", len(tags), tags)
	}
	if tags[1] != "backend engineer" {
		t.Errorf("expected trimmed tag, got %q", tags[1])
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limited"}`)
	}))
	defer server.Close()

	client := NewClient("test-key")
	client.SetAPIURL(server.URL)

	if _, err := client.DraftReply(context.Background(), "msg", "resume", "title"); err == nil {
		t.Fatal("expected error on API failure, got nil")
	}
}
