package headhunter

// Salary is the optional salary block on a vacancy.
type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
	Gross    bool   `json:"gross"`
}

// Employer is the employer block on vacancies and negotiations.
type Employer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// VacancySummary is one item of a vacancy search page.
type VacancySummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Employer     Employer `json:"employer"`
	Salary       *Salary  `json:"salary"`
	AlternateURL string   `json:"alternate_url"`
}

// VacancyDetail is the full vacancy record.
type VacancyDetail struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Employer     Employer `json:"employer"`
	Salary       *Salary  `json:"salary"`
	AlternateURL string   `json:"alternate_url"`
	Experience   struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"experience"`
	Employment struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"employment"`
	Schedule struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"schedule"`
	KeySkills []struct {
		Name string `json:"name"`
	} `json:"key_skills"`
}

// NegotiationSummary is one item of the negotiations list. State.ID carries
// the platform-side lifecycle ("response", "invitation", "discard").
type NegotiationSummary struct {
	ID    string `json:"id"`
	State struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"state"`
	ViewedByOpponent bool `json:"viewed_by_opponent"`
	Vacancy          struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Employer Employer `json:"employer"`
	} `json:"vacancy"`
}

// Message is one message inside a negotiation thread.
type Message struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Author struct {
		ParticipantType string `json:"participant_type"`
	} `json:"author"`
	CreatedAt string `json:"created_at"`
}

// SearchParams are the vacancy search filters supported by the client.
type SearchParams struct {
	SalaryFloor    int
	OnlyWithSalary bool
	Experience     string
	Employment     string
	Schedule       string
	Area           string
}

// page is the common paging envelope of list endpoints.
type page[T any] struct {
	Items   []T `json:"items"`
	Found   int `json:"found"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
}
