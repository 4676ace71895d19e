package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Nopass0/hh-autopilot/internal/config"
	"github.com/Nopass0/hh-autopilot/internal/headhunter"
	"github.com/Nopass0/hh-autopilot/internal/models"
	"github.com/Nopass0/hh-autopilot/internal/oracle"
	"github.com/Nopass0/hh-autopilot/internal/repository"
)

// Pipeline runs the search-evaluate-apply cycle. All durable state lives in
// the stores; the pipeline itself is stateless between runs.
type Pipeline struct {
	cfg          *config.Config
	platform     PlatformClient
	oracle       Oracle
	vacancies    VacancyStore
	applications ApplicationStore
	negotiations NegotiationStore
	messages     MessageStore
	tags         TagStore
	ledger       Ledger
	stats        StatsStore
	profile      *ProfileProvider
	notifier     Notifier

	sleep func(time.Duration)
	now   func() time.Time
}

func NewPipeline(
	cfg *config.Config,
	platform PlatformClient,
	oracleClient Oracle,
	vacancies VacancyStore,
	applications ApplicationStore,
	negotiations NegotiationStore,
	messages MessageStore,
	tags TagStore,
	ledger Ledger,
	stats StatsStore,
	profile *ProfileProvider,
	notifier Notifier,
) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		platform:     platform,
		oracle:       oracleClient,
		vacancies:    vacancies,
		applications: applications,
		negotiations: negotiations,
		messages:     messages,
		tags:         tags,
		ledger:       ledger,
		stats:        stats,
		profile:      profile,
		notifier:     notifier,
		sleep:        time.Sleep,
		now:          time.Now,
	}
}

// DueForSearch reports whether enough time has passed since the most recent
// discovery to run a full search cycle.
func (p *Pipeline) DueForSearch(ctx context.Context) (bool, error) {
	newest, err := p.vacancies.NewestFoundAt(ctx)
	if err != nil {
		return false, err
	}
	if newest == nil {
		return true, nil
	}
	return p.now().Sub(*newest) >= time.Duration(p.cfg.SearchInterval)*time.Second, nil
}

// RunSearchCycle resolves the active query set, searches each query, and
// evaluates and applies to every posting not yet in the store. Platform and
// oracle failures degrade to "skip this item"; only auth and persistence
// errors escalate to the caller.
func (p *Pipeline) RunSearchCycle(ctx context.Context, token string) error {
	resume := p.profile.Resume()

	// Postings stuck in found from an earlier failed submission are retried
	// first; the unresolved condition persists until an apply succeeds.
	if err := p.applyPending(ctx, token, resume); err != nil {
		return err
	}

	queries, err := p.resolveQueries(ctx, resume)
	if err != nil {
		return err
	}
	if len(queries) == 0 {
		log.Println("No search queries available, skipping search cycle")
		return nil
	}
	if len(queries) > p.cfg.QueriesPerTick {
		queries = queries[:p.cfg.QueriesPerTick]
	}

	for i, query := range queries {
		if i > 0 {
			p.sleep(time.Duration(p.cfg.SubmitDelay) * time.Second)
		}

		items, err := p.platform.SearchVacancies(ctx, token, query, p.searchParams())
		if err != nil {
			if errors.Is(err, headhunter.ErrUnauthorized) {
				return err
			}
			log.Printf("Search failed for query %q: %v", query, err)
			_ = p.ledger.Log(ctx, models.EventError, fmt.Sprintf("search %q: %v", query, err), nil)
			continue
		}

		_ = p.stats.Bump(ctx, p.now(), repository.StatsDelta{SearchesRun: 1})
		_ = p.ledger.Log(ctx, models.EventSearchRun, fmt.Sprintf("query %q returned %d postings", query, len(items)), nil)
		log.Printf("Query %q returned %d postings", query, len(items))

		newCount := 0
		for _, item := range items {
			exists, err := p.vacancies.ExistsByExternalID(ctx, item.ID)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := p.processPosting(ctx, token, query, item.ID, resume); err != nil {
				return err
			}
			newCount++
		}

		_ = p.tags.RecordSearch(ctx, query, newCount)
	}

	return nil
}

// resolveQueries merges configured query text with active search tags. When
// both are empty the oracle's tag generation runs once and the results are
// persisted as new tags.
func (p *Pipeline) resolveQueries(ctx context.Context, resume string) ([]string, error) {
	active, err := p.tags.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var queries []string
	for _, q := range p.cfg.Queries {
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	for _, tag := range active {
		if !seen[tag.Query] {
			seen[tag.Query] = true
			queries = append(queries, tag.Query)
		}
	}
	if len(queries) > 0 {
		return queries, nil
	}

	generated, err := p.oracle.GenerateSearchTags(ctx, resume)
	if err != nil {
		log.Printf("Tag generation failed: %v", err)
		return nil, nil
	}
	for _, query := range generated {
		tag := models.SearchTag{
			ID:     uuid.New().String(),
			Query:  query,
			Active: true,
		}
		if err := p.tags.Create(ctx, &tag); err != nil {
			return nil, err
		}
		_ = p.ledger.Log(ctx, models.EventTagGenerated, query, nil)
	}
	log.Printf("Generated %d search tags", len(generated))
	return generated, nil
}

// processPosting fetches, evaluates and persists one new posting; when the
// decision policy approves, it also submits the application.
func (p *Pipeline) processPosting(ctx context.Context, token, query, externalID, resume string) error {
	detail, err := p.platform.GetVacancy(ctx, token, externalID)
	if err != nil {
		if errors.Is(err, headhunter.ErrUnauthorized) {
			return err
		}
		log.Printf("Failed to fetch vacancy %s: %v", externalID, err)
		_ = p.ledger.Log(ctx, models.EventError, fmt.Sprintf("fetch vacancy %s: %v", externalID, err), nil)
		return nil
	}

	eval, err := p.oracle.EvaluateVacancy(ctx, vacancyInfo(detail), resume)
	if err != nil {
		// The posting is still recorded: conservative default, never a
		// lost posting or a dead tick.
		log.Printf("Evaluation failed for vacancy %s, using conservative default: %v", externalID, err)
		eval = &oracle.Evaluation{Score: 0, Recommendation: models.RecommendationSkip, Priority: 1}
	}

	shouldApply := p.cfg.AutoApply &&
		eval.Score >= p.cfg.MinScore &&
		eval.Recommendation != models.RecommendationSkip

	status := models.VacancyStatusSkipped
	if shouldApply {
		status = models.VacancyStatusFound
	}

	vacancy := models.Vacancy{
		ID:               uuid.New().String(),
		ExternalID:       detail.ID,
		Title:            detail.Name,
		Employer:         detail.Employer.Name,
		Description:      detail.Description,
		URL:              detail.AlternateURL,
		Status:           status,
		Score:            eval.Score,
		Priority:         eval.Priority,
		Recommendation:   eval.Recommendation,
		MatchReasons:     eval.MatchReasons,
		Concerns:         eval.Concerns,
		SalaryAssessment: eval.SalaryAssessment,
		FoundAt:          p.now(),
	}
	if detail.Salary != nil {
		vacancy.SalaryFrom = detail.Salary.From
		vacancy.SalaryTo = detail.Salary.To
		if detail.Salary.Currency != "" {
			currency := detail.Salary.Currency
			vacancy.SalaryCurrency = &currency
		}
	}

	if err := p.vacancies.Create(ctx, &vacancy); err != nil {
		return err
	}
	_ = p.stats.Bump(ctx, p.now(), repository.StatsDelta{VacanciesFound: 1})

	if !shouldApply {
		log.Printf("Skipping vacancy %s (%s): score %d, recommendation %s", detail.ID, detail.Name, eval.Score, eval.Recommendation)
		_ = p.ledger.Log(ctx, models.EventVacancySkipped, fmt.Sprintf("%s: score %d", detail.Name, eval.Score), &vacancy.ID)
		return nil
	}

	_ = p.ledger.Log(ctx, models.EventVacancyFound, fmt.Sprintf("%s: score %d", detail.Name, eval.Score), &vacancy.ID)

	// Rate-limit courtesy delay before the submission, not a retry backoff
	p.sleep(time.Duration(p.cfg.SubmitDelay) * time.Second)
	return p.applyToVacancy(ctx, token, &vacancy, query, resume)
}

// applyPending retries applications for vacancies left in found by a
// previous failed attempt.
func (p *Pipeline) applyPending(ctx context.Context, token, resume string) error {
	pending, err := p.vacancies.ListByStatuses(ctx, models.VacancyStatusFound)
	if err != nil {
		return err
	}
	for i := range pending {
		if i > 0 {
			p.sleep(time.Duration(p.cfg.SubmitDelay) * time.Second)
		}
		if err := p.applyToVacancy(ctx, token, &pending[i], "", resume); err != nil {
			return err
		}
	}
	return nil
}

// applyToVacancy generates the cover letter, submits the application and
// records the application, negotiation and best-effort intro message. A
// generation or platform failure leaves the vacancy in found for the next
// cycle to retry.
func (p *Pipeline) applyToVacancy(ctx context.Context, token string, vacancy *models.Vacancy, query, resume string) error {
	info := oracle.VacancyInfo{
		Title:       vacancy.Title,
		Employer:    vacancy.Employer,
		Description: vacancy.Description,
		Salary:      salaryText(vacancy),
	}

	letter, err := p.oracle.WriteCoverLetter(ctx, info, resume, p.profile.Contact())
	if err != nil {
		log.Printf("Cover letter generation failed for vacancy %s: %v", vacancy.ExternalID, err)
		_ = p.ledger.Log(ctx, models.EventError, fmt.Sprintf("cover letter %s: %v", vacancy.ExternalID, err), &vacancy.ID)
		return nil
	}

	negotiationID, err := p.platform.Apply(ctx, token, vacancy.ExternalID, p.cfg.HHResumeID, letter)
	if err != nil {
		if errors.Is(err, headhunter.ErrUnauthorized) {
			return err
		}
		log.Printf("Application failed for vacancy %s: %v", vacancy.ExternalID, err)
		_ = p.ledger.Log(ctx, models.EventError, fmt.Sprintf("apply %s: %v", vacancy.ExternalID, err), &vacancy.ID)
		return nil
	}

	application := models.ApplicationResponse{
		ID:            uuid.New().String(),
		VacancyID:     vacancy.ID,
		NegotiationID: negotiationID,
		CoverLetter:   letter,
		SendStatus:    models.SendStatusSent,
	}
	if err := p.applications.Create(ctx, &application); err != nil {
		return err
	}
	if err := p.vacancies.MarkApplied(ctx, vacancy.ID, p.now()); err != nil {
		return err
	}

	negotiation := models.Negotiation{
		ID:         uuid.New().String(),
		ExternalID: negotiationID,
		VacancyID:  vacancy.ID,
		Employer:   vacancy.Employer,
	}
	if err := p.negotiations.Create(ctx, &negotiation); err != nil {
		return err
	}

	log.Printf("Applied to vacancy %s (%s), negotiation %s", vacancy.ExternalID, vacancy.Title, negotiationID)
	_ = p.stats.Bump(ctx, p.now(), repository.StatsDelta{ApplicationsSent: 1})
	_ = p.ledger.Log(ctx, models.EventApplicationSent, vacancy.Title, &vacancy.ID)
	if query != "" {
		_ = p.tags.RecordApplication(ctx, query)
	}
	if p.notifier != nil {
		_ = p.notifier.NotifyApplication(vacancy.Title, vacancy.Employer, vacancy.Score)
	}

	// Best-effort intro message; a failure here never undoes the apply
	intro, err := p.oracle.DraftIntro(ctx, letter, p.profile.Contact())
	if err != nil {
		log.Printf("Intro generation failed for negotiation %s: %v", negotiationID, err)
		return nil
	}
	if err := p.platform.SendMessage(ctx, token, negotiationID, intro); err != nil {
		log.Printf("Intro send failed for negotiation %s: %v", negotiationID, err)
		return nil
	}

	message := models.ChatMessage{
		ID:             uuid.New().String(),
		NegotiationID:  negotiation.ID,
		Author:         models.AuthorApplicant,
		Text:           intro,
		IsAutoResponse: true,
	}
	if _, err := p.messages.Append(ctx, &message); err != nil {
		return err
	}
	_ = p.stats.Bump(ctx, p.now(), repository.StatsDelta{MessagesSent: 1})
	_ = p.ledger.Log(ctx, models.EventMessageSent, "intro sent", &vacancy.ID)
	return nil
}

func (p *Pipeline) searchParams() headhunter.SearchParams {
	return headhunter.SearchParams{
		SalaryFloor:    p.cfg.Filters.SalaryFloor,
		OnlyWithSalary: p.cfg.Filters.OnlyWithSalary,
		Experience:     p.cfg.Filters.Experience,
		Employment:     p.cfg.Filters.Employment,
		Schedule:       p.cfg.Filters.Schedule,
		Area:           p.cfg.Filters.Area,
	}
}

func vacancyInfo(detail *headhunter.VacancyDetail) oracle.VacancyInfo {
	info := oracle.VacancyInfo{
		Title:       detail.Name,
		Employer:    detail.Employer.Name,
		Description: detail.Description,
	}
	if detail.Salary != nil {
		info.Salary = formatSalary(detail.Salary.From, detail.Salary.To, detail.Salary.Currency)
	}
	return info
}

func salaryText(vacancy *models.Vacancy) string {
	currency := ""
	if vacancy.SalaryCurrency != nil {
		currency = *vacancy.SalaryCurrency
	}
	return formatSalary(vacancy.SalaryFrom, vacancy.SalaryTo, currency)
}

func formatSalary(from, to *int, currency string) string {
	switch {
	case from != nil && to != nil:
		return fmt.Sprintf("%d-%d %s", *from, *to, currency)
	case from != nil:
		return fmt.Sprintf("from %d %s", *from, currency)
	case to != nil:
		return fmt.Sprintf("up to %d %s", *to, currency)
	}
	return "not stated"
}
