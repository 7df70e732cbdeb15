package service

import (
	"fmt"
	"html"
	"strings"
	"time"

	"anoa.com/campusrecruit/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

const (
	jobsIndex     = "jobs"
	signerKeyName = "CampusJobsTenantSigner"
)

type JobSearchService interface {
	IndexJob(job *entity.Job) error
	DeleteJob(id uuid.UUID) error
	GenerateSearchToken(role entity.Role, companyID *uuid.UUID) (string, error)
}

type meiliSearchService struct {
	client        meilisearch.ServiceManager
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
	tokenTTL      time.Duration
}

func NewMeiliSearchService(client meilisearch.ServiceManager) JobSearchService {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		tokenTTL:  24 * time.Hour,
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *meiliSearchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{Limit: 20})
	if err != nil {
		log.Warn().Err(err).Msg("failed to list meilisearch keys")
		return
	}

	for _, key := range resp.Results {
		if key.Name == signerKeyName {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			return
		}
	}

	key, err := s.client.CreateKey(&meilisearch.Key{
		Name:        signerKeyName,
		Description: "Signs tenant tokens for job search",
		Actions:     []string{"search"},
		Indexes:     []string{jobsIndex},
		ExpiresAt:   time.Now().AddDate(100, 0, 0),
	})
	if err != nil {
		log.Warn().Err(err).Msg("failed to create meilisearch signing key")
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Info().Msg("created meilisearch signing key")
}

func (s *meiliSearchService) initIndexes() {
	filterable := []any{"company_id", "location"}
	if _, err := s.client.Index(jobsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.Warn().Err(err).Msg("failed to update jobs filterable attributes")
	}

	sortable := []string{"created_at"}
	if _, err := s.client.Index(jobsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.Warn().Err(err).Msg("failed to update jobs sortable attributes")
	}
}

type jobDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	CreatedAt   int64  `json:"created_at"`
}

func newJobDocument(job *entity.Job, sanitizer *bluemonday.Policy) jobDocument {
	doc := jobDocument{
		ID:          job.ID.String(),
		Title:       job.Title,
		Description: cleanForIndex(sanitizer, job.Description),
		CompanyID:   job.CompanyID.String(),
		CreatedAt:   job.CreatedAt.Unix(),
	}
	if job.Location != nil {
		doc.Location = *job.Location
	}
	if job.Company != nil {
		doc.CompanyName = job.Company.DisplayName()
	}
	return doc
}

// cleanForIndex strips markup so descriptions pasted from rich editors
// index as plain words.
func cleanForIndex(p *bluemonday.Policy, content string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "</li>", "</div>"} {
		content = strings.ReplaceAll(content, tag, " ")
	}
	cleaned := html.UnescapeString(p.Sanitize(content))
	return strings.Join(strings.Fields(cleaned), " ")
}

func (s *meiliSearchService) IndexJob(job *entity.Job) error {
	doc := newJobDocument(job, s.sanitizer)
	task, err := s.client.Index(jobsIndex).AddDocuments([]jobDocument{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index job %s: %w", job.ID, err)
	}
	log.Debug().Str("job_id", doc.ID).Int64("task_uid", task.TaskUID).Msg("job indexed")
	return nil
}

func (s *meiliSearchService) DeleteJob(id uuid.UUID) error {
	if _, err := s.client.Index(jobsIndex).DeleteDocument(id.String()); err != nil {
		return fmt.Errorf("failed to remove job %s from index: %w", id, err)
	}
	return nil
}

// searchRules scopes a company to its own postings so the dashboard search
// box only returns jobs it owns. Everyone else searches the whole catalog.
func searchRules(role entity.Role, companyID *uuid.UUID) map[string]any {
	if role == entity.RoleCompany && companyID != nil {
		return map[string]any{
			jobsIndex: map[string]any{"filter": fmt.Sprintf("company_id = '%s'", companyID.String())},
		}
	}
	return map[string]any{jobsIndex: map[string]any{}}
}

func (s *meiliSearchService) GenerateSearchToken(role entity.Role, companyID *uuid.UUID) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	return s.client.GenerateTenantToken(s.signingKeyUID, searchRules(role, companyID), &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(s.tokenTTL),
	})
}

type noopSearch struct{}

// NewNoopSearchService is used when no meilisearch host is configured.
func NewNoopSearchService() JobSearchService {
	return noopSearch{}
}

func (noopSearch) IndexJob(*entity.Job) error { return nil }
func (noopSearch) DeleteJob(uuid.UUID) error  { return nil }
func (noopSearch) GenerateSearchToken(entity.Role, *uuid.UUID) (string, error) {
	return "", nil
}

func strPtr(s string) *string {
	return &s
}
