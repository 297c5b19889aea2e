package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jobpath-app/go-discovery/internal/domain"
)

// ProgramService fetches a user's field-of-study program. A nil
// profile with a nil error means the user has no program on file.
type ProgramService interface {
	GetProgram(ctx context.Context, userID string) (*domain.ProgramProfile, error)
}

// HTTPProgramService talks to the external program-profile service.
type HTTPProgramService struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProgramService creates the client.
func NewHTTPProgramService(baseURL string, timeout time.Duration) *HTTPProgramService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProgramService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// GetProgram fetches the program profile for a user.
func (s *HTTPProgramService) GetProgram(ctx context.Context, userID string) (*domain.ProgramProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/programs/"+userID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("program: http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("program: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("program: status %d", resp.StatusCode)
	}

	var profile domain.ProgramProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("program: unmarshal: %w", err)
	}
	return &profile, nil
}

// ProgramFit is the outcome of scoring a listing against a program.
type ProgramFit struct {
	Match   bool
	Percent int
}

// programMatchThreshold is the keyword-hit percentage at which a
// listing counts as matching the program.
const programMatchThreshold = 40

// ScoreProgramFit scores a listing against the program's field and
// keywords: the percentage of program terms found in the listing's
// title, description and requirements.
func ScoreProgramFit(l *domain.Listing, program *domain.ProgramProfile) ProgramFit {
	if program == nil {
		return ProgramFit{}
	}

	terms := make([]string, 0, len(program.Keywords)+1)
	if program.Field != "" {
		terms = append(terms, program.Field)
	}
	terms = append(terms, program.Keywords...)
	if len(terms) == 0 {
		return ProgramFit{}
	}

	text := strings.ToLower(l.Title + " " + l.Description + " " + l.Requirements)

	hits := 0
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(text, term) {
			hits++
		}
	}

	percent := hits * 100 / len(terms)
	return ProgramFit{
		Match:   percent >= programMatchThreshold,
		Percent: percent,
	}
}
