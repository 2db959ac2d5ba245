package dto

import (
	"time"

	"github.com/spec-kit/account-service/internal/domain"
)

// CreateSuiteRequest registers an SSO suite. The credentials must belong to the
// developer account whose id is APIKey.
type CreateSuiteRequest struct {
	Credentials
	APIKey       string `json:"apiKey" validate:"required,max=64"`
	SSOSuiteName string `json:"ssoSuiteName" validate:"required,max=128"`
}

// SuiteResponse is the public view of a suite.
type SuiteResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSuiteResponses maps suites for listing.
func NewSuiteResponses(suites []*domain.Suite) []SuiteResponse {
	out := make([]SuiteResponse, 0, len(suites))
	for _, s := range suites {
		out = append(out, SuiteResponse{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt})
	}
	return out
}
