// Package onboarding provisions a Superagent API user the first time a
// console user completes their profile.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/forms"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/contracts"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

// ErrAlreadyOnboarded is returned when the profile already holds an API key.
var ErrAlreadyOnboarded = errors.New("profile already onboarded")

// Form is the onboarding submission.
type Form struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
}

// Validate requires both names.
func (f *Form) Validate() error {
	var errs forms.ValidationErrors
	if strings.TrimSpace(f.FirstName) == "" {
		errs = append(errs, &forms.ValidationError{Field: "first_name", Message: "First name is required"})
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs = append(errs, &forms.ValidationError{Field: "last_name", Message: "Last name is required"})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Service creates the API user and records its token on the profile.
type Service struct {
	profiles store.ProfileStore
	clients  contracts.ClientFactory
}

func NewService(profiles store.ProfileStore, clients contracts.ClientFactory) *Service {
	return &Service{profiles: profiles, clients: clients}
}

// Onboard creates the remote API user for userID and stores the returned
// token as the profile's API key. The creation call carries no token of its
// own: the user does not have one yet.
func (s *Service) Onboard(ctx context.Context, userID, email string, form *Form) (*models.Profile, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	var nf *store.ErrNotFound
	switch {
	case errors.As(err, &nf):
		profile = &models.Profile{UserID: userID}
	case err != nil:
		return nil, fmt.Errorf("get profile: %w", err)
	case profile.HasAPIKey():
		return profile, ErrAlreadyOnboarded
	}

	resp, err := s.clients("").CreateAPIUser(ctx, map[string]string{
		"email":     email,
		"firstName": form.FirstName,
		"lastName":  form.LastName,
		"company":   form.Company,
	})
	if err != nil {
		return nil, fmt.Errorf("create api user: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("create api user: %s", resp.Message())
	}
	if resp.Data.Token == "" {
		return nil, errors.New("create api user: no token returned")
	}

	profile.APIKey = resp.Data.Token
	profile.FirstName = form.FirstName
	profile.LastName = form.LastName
	profile.Company = form.Company
	profile.IsOnboarded = true
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	log.Info().Str("user_id", userID).Str("api_user_id", resp.Data.ID).Msg("User onboarded")
	return profile, nil
}
