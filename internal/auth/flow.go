package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/internal/forms"
	"github.com/superagent-ai/superagent/console/internal/sessions"
	"github.com/superagent-ai/superagent/console/internal/store"
	"github.com/superagent-ai/superagent/console/pkg/models"
	"github.com/superagent-ai/superagent/console/pkg/superagent"
)

var (
	// ErrInvalidEmail is returned when the sign-in email fails validation.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrUnsupportedProvider is returned for OAuth providers other than GitHub.
	ErrUnsupportedProvider = errors.New("unsupported oauth provider")
	// ErrIllegalTransition is returned when an event does not apply to the
	// current sign-in state.
	ErrIllegalTransition = errors.New("illegal sign-in transition")
)

// State is a step of the sign-in state machine.
type State string

const (
	StateSignedOut       State = "signed-out"
	StateOTPRequested    State = "otp-requested"
	StateOAuthRedirected State = "oauth-redirected"
	StateSignedIn        State = "signed-in"
)

var transitions = map[State][]State{
	StateSignedOut:       {StateOTPRequested, StateOAuthRedirected},
	StateOTPRequested:    {StateOTPRequested, StateSignedIn, StateSignedOut},
	StateOAuthRedirected: {StateSignedIn, StateSignedOut},
	StateSignedIn:        {StateSignedOut},
}

// CanTransition reports whether the machine may move from s to next.
func (s State) CanTransition(next State) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Provider is the hosted auth backend the flow drives. *GoTrue implements it.
type Provider interface {
	SignInWithOTP(ctx context.Context, email, redirectTo, challenge string) error
	AuthorizeURL(provider, redirectTo, challenge string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*AuthSession, error)
	VerifyOTP(ctx context.Context, email, token string) (*AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Identifier forwards user traits to the remote API.
type Identifier interface {
	IdentifyUser(ctx context.Context, traits any) (*superagent.Response[json.RawMessage], error)
}

// Outcome is what the HTTP layer renders after a flow step.
type Outcome struct {
	State State `json:"state"`
	// Redirect is where the browser should navigate next, if anywhere.
	Redirect string `json:"redirect,omitempty"`
	// Notification is a one-line message for the user.
	Notification string `json:"notification,omitempty"`
	// Session is set once the user is signed in.
	Session *sessions.Session `json:"-"`
	Profile *models.Profile   `json:"profile,omitempty"`
}

// Flow implements the console sign-in: email OTP or GitHub OAuth against the
// hosted provider, then a profile lookup and an optional identify call.
type Flow struct {
	provider     Provider
	profiles     store.ProfileStore
	sessions     sessions.Store
	identifier   func(token string) Identifier
	signedInPath string
}

// NewFlow wires a sign-in flow. identifier builds a resource client for the
// profile's API key; signedInPath is the post sign-in destination.
func NewFlow(p Provider, profiles store.ProfileStore, ss sessions.Store, identifier func(token string) Identifier, signedInPath string) *Flow {
	if signedInPath == "" {
		signedInPath = "/agents"
	}
	return &Flow{
		provider:     p,
		profiles:     profiles,
		sessions:     ss,
		identifier:   identifier,
		signedInPath: signedInPath,
	}
}

// RequestOTP validates the email and asks the provider to send a sign-in link.
func (f *Flow) RequestOTP(ctx context.Context, email, redirectTo, challenge string) (Outcome, error) {
	addr, err := forms.ValidateEmail(email)
	if err != nil {
		return Outcome{State: StateSignedOut, Notification: err.Error()}, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	if err := f.provider.SignInWithOTP(ctx, addr, redirectTo, challenge); err != nil {
		return f.failed(err)
	}
	log.Info().Str("email_domain", domainOf(addr)).Msg("Sign-in link requested")
	return Outcome{
		State:        StateOTPRequested,
		Notification: "🎉 Yay! Check your email for sign in link.",
	}, nil
}

// StartOAuth returns the provider URL the browser must be redirected to.
func (f *Flow) StartOAuth(provider, redirectTo, challenge string) (Outcome, error) {
	if provider != "github" {
		return Outcome{State: StateSignedOut, Notification: "Unsupported sign-in provider"},
			fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	return Outcome{
		State:    StateOAuthRedirected,
		Redirect: f.provider.AuthorizeURL(provider, redirectTo, challenge),
	}, nil
}

// CompleteCode finishes an OAuth or magic-link sign-in with the PKCE code.
func (f *Flow) CompleteCode(ctx context.Context, from State, code, verifier string) (Outcome, error) {
	if !from.CanTransition(StateSignedIn) {
		return Outcome{State: from}, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, StateSignedIn)
	}
	sess, err := f.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		return f.failed(err)
	}
	return f.HandleEvent(ctx, Event{Type: EventSignedIn, Session: sess})
}

// CompleteOTP finishes an email sign-in with the code from the email.
func (f *Flow) CompleteOTP(ctx context.Context, email, token string) (Outcome, error) {
	addr, err := forms.ValidateEmail(email)
	if err != nil {
		return Outcome{State: StateSignedOut, Notification: err.Error()}, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	sess, err := f.provider.VerifyOTP(ctx, addr, token)
	if err != nil {
		return f.failed(err)
	}
	return f.HandleEvent(ctx, Event{Type: EventSignedIn, Session: sess})
}

// HandleEvent reacts to an auth state change.
//
// On SIGNED_IN it looks up the user's profile; when the profile carries an
// API key it issues exactly one identify call. Navigation to the dashboard
// happens whether or not identify ran.
func (f *Flow) HandleEvent(ctx context.Context, ev Event) (Outcome, error) {
	switch ev.Type {
	case EventSignedOut:
		return Outcome{State: StateSignedOut, Redirect: "/"}, nil
	case EventSignedIn:
	default:
		return Outcome{State: StateSignedOut}, fmt.Errorf("%w: unknown event %q", ErrIllegalTransition, ev.Type)
	}
	if ev.Session == nil || ev.Session.User.ID == "" {
		return Outcome{State: StateSignedOut, Notification: "Sign in failed"}, fmt.Errorf("signed-in event without a user")
	}
	user := ev.Session.User

	profile, err := f.profiles.GetProfile(ctx, user.ID)
	var nf *store.ErrNotFound
	switch {
	case errors.As(err, &nf):
		profile = nil
	case err != nil:
		return Outcome{State: StateSignedOut, Notification: "Could not load your profile"}, fmt.Errorf("get profile: %w", err)
	}

	out := Outcome{State: StateSignedIn, Redirect: f.signedInPath, Profile: profile}

	if profile != nil && profile.HasAPIKey() {
		traits := models.UserTraits{
			Email:     user.Email,
			UserID:    user.ID,
			FirstName: profile.FirstName,
			LastName:  profile.LastName,
			Company:   profile.Company,
		}
		resp, err := f.identifier(profile.APIKey).IdentifyUser(ctx, traits)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("user_id", user.ID).Msg("Identify call failed")
			out.Notification = err.Error()
		case !resp.OK():
			log.Warn().Int("status", resp.StatusCode).Str("user_id", user.ID).Msg("Identify call rejected")
		}
	}

	sess := &sessions.Session{
		UserID:       user.ID,
		Email:        user.Email,
		AccessToken:  ev.Session.AccessToken,
		RefreshToken: ev.Session.RefreshToken,
	}
	if err := f.sessions.Create(ctx, sess); err != nil {
		return Outcome{State: StateSignedOut, Notification: "Sign in failed"}, fmt.Errorf("create session: %w", err)
	}
	out.Session = sess

	log.Info().Str("user_id", user.ID).Bool("has_profile", profile != nil).Msg("User signed in")
	return out, nil
}

// SignOut revokes the provider session and drops the console session.
func (f *Flow) SignOut(ctx context.Context, sessionID string) (Outcome, error) {
	sess, err := f.sessions.Get(ctx, sessionID)
	if err == nil {
		if err := f.provider.SignOut(ctx, sess.AccessToken); err != nil {
			log.Debug().Err(err).Msg("Provider sign-out failed")
		}
	}
	if err := f.sessions.Delete(ctx, sessionID); err != nil {
		return Outcome{State: StateSignedOut, Redirect: "/"}, fmt.Errorf("delete session: %w", err)
	}
	return f.HandleEvent(ctx, Event{Type: EventSignedOut})
}

// failed maps a provider error to a signed-out outcome with a notification.
func (f *Flow) failed(err error) (Outcome, error) {
	msg := err.Error()
	var perr *ProviderError
	if errors.As(err, &perr) {
		msg = perr.Message
	}
	return Outcome{State: StateSignedOut, Notification: msg}, err
}

func domainOf(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
