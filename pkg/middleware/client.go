package middleware

import (
	"context"

	"github.com/superagent-ai/superagent/console/pkg/contracts"
	"github.com/superagent-ai/superagent/console/pkg/models"
)

const (
	clientKey  contextKey = "resource_client"
	profileKey contextKey = "profile"
)

// SetClient stores the request-scoped resource client in the context.
func SetClient(ctx context.Context, c contracts.ResourceClient) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// GetClient returns the request-scoped resource client, or nil.
func GetClient(ctx context.Context) contracts.ResourceClient {
	if v, ok := ctx.Value(clientKey).(contracts.ResourceClient); ok {
		return v
	}
	return nil
}

// SetProfile stores the caller's profile in the context.
func SetProfile(ctx context.Context, p *models.Profile) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, profileKey, p)
}

// GetProfile returns the caller's profile, or nil when none is stored
// (bearer callers and users who have not created one yet).
func GetProfile(ctx context.Context) *models.Profile {
	if v, ok := ctx.Value(profileKey).(*models.Profile); ok {
		return v
	}
	return nil
}
