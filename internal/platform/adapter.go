// Package platform holds one adapter per social platform. An adapter
// translates the generic publish and metrics operations into that
// platform's wire calls and keeps every platform-specific response
// shape behind its own boundary.
package platform

import (
	"context"

	"github.com/harshit961695/unipost/internal/models"
	"github.com/harshit961695/unipost/internal/transfer"
)

// PublishResult carries whatever external identifier the platform
// returned for the created post. PostID may be empty: not every
// platform response includes one.
type PublishResult struct {
	PostID string
}

// Adapter is the uniform contract per platform. Publish and
// FetchMetrics return an error only for outright request failure
// (network error, unusable non-2xx response, missing credential);
// a metric the platform simply does not report comes back as zero.
type Adapter interface {
	Name() string

	// NeedsPublicURL reports whether Publish consumes a staged public
	// URL (job.MediaURL) instead of raw media bytes.
	NeedsPublicURL() bool

	// RequiresMedia reports whether the given post kind cannot be
	// published on this platform without a media payload.
	RequiresMedia(kind string) bool

	Publish(ctx context.Context, conn *models.Connection, job *transfer.PlatformJob) (*PublishResult, error)
	FetchMetrics(ctx context.Context, conn *models.Connection, postID string) (*models.MetricSample, error)
}

// Registry maps platform names to adapters.
type Registry map[string]Adapter

func NewRegistry(adapters ...Adapter) Registry {
	reg := make(Registry, len(adapters))
	for _, a := range adapters {
		reg[a.Name()] = a
	}
	return reg
}

func (r Registry) Get(name string) (Adapter, bool) {
	a, ok := r[name]
	return a, ok
}
