package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

const (
	HeaderChainID         = "x-chain-id"
	HeaderAuthToken       = "x-auth-token"
	HeaderProjectKey      = "x-project-key"
	HeaderProjectMetadata = "x-project-metadata"
	HeaderRequestID       = "x-request-id"
)

// Scope is the context every backend request carries
type Scope struct {
	ChainID         uint64
	AuthToken       string
	ProjectKey      string
	ProjectMetadata string
}

// ScopeProvider returns the scope of the next request
type ScopeProvider interface {
	Scope() Scope
}

// ScopeFunc adapts a function to ScopeProvider
type ScopeFunc func() Scope

// Scope calls f
func (f ScopeFunc) Scope() Scope {
	return f()
}

type projectMetadataKey struct{}

// WithProjectMetadata overrides the project metadata of the calls made with ctx
func WithProjectMetadata(ctx context.Context, metadata string) context.Context {
	return context.WithValue(ctx, projectMetadataKey{}, metadata)
}

// ProjectMetadataFromContext returns the metadata set by WithProjectMetadata
func ProjectMetadataFromContext(ctx context.Context) (string, bool) {
	metadata, ok := ctx.Value(projectMetadataKey{}).(string)
	return metadata, ok
}

// Header renders the scope as request headers with a fresh request id
func (s Scope) Header() http.Header {
	h := http.Header{}
	if s.ChainID != 0 {
		h.Set(HeaderChainID, strconv.FormatUint(s.ChainID, 10))
	}
	if s.AuthToken != "" {
		h.Set(HeaderAuthToken, s.AuthToken)
	}
	if s.ProjectKey != "" {
		h.Set(HeaderProjectKey, s.ProjectKey)
	}
	if s.ProjectMetadata != "" {
		h.Set(HeaderProjectMetadata, s.ProjectMetadata)
	}
	h.Set(HeaderRequestID, uuid.NewString())

	return h
}
