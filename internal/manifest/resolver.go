// Package manifest fetches and validates the remote JSON descriptors that
// drive installation: the base version manifest, its asset index and the
// Fabric and Forge loader manifests.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"profilegen/internal/config"
)

// maxManifestBytes bounds every manifest body read from the network.
const maxManifestBytes = 64 << 20

// Resolver fetches manifests from the configured sources. It performs no
// caching and no retries.
type Resolver struct {
	httpClient *http.Client
	sources    config.Sources
	userAgent  string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for every fetch.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) {
		if c != nil {
			r.httpClient = c
		}
	}
}

// WithSources replaces the default endpoints.
func WithSources(s config.Sources) Option {
	return func(r *Resolver) {
		r.sources = s
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		r.userAgent = ua
	}
}

// NewResolver creates a Resolver using the default configuration sources
// unless overridden.
func NewResolver(opts ...Option) *Resolver {
	def := config.Default()
	r := &Resolver{
		httpClient: http.DefaultClient,
		sources:    def.Sources,
		userAgent:  def.UserAgent,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveBase returns the version manifest for version. When a direct version
// template is configured it is fetched as is; otherwise the version index is
// consulted first.
func (r *Resolver) ResolveBase(ctx context.Context, version string) (*VersionManifest, error) {
	manifestURL := config.Expand(r.sources.Version, version)
	if r.sources.Version == "" {
		var index VersionIndex
		if err := r.fetchJSON(ctx, r.sources.VersionIndex, &index); err != nil {
			return nil, err
		}
		for _, v := range index.Versions {
			if v.ID == version {
				manifestURL = v.URL
				break
			}
		}
		if manifestURL == "" {
			return nil, &ParseError{
				URL:   r.sources.VersionIndex,
				Field: "versions",
				Err:   fmt.Errorf("%w: %s", ErrVersionNotFound, version),
			}
		}
	}

	var m VersionManifest
	if err := r.fetchJSON(ctx, manifestURL, &m); err != nil {
		return nil, err
	}
	if err := m.validate(manifestURL); err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveFabric returns the Fabric loader manifest for loaderVersion.
func (r *Resolver) ResolveFabric(ctx context.Context, loaderVersion string) (*FabricManifest, error) {
	u := config.Expand(r.sources.FabricLoader, loaderVersion)
	var m FabricManifest
	if err := r.fetchJSON(ctx, u, &m); err != nil {
		return nil, err
	}
	if err := m.validate(u); err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveForge returns the Forge manifest for forgeVersion.
func (r *Resolver) ResolveForge(ctx context.Context, forgeVersion string) (*ForgeManifest, error) {
	u := config.Expand(r.sources.Forge, forgeVersion)
	var m ForgeManifest
	if err := r.fetchJSON(ctx, u, &m); err != nil {
		return nil, err
	}
	if err := m.validate(u); err != nil {
		return nil, err
	}
	return &m, nil
}

// ResolveAssets fetches the asset index at indexURL.
func (r *Resolver) ResolveAssets(ctx context.Context, indexURL string) (*Assets, error) {
	var a Assets
	if err := r.fetchJSON(ctx, indexURL, &a); err != nil {
		return nil, err
	}
	if a.Objects == nil {
		return nil, missing(indexURL, "objects")
	}
	for name, obj := range a.Objects {
		if len(obj.Hash) < 2 {
			return nil, missing(indexURL, "objects."+name+".hash")
		}
	}
	return &a, nil
}

func (r *Resolver) fetchJSON(ctx context.Context, rawURL string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return &FetchError{URL: rawURL, Err: err}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{URL: rawURL, Err: err}
	}
	return nil
}

func (m *VersionManifest) validate(u string) error {
	if m.Downloads.Client == nil || m.Downloads.Client.URL == "" {
		return missing(u, "downloads.client.url")
	}
	if m.AssetIndex.ID == "" {
		return missing(u, "assetIndex.id")
	}
	if m.AssetIndex.URL == "" {
		return missing(u, "assetIndex.url")
	}
	for i, lib := range m.Libraries {
		if a := lib.Downloads.Artifact; a != nil && a.URL == "" {
			return missing(u, fmt.Sprintf("libraries[%d].downloads.artifact.url", i))
		}
	}
	return nil
}
