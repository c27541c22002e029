// Package profile drives a full installation: it resolves manifests, fetches
// every artifact, unpacks natives and writes the launcher descriptors.
package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"profilegen/internal/config"
	"profilegen/internal/download"
	"profilegen/internal/manifest"
	"profilegen/internal/natives"
	"profilegen/internal/paths"
)

const (
	// DefaultMainClass is used when no loader overrides the entry point.
	DefaultMainClass = "net/minecraft/client/main/Main"
	// DefaultServerName is the server address written when none is given.
	DefaultServerName = "localhost"
	// DefaultServerPort is the server port written when none is given.
	DefaultServerPort = 25565
	// ClientFileName is the name the client archive is stored under.
	ClientFileName = "minecraft.jar"

	profileFile   = "profile.json"
	optionalsFile = "optionals.json"
)

// ErrInvalidRequest is returned when a Request is missing required values.
var ErrInvalidRequest = errors.New("invalid request")

// ErrAssetsNotFound is returned when a reused asset set does not exist.
var ErrAssetsNotFound = errors.New("asset set not found")

// LoaderKind selects the mod loader layered on top of the base runtime.
type LoaderKind string

const (
	LoaderNone   LoaderKind = ""
	LoaderFabric LoaderKind = "fabric"
	LoaderForge  LoaderKind = "forge"
)

// Loader is an optional loader selection.
type Loader struct {
	Kind    LoaderKind
	Version string
}

// Request describes one profile to generate.
type Request struct {
	Name       string
	Version    string
	ServerName string
	ServerPort int
	Loader     Loader
	// AssetsName reuses an existing asset set instead of downloading one.
	AssetsName string
}

func (r *Request) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Version = strings.TrimSpace(r.Version)
	r.AssetsName = strings.TrimSpace(r.AssetsName)
	if r.Name == "" {
		return fmt.Errorf("%w: profile name is required", ErrInvalidRequest)
	}
	if r.Version == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidRequest)
	}
	if !isDirName(r.Name) {
		return fmt.Errorf("%w: profile name %q is not a plain directory name", ErrInvalidRequest, r.Name)
	}
	if !isDirName(r.Version) {
		return fmt.Errorf("%w: version %q is not a plain directory name", ErrInvalidRequest, r.Version)
	}
	if r.AssetsName != "" && !isDirName(r.AssetsName) {
		return fmt.Errorf("%w: assets name %q is not a plain directory name", ErrInvalidRequest, r.AssetsName)
	}
	switch r.Loader.Kind {
	case LoaderNone:
	case LoaderFabric, LoaderForge:
		if strings.TrimSpace(r.Loader.Version) == "" {
			return fmt.Errorf("%w: %s loader version is required", ErrInvalidRequest, r.Loader.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown loader %q", ErrInvalidRequest, r.Loader.Kind)
	}
	if r.ServerName == "" {
		r.ServerName = DefaultServerName
	}
	if r.ServerPort == 0 {
		r.ServerPort = DefaultServerPort
	}
	if r.ServerPort < 0 || r.ServerPort > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidRequest, r.ServerPort)
	}
	return nil
}

// isDirName reports whether name stays a single entry below its parent.
func isDirName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func (r Request) assetsName() string {
	if r.AssetsName != "" {
		return r.AssetsName
	}
	return r.Name
}

// Result summarizes a completed generation.
type Result struct {
	ProfileDir    string
	ProfilePath   string
	OptionalsPath string
	Descriptor    Descriptor
	Optionals     []Optional
	Natives       natives.Result
	Downloads     int
}

// Resolver fetches the manifests an installation is built from.
type Resolver interface {
	ResolveBase(ctx context.Context, version string) (*manifest.VersionManifest, error)
	ResolveAssets(ctx context.Context, indexURL string) (*manifest.Assets, error)
	ResolveFabric(ctx context.Context, loaderVersion string) (*manifest.FabricManifest, error)
	ResolveForge(ctx context.Context, forgeVersion string) (*manifest.ForgeManifest, error)
}

// Fetcher downloads a batch of items.
type Fetcher interface {
	FetchAll(ctx context.Context, items []download.Item) error
}

// Logger receives progress diagnostics.
type Logger interface {
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
}

type noopLogger struct{}

func (noopLogger) Info(any, ...any) {}
func (noopLogger) Warn(any, ...any) {}

// Service generates profiles inside one installation layout.
type Service struct {
	cfg      config.Config
	layout   paths.Layout
	resolver Resolver
	fetcher  Fetcher
	logger   Logger
	tracker  *phaseTracker
}

// Option configures a Service.
type Option func(*Service)

// WithResolver replaces the manifest resolver.
func WithResolver(r Resolver) Option {
	return func(s *Service) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithFetcher replaces the download orchestrator. Per-item progress is only
// reported for the built-in orchestrator.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReporter attaches a progress reporter.
func WithReporter(r ProgressReporter) Option {
	return func(s *Service) {
		if r != nil {
			s.tracker.reporter = r
		}
	}
}

// NewService prepares a generator bound to an installation layout. Defaults
// are built from cfg: a manifest resolver using its sources and a download
// orchestrator with its worker count.
func NewService(cfg config.Config, layout paths.Layout, opts ...Option) *Service {
	cfg.ApplyDefaults()
	s := &Service{
		cfg:     cfg,
		layout:  layout,
		logger:  noopLogger{},
		tracker: &phaseTracker{reporter: noopReporter{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = manifest.NewResolver(
			manifest.WithSources(cfg.Sources),
			manifest.WithUserAgent(cfg.UserAgent),
		)
	}
	if s.fetcher == nil {
		s.fetcher = download.New(
			download.WithWorkers(cfg.Workers),
			download.WithUserAgent(cfg.UserAgent),
			download.WithReporter(s.tracker),
		)
	}
	return s
}

// Generate builds the installation described by req. A failure aborts the run
// and leaves already written files in place.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := req.normalize(); err != nil {
		return nil, err
	}

	assetsName := req.assetsName()
	if req.AssetsName != "" {
		ok, err := paths.DirExists(s.layout.AssetsDir(req.AssetsName))
		if err != nil {
			return nil, fmt.Errorf("check asset set: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAssetsNotFound, s.layout.AssetsDir(req.AssetsName))
		}
	}
	profileDir := s.layout.ProfileDir(req.Name)
	if err := s.layout.EnsureDirs(req.Version, assetsName, req.Name); err != nil {
		return nil, err
	}

	base, err := s.resolver.ResolveBase(ctx, req.Version)
	if err != nil {
		return nil, fmt.Errorf("resolve base manifest: %w", err)
	}

	g := &generation{
		req:        req,
		base:       base,
		profileDir: profileDir,
		libraries:  NewLibrarySet(),
		mainClass:  DefaultMainClass,
		clientArgs: []string{},
	}

	if req.AssetsName == "" {
		if err := s.fetchAssets(ctx, g, assetsName); err != nil {
			return nil, err
		}
	} else {
		s.logger.Info("reusing assets", "assets", req.AssetsName)
		s.tracker.skip(PhaseAssets)
	}
	if err := s.fetchClient(ctx, g); err != nil {
		return nil, err
	}
	if err := s.fetchLibraries(ctx, g); err != nil {
		return nil, err
	}
	if err := s.applyLoader(ctx, g); err != nil {
		return nil, err
	}
	nativesResult, err := s.installNatives(ctx, g)
	if err != nil {
		return nil, err
	}

	s.tracker.begin(PhaseProfile, 2)
	desc := Descriptor{
		Name:            req.Name,
		Version:         req.Version,
		Libraries:       g.libraries.Names(),
		ClassPath:       []string{ClientFileName},
		MainClass:       g.mainClass,
		UpdateVerify:    []string{},
		UpdateExclusion: []string{},
		JVMArgs:         []string{},
		ClientArgs:      g.clientArgs,
		Assets:          base.AssetIndex.ID,
		AssetsDir:       path.Join("assets", assetsName),
		ServerName:      req.ServerName,
		ServerPort:      req.ServerPort,
	}
	optionals := g.optionals
	if optionals == nil {
		optionals = []Optional{}
	}

	res := &Result{
		ProfileDir:    profileDir,
		ProfilePath:   filepath.Join(profileDir, profileFile),
		OptionalsPath: filepath.Join(profileDir, optionalsFile),
		Descriptor:    desc,
		Optionals:     optionals,
		Natives:       nativesResult,
		Downloads:     g.downloads,
	}
	s.logger.Info("write profile", "path", res.ProfilePath)
	if err := writeJSON(res.ProfilePath, desc); err != nil {
		s.tracker.end(PhaseProfile, err)
		return nil, err
	}
	s.tracker.item(PhaseProfile, download.Item{Dir: profileDir, URL: profileFile}, nil)
	s.logger.Info("write optionals", "path", res.OptionalsPath, "count", len(optionals))
	if err := writeJSON(res.OptionalsPath, optionals); err != nil {
		s.tracker.end(PhaseProfile, err)
		return nil, err
	}
	s.tracker.item(PhaseProfile, download.Item{Dir: profileDir, URL: optionalsFile}, nil)
	s.tracker.end(PhaseProfile, nil)
	return res, nil
}

// generation carries the state accumulated across one Generate call.
type generation struct {
	req        Request
	base       *manifest.VersionManifest
	profileDir string
	libraries  *LibrarySet
	optionals  []Optional
	mainClass  string
	clientArgs []string
	downloads  int
}

func (s *Service) fetch(ctx context.Context, g *generation, phase Phase, items []download.Item) error {
	s.tracker.begin(phase, len(items))
	err := s.fetcher.FetchAll(ctx, items)
	s.tracker.end(phase, err)
	if err != nil {
		return fmt.Errorf("download %s: %w", phase, err)
	}
	g.downloads += len(items)
	return nil
}

func (s *Service) fetchAssets(ctx context.Context, g *generation, assetsName string) error {
	indexURL := g.base.AssetIndex.URL
	assets, err := s.resolver.ResolveAssets(ctx, indexURL)
	if err != nil {
		return fmt.Errorf("resolve asset index: %w", err)
	}

	hashes := make(map[string]manifest.AssetObject, len(assets.Objects))
	for _, obj := range assets.Objects {
		hashes[obj.Hash] = obj
	}
	keys := make([]string, 0, len(hashes))
	for h := range hashes {
		keys = append(keys, h)
	}
	sort.Strings(keys)

	items := make([]download.Item, 0, len(keys)+1)
	for _, h := range keys {
		obj := hashes[h]
		items = append(items, download.Item{
			URL: obj.ObjectURL(s.cfg.Sources.AssetHost),
			Dir: s.layout.AssetObjectsDir(assetsName, obj.Prefix()),
		})
	}
	items = append(items, download.Item{URL: indexURL, Dir: s.layout.AssetIndexesDir(assetsName)})

	s.logger.Info("download assets", "assets", assetsName, "objects", len(keys))
	return s.fetch(ctx, g, PhaseAssets, items)
}

func (s *Service) fetchClient(ctx context.Context, g *generation) error {
	clientURL := g.base.Downloads.Client.URL
	name, err := download.FileName(clientURL)
	if err != nil {
		return fmt.Errorf("resolve client archive name: %w", err)
	}

	s.logger.Info("download client", "url", clientURL)
	if err := s.fetch(ctx, g, PhaseClient, []download.Item{{URL: clientURL, Dir: g.profileDir}}); err != nil {
		return err
	}
	if name == ClientFileName {
		return nil
	}
	if err := os.Rename(filepath.Join(g.profileDir, name), filepath.Join(g.profileDir, ClientFileName)); err != nil {
		return fmt.Errorf("rename client archive: %w", err)
	}
	return nil
}

func (s *Service) fetchLibraries(ctx context.Context, g *generation) error {
	items := make([]download.Item, 0, len(g.base.Libraries))
	for _, lib := range g.base.Libraries {
		artifact := lib.Downloads.Artifact
		if artifact == nil {
			continue
		}
		fileName, err := artifactFileName(artifact)
		if err != nil {
			return fmt.Errorf("library %s: %w", lib.Name, err)
		}
		if len(lib.Rules) == 0 {
			g.libraries.Add(fileName)
		} else if target, opts := SynthesizeOptionals(fileName, lib.Rules); len(opts) > 0 {
			g.libraries.Add(target)
			g.optionals = append(g.optionals, opts...)
		}
		items = append(items, download.Item{URL: artifact.URL, Dir: s.layout.LibrariesDir})
	}

	s.logger.Info("download libraries", "count", len(items), "listed", g.libraries.Len(), "optionals", len(g.optionals))
	return s.fetch(ctx, g, PhaseLibraries, items)
}

func (s *Service) applyLoader(ctx context.Context, g *generation) error {
	var (
		loader *manifest.LoaderManifest
		err    error
	)
	switch g.req.Loader.Kind {
	case LoaderFabric:
		var fm *manifest.FabricManifest
		fm, err = s.resolver.ResolveFabric(ctx, g.req.Loader.Version)
		if err != nil {
			return fmt.Errorf("resolve fabric manifest: %w", err)
		}
		loader, err = fm.Loader(g.req.Version, s.cfg.Sources.Intermediary, s.cfg.Sources.Libraries)
	case LoaderForge:
		var fm *manifest.ForgeManifest
		fm, err = s.resolver.ResolveForge(ctx, g.req.Loader.Version)
		if err != nil {
			return fmt.Errorf("resolve forge manifest: %w", err)
		}
		loader, err = fm.Loader(s.cfg.Sources.Libraries)
	default:
		s.tracker.skip(PhaseLoader)
		return nil
	}
	if err != nil {
		return fmt.Errorf("expand %s loader: %w", g.req.Loader.Kind, err)
	}

	items := make([]download.Item, 0, len(loader.Libraries)+len(loader.Files))
	for _, ref := range loader.Libraries {
		g.libraries.Add(ref.FileName())
		items = append(items, download.Item{URL: ref.URL, Dir: s.layout.LibrariesDir})
	}
	for _, ref := range loader.Files {
		items = append(items, download.Item{URL: ref.URL, Dir: s.layout.LibraryDir(ref.Path)})
	}
	g.mainClass = loader.MainClass
	g.clientArgs = append(g.clientArgs, loader.ExtraArgs...)

	s.logger.Info("download loader",
		"loader", string(g.req.Loader.Kind),
		"version", g.req.Loader.Version,
		"libraries", len(loader.Libraries),
		"files", len(loader.Files),
	)
	return s.fetch(ctx, g, PhaseLoader, items)
}

func (s *Service) installNatives(ctx context.Context, g *generation) (natives.Result, error) {
	tempDir := s.layout.NativesTempDir
	var items []download.Item
	for _, lib := range g.base.Libraries {
		for _, a := range lib.Downloads.Classifiers.Natives() {
			items = append(items, download.Item{URL: a.URL, Dir: tempDir})
		}
	}

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return natives.Result{}, fmt.Errorf("create natives temp dir: %w", err)
	}
	s.logger.Info("download natives", "count", len(items))
	if err := s.fetch(ctx, g, PhaseNatives, items); err != nil {
		return natives.Result{}, err
	}

	ex := &natives.Extractor{
		Suffixes: s.cfg.Natives.Suffixes,
		Strict:   s.cfg.Natives.Strict,
		Logger:   s.logger,
	}
	res, err := ex.Extract(tempDir, s.layout.NativesDir(g.req.Version))
	if err != nil {
		return res, err
	}
	s.logger.Info("extracted natives", "count", len(res.Extracted), "skipped", len(res.Skipped))
	return res, nil
}

func artifactFileName(a *manifest.Artifact) (string, error) {
	if a.Path != "" {
		return path.Base(a.Path), nil
	}
	return download.FileName(a.URL)
}

// phaseTracker forwards download events to the reporter under the phase
// currently running. Phases run one after another.
type phaseTracker struct {
	mu       sync.Mutex
	phase    Phase
	reporter ProgressReporter
}

func (t *phaseTracker) begin(p Phase, total int) {
	t.mu.Lock()
	t.phase = p
	t.mu.Unlock()
	t.reporter.PhaseStart(p, total)
}

func (t *phaseTracker) end(p Phase, err error) {
	t.reporter.PhaseComplete(p, err)
}

func (t *phaseTracker) skip(p Phase) {
	t.reporter.PhaseStart(p, 0)
	t.reporter.PhaseComplete(p, nil)
}

func (t *phaseTracker) item(p Phase, item download.Item, err error) {
	t.reporter.ItemComplete(p, item, err)
}

// Start implements download.Reporter.
func (t *phaseTracker) Start(download.Item) {}

// Complete implements download.Reporter.
func (t *phaseTracker) Complete(item download.Item, err error) {
	t.mu.Lock()
	p := t.phase
	t.mu.Unlock()
	t.reporter.ItemComplete(p, item, err)
}
