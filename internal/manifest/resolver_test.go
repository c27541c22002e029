package manifest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"profilegen/internal/config"
	"profilegen/internal/coord"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "SRV", "http://"+r.Host)))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testResolver(srv *httptest.Server) *Resolver {
	sources := config.Default().Sources
	sources.VersionIndex = srv.URL + "/mc/version_manifest.json"
	sources.FabricLoader = srv.URL + "/fabric/{version}.json"
	sources.Forge = srv.URL + "/forge/{version}.json"
	sources.Intermediary = srv.URL + "/maven/"
	return NewResolver(WithHTTPClient(srv.Client()), WithSources(sources))
}

const baseManifest = `{
  "id": "1.16.5",
  "assetIndex": {"id": "1.16", "url": "https://example.invalid/1.16.json"},
  "downloads": {"client": {"url": "https://example.invalid/client.jar"}},
  "libraries": [
    {"name": "com.mojang:brigadier:1.0.17",
     "downloads": {"artifact": {"path": "com/mojang/brigadier/1.0.17/brigadier-1.0.17.jar", "url": "https://libraries.example/brigadier-1.0.17.jar"}}},
    {"name": "org.lwjgl:lwjgl:3.2.2",
     "downloads": {"classifiers": {"natives-linux": {"url": "https://libraries.example/lwjgl-natives-linux.jar"}, "natives-osx": {"url": "https://libraries.example/lwjgl-natives-osx.jar"}}},
     "rules": [{"action": "allow"}, {"action": "disallow", "os": {"name": "osx"}}]}
  ]
}`

func TestResolveBaseThroughIndex(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/mc/version_manifest.json": `{"versions":[{"id":"1.15.2","url":"SRV/v/1.15.2.json"},{"id":"1.16.5","url":"SRV/v/1.16.5.json"}]}`,
		"/v/1.16.5.json":            baseManifest,
	})

	m, err := testResolver(srv).ResolveBase(context.Background(), "1.16.5")
	require.NoError(t, err)
	require.Equal(t, "1.16", m.AssetIndex.ID)
	require.Equal(t, "https://example.invalid/client.jar", m.Downloads.Client.URL)
	require.Len(t, m.Libraries, 2)
	require.Len(t, m.Libraries[1].Rules, 2)
	require.Equal(t, "osx", m.Libraries[1].Rules[1].OS.Name)

	natives := m.Libraries[1].Downloads.Classifiers.Natives()
	require.Len(t, natives, 2)
	require.Equal(t, "https://libraries.example/lwjgl-natives-osx.jar", natives[0].URL)
}

func TestResolveBaseDirectTemplate(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/direct/1.16.5.json": baseManifest})
	r := testResolver(srv)
	r.sources.Version = srv.URL + "/direct/{version}.json"

	m, err := r.ResolveBase(context.Background(), "1.16.5")
	require.NoError(t, err)
	require.Equal(t, "1.16.5", m.ID)
}

func TestResolveBaseUnknownVersion(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/mc/version_manifest.json": `{"versions":[]}`})

	_, err := testResolver(srv).ResolveBase(context.Background(), "0.0.1")
	require.ErrorIs(t, err, ErrManifestParse)
	require.ErrorIs(t, err, ErrVersionNotFound)
}

func TestResolveBaseMissingClient(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v/1.json": `{"assetIndex":{"id":"1","url":"u"},"libraries":[]}`,
	})
	r := testResolver(srv)
	r.sources.Version = srv.URL + "/v/{version}.json"

	_, err := r.ResolveBase(context.Background(), "1")
	require.ErrorIs(t, err, ErrManifestParse)
	require.ErrorIs(t, err, ErrMissingField)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "downloads.client.url", perr.Field)
}

func TestResolveFetchErrors(t *testing.T) {
	srv := newTestServer(t, map[string]string{})
	r := testResolver(srv)

	_, err := r.ResolveForge(context.Background(), "1.12.2-14.23.5.2855")
	require.ErrorIs(t, err, ErrManifestFetch)
	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, http.StatusNotFound, ferr.Status)

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()
	r = NewResolver(WithSources(config.Sources{FabricLoader: closed.URL + "/{version}.json"}))
	_, err = r.ResolveFabric(context.Background(), "0.11.3")
	require.ErrorIs(t, err, ErrManifestFetch)
}

func TestResolveMalformedJSON(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/forge/1.json": `{"mainClass": 12}`})

	_, err := testResolver(srv).ResolveForge(context.Background(), "1")
	require.ErrorIs(t, err, ErrManifestParse)
}

func TestResolveAssets(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/assets/ok.json":  `{"objects":{"icons/icon_16x16.png":{"hash":"bdf48ef6b5d0d23bbb02e17d04865216179f510a","size":3665}}}`,
		"/assets/bad.json": `{"objects":{"broken":{"hash":"a"}}}`,
	})
	r := testResolver(srv)

	a, err := r.ResolveAssets(context.Background(), srv.URL+"/assets/ok.json")
	require.NoError(t, err)
	obj := a.Objects["icons/icon_16x16.png"]
	require.Equal(t, "bd", obj.Prefix())
	require.Equal(t,
		"https://resources.download.minecraft.net/bd/bdf48ef6b5d0d23bbb02e17d04865216179f510a",
		obj.ObjectURL("https://resources.download.minecraft.net/"))

	_, err = r.ResolveAssets(context.Background(), srv.URL+"/assets/bad.json")
	require.ErrorIs(t, err, ErrMissingField)
}

func TestFabricLoader(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/fabric/0.11.3.json": `{
  "libraries": {
    "client": [{"name": "net.fabricmc:tiny-mappings-parser:0.2.2.14", "url": "https://maven.fabricmc.net/"}],
    "common": [{"name": "org.ow2.asm:asm:9.1", "url": "https://maven.fabricmc.net/"},
               {"name": "com.google.guava:guava:21.0"}]
  },
  "mainClass": {"client": "net.fabricmc.loader.launch.knot.KnotClient", "server": "x"}
}`,
	})
	r := testResolver(srv)

	m, err := r.ResolveFabric(context.Background(), "0.11.3")
	require.NoError(t, err)

	loader, err := m.Loader("1.16.5", srv.URL+"/maven/", "https://libraries.minecraft.net/")
	require.NoError(t, err)
	require.Empty(t, m.Libraries.Common)
	require.Len(t, m.Libraries.Client, 3)
	require.Equal(t, "net.fabricmc.loader.launch.knot.KnotClient", loader.MainClass)
	require.Len(t, loader.Libraries, 4)
	require.Equal(t, "https://maven.fabricmc.net/net/fabricmc/tiny-mappings-parser/0.2.2.14/tiny-mappings-parser-0.2.2.14.jar", loader.Libraries[0].URL)
	require.Equal(t, "asm-9.1.jar", loader.Libraries[1].FileName())
	require.Equal(t, "https://libraries.minecraft.net/com/google/guava/guava/21.0/guava-21.0.jar", loader.Libraries[2].URL)
	require.Equal(t, srv.URL+"/maven/net/fabricmc/intermediary/1.16.5/intermediary-1.16.5.jar", loader.Libraries[3].URL)
	require.Empty(t, loader.ExtraArgs)
}

func TestFabricLoaderMalformedCoordinate(t *testing.T) {
	m := &FabricManifest{}
	m.MainClass.Client = "Main"
	m.Libraries.Client = []NamedLibrary{{Name: "broken:coordinate"}}

	_, err := m.Loader("1.16.5", "https://maven.fabricmc.net/", "https://libraries.minecraft.net/")
	require.ErrorIs(t, err, coord.ErrMalformedCoordinate)
}

func TestForgeLoader(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/forge/1.12.2-14.23.5.2855.json": `{
  "mainClass": "net.minecraft.launchwrapper.Launch",
  "+tweakers": ["net.minecraftforge.fml.common.launcher.FMLTweaker"],
  "mavenFiles": [
    {"name": "net.minecraftforge:forge:1.12.2-14.23.5.2855:universal",
     "downloads": {"artifact": {"path": "net/minecraftforge/forge/1.12.2-14.23.5.2855/forge-1.12.2-14.23.5.2855-universal.jar", "url": "https://files.example/forge-universal.jar"}}}
  ],
  "libraries": [
    {"name": "net.minecraftforge:forge:1.12.2-14.23.5.2855",
     "downloads": {"artifact": {"path": "net/minecraftforge/forge/1.12.2-14.23.5.2855/forge-1.12.2-14.23.5.2855.jar", "url": "https://files.example/forge.jar"}}},
    {"name": "net.minecraft:launchwrapper:1.12", "url": "https://libraries.example/"},
    {"name": "org.scala-lang:scala-library:2.11.1"},
    {"name": "no.path:lib:1", "downloads": {"artifact": {"url": "https://files.example/nopath.jar"}}}
  ]
}`,
	})

	m, err := testResolver(srv).ResolveForge(context.Background(), "1.12.2-14.23.5.2855")
	require.NoError(t, err)
	require.Len(t, m.Libraries, 4)
	require.NotNil(t, m.Libraries[0].Path)
	require.NotNil(t, m.Libraries[1].Named)

	loader, err := m.Loader("https://libraries.minecraft.net/")
	require.NoError(t, err)
	require.Equal(t, "net.minecraft.launchwrapper.Launch", loader.MainClass)
	require.Equal(t, []string{"--tweakClass", "net.minecraftforge.fml.common.launcher.FMLTweaker"}, loader.ExtraArgs)
	require.Len(t, loader.Libraries, 3)
	require.Equal(t, "forge-1.12.2-14.23.5.2855.jar", loader.Libraries[0].FileName())
	require.Equal(t, "https://libraries.example/net/minecraft/launchwrapper/1.12/launchwrapper-1.12.jar", loader.Libraries[1].URL)
	require.Equal(t, "https://libraries.minecraft.net/org/scala-lang/scala-library/2.11.1/scala-library-2.11.1.jar", loader.Libraries[2].URL)
	require.Len(t, loader.Files, 1)
	require.Equal(t, "net/minecraftforge/forge/1.12.2-14.23.5.2855/forge-1.12.2-14.23.5.2855-universal.jar", loader.Files[0].Path)
}

func TestForgeMissingMainClass(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/forge/1.json": `{"libraries": [{}]}`})

	_, err := testResolver(srv).ResolveForge(context.Background(), "1")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "mainClass", perr.Field)
}

func TestForgeLibraryWithoutNameOrDownloads(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/forge/1.json": `{"mainClass": "M", "libraries": [{"url": "x"}]}`})

	_, err := testResolver(srv).ResolveForge(context.Background(), "1")
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "libraries[0].name", perr.Field)
}
