package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"profilegen/internal/profile"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateLoaderFlagsAreExclusive(t *testing.T) {
	_, err := runCLI(t, "generate", "-v", "1.0", "-n", "main", "--fabric", "0.1", "--forge", "14")
	require.Error(t, err)
	require.Contains(t, err.Error(), "fabric")
	require.Contains(t, err.Error(), "forge")
}

func TestGenerateRequiresVersion(t *testing.T) {
	_, err := runCLI(t, "generate", "-n", "main")
	require.Error(t, err)
	require.Contains(t, err.Error(), `"version"`)
}

func TestBuildRequest(t *testing.T) {
	genName, genVersion = " main ", "1.12.2"
	genAddress, genPort = "play.example.com", 25570
	genFabric, genForge, genAssets = "", "14.23.5", "shared"
	t.Cleanup(func() {
		genName, genVersion, genAddress, genPort = "", "", "", 0
		genForge, genAssets = "", ""
	})

	req := buildRequest()
	require.Equal(t, "main", req.Name)
	require.Equal(t, "1.12.2", req.Version)
	require.Equal(t, "play.example.com", req.ServerName)
	require.Equal(t, 25570, req.ServerPort)
	require.Equal(t, profile.Loader{Kind: profile.LoaderForge, Version: "14.23.5"}, req.Loader)
	require.Equal(t, "shared", req.AssetsName)
}

func TestGenerateTitle(t *testing.T) {
	require.Equal(t, "main (1.0)", generateTitle(profile.Request{Name: "main", Version: "1.0"}))
	require.Equal(t, "main (1.0, fabric 0.1)", generateTitle(profile.Request{
		Name: "main", Version: "1.0", Loader: profile.Loader{Kind: profile.LoaderFabric, Version: "0.1"},
	}))
}

func TestGenerateJSONEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := "http://" + r.Host
		switch r.URL.Path {
		case "/index.json":
			_, _ = w.Write([]byte(`{"versions":[{"id":"1.0","url":"` + base + `/v/1.0.json"}]}`))
		case "/v/1.0.json":
			_, _ = w.Write([]byte(`{
				"id": "1.0",
				"assetIndex": {"id": "1.0", "url": "` + base + `/assets/1.0.json"},
				"downloads": {"client": {"url": "` + base + `/client.jar"}},
				"libraries": [{"name": "com.a:a:1.0", "downloads": {"artifact": {"path": "com/a/a/1.0/a-1.0.jar", "url": "` + base + `/lib/a-1.0.jar"}}}]
			}`))
		case "/assets/1.0.json":
			_, _ = w.Write([]byte(`{"objects":{}}`))
		case "/client.jar", "/lib/a-1.0.jar":
			_, _ = w.Write([]byte("jar"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profilegen.yaml")
	cfgYAML := strings.Join([]string{
		"workers: 2",
		"sources:",
		"  version_index: " + srv.URL + "/index.json",
		"  libraries: " + srv.URL + "/maven/",
	}, "\n")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))
	root := filepath.Join(dir, "static")

	out, err := runCLI(t, "generate", "-v", "1.0", "-n", "main", "--root", root, "--config", cfgPath, "--json")
	require.NoError(t, err)

	var summary generateSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	require.Equal(t, "main", summary.Profile)
	require.Equal(t, "net/minecraft/client/main/Main", summary.MainClass)
	require.Equal(t, 1, summary.Libraries)
	require.Equal(t, 3, summary.Downloads)
	require.Equal(t, filepath.Join(root, "profiles", "main", "profile.json"), summary.ProfilePath)

	require.FileExists(t, filepath.Join(root, "profiles", "main", "minecraft.jar"))
	require.FileExists(t, filepath.Join(root, "libraries", "a-1.0.jar"))
	logs, err := os.ReadDir(filepath.Join(root, "logs"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "profilegen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("sources:\n  forge: ftp://example.com/{version}\n"), 0o644))

	_, err := runCLI(t, "generate", "-v", "1.0", "-n", "main", "--root", filepath.Join(dir, "static"), "--config", cfgPath, "--json")
	require.Error(t, err)
	require.Contains(t, err.Error(), "sources.forge")
}

func TestConfigInitAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "profilegen.yaml")

	out, err := runCLI(t, "config", "init", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, cfgPath)
	require.FileExists(t, cfgPath)

	_, err = runCLI(t, "config", "init", "--config", cfgPath)
	require.Error(t, err)

	out, err = runCLI(t, "config", "show", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "workers: 4")
	require.Contains(t, out, "version_index:")

	out, err = runCLI(t, "config", "validate", "--config", cfgPath)
	require.NoError(t, err)
	require.Contains(t, out, "config ok")
}
