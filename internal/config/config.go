package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file looked up in the working directory.
const FileName = "profilegen.yaml"

// RootEnv overrides the installation root regardless of the config file.
const RootEnv = "PROFILEGEN_ROOT"

// Config captures how installations are generated.
type Config struct {
	Version   int           `yaml:"version"`
	Root      string        `yaml:"root"`
	Workers   int           `yaml:"workers"`
	UserAgent string        `yaml:"user_agent"`
	LogLevel  string        `yaml:"log_level"`
	Natives   NativesConfig `yaml:"natives"`
	Sources   Sources       `yaml:"sources"`
}

// NativesConfig controls native library extraction.
type NativesConfig struct {
	// Strict turns unreadable archives in the native bundle folder into errors
	// instead of skipping them.
	Strict   bool     `yaml:"strict"`
	Suffixes []string `yaml:"suffixes"`
}

// Sources lists the remote endpoints manifests and artifacts are fetched from.
// Templates use {version} as the placeholder.
type Sources struct {
	VersionIndex string `yaml:"version_index"`
	// Version, when set, is fetched directly instead of looking the version
	// up in VersionIndex.
	Version      string `yaml:"version"`
	FabricLoader string `yaml:"fabric_loader"`
	Intermediary string `yaml:"intermediary"`
	Forge        string `yaml:"forge"`
	AssetHost    string `yaml:"asset_host"`
	Libraries    string `yaml:"libraries"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version:   1,
		Root:      "static",
		Workers:   4,
		UserAgent: "profilegen/1.0",
		LogLevel:  "info",
		Natives: NativesConfig{
			Suffixes: []string{".so", ".dll", ".dylib"},
		},
		Sources: Sources{
			VersionIndex: "https://launchermeta.mojang.com/mc/game/version_manifest.json",
			FabricLoader: "https://maven.fabricmc.net/net/fabricmc/fabric-loader/{version}/fabric-loader-{version}.json",
			Intermediary: "https://maven.fabricmc.net/",
			Forge:        "https://meta.multimc.org/v1/net.minecraftforge/{version}.json",
			AssetHost:    "https://resources.download.minecraft.net",
			Libraries:    "https://libraries.minecraft.net/",
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration. PROFILEGEN_ROOT is applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		contents, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(contents, &cfg); err != nil {
				return Config{}, fmt.Errorf("unmarshal config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	if root, ok := os.LookupEnv(RootEnv); ok && strings.TrimSpace(root) != "" {
		cfg.Root = strings.TrimSpace(root)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to defaults when the YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if strings.TrimSpace(c.Root) == "" {
		c.Root = defaults.Root
	}
	if c.Workers <= 0 {
		c.Workers = defaults.Workers
	}
	if c.UserAgent == "" {
		c.UserAgent = defaults.UserAgent
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
	if len(c.Natives.Suffixes) == 0 {
		c.Natives.Suffixes = defaults.Natives.Suffixes
	}
	if c.Sources.VersionIndex == "" {
		c.Sources.VersionIndex = defaults.Sources.VersionIndex
	}
	if c.Sources.FabricLoader == "" {
		c.Sources.FabricLoader = defaults.Sources.FabricLoader
	}
	if c.Sources.Intermediary == "" {
		c.Sources.Intermediary = defaults.Sources.Intermediary
	}
	if c.Sources.Forge == "" {
		c.Sources.Forge = defaults.Sources.Forge
	}
	if c.Sources.AssetHost == "" {
		c.Sources.AssetHost = defaults.Sources.AssetHost
	}
	if c.Sources.Libraries == "" {
		c.Sources.Libraries = defaults.Sources.Libraries
	}
}

// Expand substitutes {version} in a source template.
func Expand(template, version string) string {
	return strings.ReplaceAll(template, "{version}", version)
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
