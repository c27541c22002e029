package manifest

// VersionIndex is the launcher version list used to locate a version manifest.
type VersionIndex struct {
	Versions []VersionRef `json:"versions"`
}

// VersionRef points at a single version manifest.
type VersionRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// VersionManifest describes the base runtime of a game version.
type VersionManifest struct {
	ID         string           `json:"id"`
	AssetIndex AssetIndex       `json:"assetIndex"`
	Downloads  VersionDownloads `json:"downloads"`
	Libraries  []Library        `json:"libraries"`
}

// AssetIndex references the asset object list.
type AssetIndex struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// VersionDownloads holds the client archive entry.
type VersionDownloads struct {
	Client *Artifact `json:"client"`
}

// Artifact is a downloadable file. Path is relative to the libraries
// repository and is not set for the client archive.
type Artifact struct {
	Path string `json:"path,omitempty"`
	SHA1 string `json:"sha1,omitempty"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url"`
}

// Library is a single base runtime dependency.
type Library struct {
	Name      string           `json:"name"`
	Downloads LibraryDownloads `json:"downloads"`
	Rules     []Rule           `json:"rules,omitempty"`
}

// LibraryDownloads holds the main artifact and native bundles of a library.
type LibraryDownloads struct {
	Artifact    *Artifact    `json:"artifact,omitempty"`
	Classifiers *Classifiers `json:"classifiers,omitempty"`
}

// Classifiers are the platform native bundles of a library.
type Classifiers struct {
	NativesLinux   *Artifact `json:"natives-linux,omitempty"`
	NativesWindows *Artifact `json:"natives-windows,omitempty"`
	NativesOSX     *Artifact `json:"natives-osx,omitempty"`
	NativesMacOS   *Artifact `json:"natives-macos,omitempty"`
}

// Natives returns the present native bundles in osx, windows, linux, macos order.
func (c *Classifiers) Natives() []Artifact {
	if c == nil {
		return nil
	}
	var out []Artifact
	for _, a := range []*Artifact{c.NativesOSX, c.NativesWindows, c.NativesLinux, c.NativesMacOS} {
		if a != nil && a.URL != "" {
			out = append(out, *a)
		}
	}
	return out
}

// Rule is a platform condition attached to a library.
type Rule struct {
	Action string  `json:"action"`
	OS     *OSRule `json:"os,omitempty"`
}

// OSRule restricts a rule to one operating system.
type OSRule struct {
	Name string `json:"name"`
}

// Assets maps logical asset names to their content hash.
type Assets struct {
	Objects map[string]AssetObject `json:"objects"`
}

// AssetObject is a single asset entry.
type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size,omitempty"`
}

// ObjectURL returns host/hh/hash for the object.
func (o AssetObject) ObjectURL(host string) string {
	return trimSlash(host) + "/" + o.Hash[:2] + "/" + o.Hash
}

// Prefix is the two-character directory the object is stored under.
func (o AssetObject) Prefix() string {
	return o.Hash[:2]
}

func trimSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
