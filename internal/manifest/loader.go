package manifest

import (
	"encoding/json"
	"fmt"
	"path"

	"profilegen/internal/coord"
)

// LoaderManifest is the common shape both loader flavors resolve to.
type LoaderManifest struct {
	MainClass string
	// Libraries are installed flat into the libraries folder and listed in the profile.
	Libraries []LibraryRef
	// Files are placed under their repository path and not listed in the profile.
	Files     []LibraryRef
	ExtraArgs []string
}

// LibraryRef is an expanded library: where to fetch it and its repository path.
type LibraryRef struct {
	URL  string
	Path string
}

// FileName is the last segment of the repository path.
func (r LibraryRef) FileName() string {
	return path.Base(r.Path)
}

// NamedLibrary is a library given by maven coordinate and repository base URL.
type NamedLibrary struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

func (l NamedLibrary) ref(defaultRepo string) (LibraryRef, error) {
	c, err := coord.Parse(l.Name)
	if err != nil {
		return LibraryRef{}, err
	}
	repo := l.URL
	if repo == "" {
		repo = defaultRepo
	}
	return LibraryRef{URL: c.URL(repo), Path: c.Path()}, nil
}

// PathLibrary is a library that carries an explicit download entry.
type PathLibrary struct {
	Name      string           `json:"name,omitempty"`
	Downloads LibraryDownloads `json:"downloads"`
}

// FabricManifest is the Fabric loader launcher descriptor.
type FabricManifest struct {
	Libraries struct {
		Client []NamedLibrary `json:"client"`
		Common []NamedLibrary `json:"common"`
	} `json:"libraries"`
	MainClass struct {
		Client string `json:"client"`
	} `json:"mainClass"`
}

func (m *FabricManifest) validate(u string) error {
	if m.MainClass.Client == "" {
		return missing(u, "mainClass.client")
	}
	for i, lib := range m.Libraries.Client {
		if lib.Name == "" {
			return missing(u, fmt.Sprintf("libraries.client[%d].name", i))
		}
	}
	for i, lib := range m.Libraries.Common {
		if lib.Name == "" {
			return missing(u, fmt.Sprintf("libraries.common[%d].name", i))
		}
	}
	return nil
}

// Loader merges common libraries into the client list and expands every
// coordinate. The intermediary mappings for gameVersion are appended from
// intermediaryRepo.
func (m *FabricManifest) Loader(gameVersion, intermediaryRepo, defaultRepo string) (*LoaderManifest, error) {
	m.Libraries.Client = append(m.Libraries.Client, m.Libraries.Common...)
	m.Libraries.Common = nil

	out := &LoaderManifest{
		MainClass: m.MainClass.Client,
		Libraries: make([]LibraryRef, 0, len(m.Libraries.Client)+1),
	}
	for _, lib := range m.Libraries.Client {
		ref, err := lib.ref(defaultRepo)
		if err != nil {
			return nil, fmt.Errorf("expand fabric library: %w", err)
		}
		out.Libraries = append(out.Libraries, ref)
	}

	mappings := NamedLibrary{Name: "net.fabricmc:intermediary:" + gameVersion, URL: intermediaryRepo}
	ref, err := mappings.ref(defaultRepo)
	if err != nil {
		return nil, fmt.Errorf("expand intermediary: %w", err)
	}
	out.Libraries = append(out.Libraries, ref)
	return out, nil
}

// ForgeLibrary is either a PathLibrary or a NamedLibrary.
type ForgeLibrary struct {
	Path  *PathLibrary
	Named *NamedLibrary
}

// UnmarshalJSON picks the variant: an entry with downloads.artifact is a path
// library, otherwise a named one.
func (l *ForgeLibrary) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name      string           `json:"name"`
		URL       string           `json:"url"`
		Downloads LibraryDownloads `json:"downloads"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = ForgeLibrary{}
	if raw.Downloads.Artifact != nil {
		l.Path = &PathLibrary{Name: raw.Name, Downloads: raw.Downloads}
		return nil
	}
	if raw.Name != "" {
		l.Named = &NamedLibrary{Name: raw.Name, URL: raw.URL}
	}
	return nil
}

// MarshalJSON writes back whichever variant is set.
func (l ForgeLibrary) MarshalJSON() ([]byte, error) {
	if l.Path != nil {
		return json.Marshal(l.Path)
	}
	return json.Marshal(l.Named)
}

// ForgeManifest is the Forge loader descriptor.
type ForgeManifest struct {
	MainClass  string         `json:"mainClass"`
	Tweakers   []string       `json:"+tweakers,omitempty"`
	MavenFiles []PathLibrary  `json:"mavenFiles,omitempty"`
	Libraries  []ForgeLibrary `json:"libraries"`
}

func (m *ForgeManifest) validate(u string) error {
	if m.MainClass == "" {
		return missing(u, "mainClass")
	}
	for i, lib := range m.Libraries {
		switch {
		case lib.Path != nil:
			if lib.Path.Downloads.Artifact.URL == "" {
				return missing(u, fmt.Sprintf("libraries[%d].downloads.artifact.url", i))
			}
		case lib.Named != nil:
		default:
			return missing(u, fmt.Sprintf("libraries[%d].name", i))
		}
	}
	for i, f := range m.MavenFiles {
		if f.Downloads.Artifact == nil || f.Downloads.Artifact.URL == "" {
			return missing(u, fmt.Sprintf("mavenFiles[%d].downloads.artifact.url", i))
		}
	}
	return nil
}

// Loader expands libraries and maven files and turns tweakers into
// --tweakClass arguments. Path libraries without a path are skipped.
func (m *ForgeManifest) Loader(defaultRepo string) (*LoaderManifest, error) {
	out := &LoaderManifest{
		MainClass: m.MainClass,
		Libraries: make([]LibraryRef, 0, len(m.Libraries)),
	}
	for _, lib := range m.Libraries {
		switch {
		case lib.Path != nil:
			a := lib.Path.Downloads.Artifact
			if a.Path == "" {
				continue
			}
			out.Libraries = append(out.Libraries, LibraryRef{URL: a.URL, Path: a.Path})
		case lib.Named != nil:
			ref, err := lib.Named.ref(defaultRepo)
			if err != nil {
				return nil, fmt.Errorf("expand forge library: %w", err)
			}
			out.Libraries = append(out.Libraries, ref)
		}
	}
	for _, f := range m.MavenFiles {
		a := f.Downloads.Artifact
		if a == nil || a.Path == "" {
			continue
		}
		out.Files = append(out.Files, LibraryRef{URL: a.URL, Path: a.Path})
	}
	for _, tweak := range m.Tweakers {
		out.ExtraArgs = append(out.ExtraArgs, "--tweakClass", tweak)
	}
	return out, nil
}
