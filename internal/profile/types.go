package profile

// Descriptor is the launcher profile written to profile.json.
type Descriptor struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	Libraries       []string `json:"libraries"`
	ClassPath       []string `json:"classPath"`
	MainClass       string   `json:"mainClass"`
	UpdateVerify    []string `json:"updateVerify"`
	UpdateExclusion []string `json:"updateExclusion"`
	JVMArgs         []string `json:"jvmArgs"`
	ClientArgs      []string `json:"clientArgs"`
	Assets          string   `json:"assets"`
	AssetsDir       string   `json:"assetsDir"`
	ServerName      string   `json:"serverName"`
	ServerPort      int      `json:"serverPort"`
}

// Location names the launcher folder a file action applies to.
type Location string

// LocationLibraries is the profile's libraries folder.
const LocationLibraries Location = "Libraries"

// OSType identifies an operating system family for optional rules.
type OSType string

// OSMacOSX64 is 64-bit macOS.
const OSMacOSX64 OSType = "MacOsX64"

// CompareMode controls how an optional rule matches the host OS.
type CompareMode string

const (
	CompareEqual   CompareMode = "Equal"
	CompareUnequal CompareMode = "Unequal"
)

// OptionalFiles lists files an optional touches. RenamePaths maps an original
// file name to the name it is renamed to when the optional applies.
type OptionalFiles struct {
	OriginalPaths []string          `json:"originalPaths"`
	RenamePaths   map[string]string `json:"renamePaths"`
}

// Action is a file action applied at Location.
type Action struct {
	Location Location      `json:"location"`
	Files    OptionalFiles `json:"files"`
}

// Rule matches the host OS against OSType.
type Rule struct {
	OSType      OSType      `json:"osType"`
	CompareMode CompareMode `json:"compareMode"`
}

// Optional is a conditional file action evaluated by the launcher.
type Optional struct {
	Actions     []Action `json:"actions"`
	Rules       []Rule   `json:"rules"`
	Enabled     bool     `json:"enabled"`
	Visible     bool     `json:"visible"`
	Description *string  `json:"description,omitempty"`
	Name        *string  `json:"name,omitempty"`
}
