package profile

import (
	"regexp"

	"profilegen/internal/manifest"
)

var versionSuffix = regexp.MustCompile(`-\d.\d.\d.+`)

// RenameTarget strips the version qualifier from a library file name, so
// "lwjgl-2.9.4-nightly.jar" becomes "lwjgl.jar".
func RenameTarget(fileName string) string {
	return versionSuffix.ReplaceAllString(fileName, ".jar")
}

// SynthesizeOptionals turns the rules of a library into launcher optionals
// that rename fileName to its unversioned target on matching systems. Only
// allow rules without an OS or with os "osx" produce an optional; every other
// rule is ignored. The returned target is empty when nothing was produced.
func SynthesizeOptionals(fileName string, rules []manifest.Rule) (string, []Optional) {
	target := RenameTarget(fileName)
	var out []Optional
	for _, r := range rules {
		rule, ok := optionalRule(r)
		if !ok {
			continue
		}
		out = append(out, Optional{
			Actions: []Action{{
				Location: LocationLibraries,
				Files: OptionalFiles{
					OriginalPaths: []string{},
					RenamePaths:   map[string]string{fileName: target},
				},
			}},
			Rules:   []Rule{rule},
			Enabled: true,
			Visible: false,
		})
	}
	if len(out) == 0 {
		return "", nil
	}
	return target, out
}

func optionalRule(r manifest.Rule) (Rule, bool) {
	if r.Action != "allow" {
		return Rule{}, false
	}
	switch {
	case r.OS == nil:
		return Rule{OSType: OSMacOSX64, CompareMode: CompareUnequal}, true
	case r.OS.Name == "osx":
		return Rule{OSType: OSMacOSX64, CompareMode: CompareEqual}, true
	default:
		return Rule{}, false
	}
}
