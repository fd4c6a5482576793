package gen

import "fmt"

// Version identifies the MDL language version targeted by a generation run.
// It selects the version-suffix substitution used in external module
// references.
type Version uint8

const (
	Version1_6 Version = iota
	Version1_7
	Version1_8
	Version1_9
	Version1_10
)

// VersionLatest is the newest MDL version this generator knows about.
const VersionLatest = Version1_10

var versionStrings = [...]string{
	Version1_6:  "1.6",
	Version1_7:  "1.7",
	Version1_8:  "1.8",
	Version1_9:  "1.9",
	Version1_10: "1.10",
}

func (v Version) String() string {
	if int(v) >= len(versionStrings) {
		return "Version(" + fmt.Sprint(uint8(v)) + ")"
	}
	return versionStrings[v]
}

// FilenameSuffix returns the version as spelled inside versioned module
// filenames, e.g. "1_6" for the module "stdlib_1_6.mdl".
func (v Version) FilenameSuffix() string {
	if int(v) >= len(versionStrings) {
		return ""
	}
	s := versionStrings[v]
	b := []byte(s)
	for i := range b {
		if b[i] == '.' {
			b[i] = '_'
		}
	}
	return string(b)
}

// ParseVersion parses a dotted MDL version string such as "1.8".
func ParseVersion(s string) (Version, error) {
	for v, str := range versionStrings {
		if str == s {
			return Version(v), nil
		}
	}
	return 0, fmt.Errorf("unsupported MDL version %q", s)
}
