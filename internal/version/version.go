package version

import "runtime/debug"

// Version is set at build time with -ldflags "-X .../internal/version.Version=1.2.3".
var Version = ""

type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Load reports the linked version, falling back to the module build info.
func Load() Info {
	info := Info{Version: Version}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		if info.Version == "" {
			info.Version = "0.0.0"
		}
		return info
	}
	if info.Version == "" {
		info.Version = bi.Main.Version
	}
	if info.Version == "" || info.Version == "(devel)" {
		info.Version = "0.0.0"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			info.Commit = s.Value
		}
	}
	return info
}
