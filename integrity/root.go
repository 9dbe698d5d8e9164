package integrity

import (
	"os"
	"strings"
)

var suPaths = []string{
	"/system/app/Superuser.apk",
	"/sbin/su",
	"/system/bin/su",
	"/system/xbin/su",
	"/data/local/xbin/su",
	"/data/local/bin/su",
	"/system/sd/xbin/su",
	"/system/bin/failsafe/su",
	"/data/local/su",
	"/su/bin/su",
	"/system/xbin/daemonsu",
	"/Applications/Cydia.app",
	"/private/var/lib/apt",
}

// PathRootProbe looks for su binaries, superuser apps and test-keys builds.
type PathRootProbe struct {
	Paths []string

	// BuildTags is ro.build.tags; "test-keys" marks a self-signed system image
	BuildTags string

	// stat is os.Stat unless replaced in tests
	stat func(string) (os.FileInfo, error)
}

var _ RootProbe = (*PathRootProbe)(nil)

func NewPathRootProbe(buildTags string) *PathRootProbe {
	return &PathRootProbe{Paths: suPaths, BuildTags: buildTags, stat: os.Stat}
}

func (p *PathRootProbe) IsRooted() (bool, error) {
	if strings.Contains(p.BuildTags, "test-keys") {
		return true, nil
	}
	stat := p.stat
	if stat == nil {
		stat = os.Stat
	}
	for _, path := range p.Paths {
		if _, err := stat(path); err == nil {
			return true, nil
		}
	}
	return false, nil
}
