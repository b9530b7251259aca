package collector

import (
	"runtime"
	"sync"

	"github.com/psvitals/vitals/model"
)

var (
	platformOnce sync.Once
	platformKind model.Platform
)

// DetectPlatform reports the operating system family, memoized for the
// process lifetime. It never fails: anything that is not linux, windows,
// or darwin maps to PlatformOther, which routes to the generic fallback
// adapter only.
func DetectPlatform() model.Platform {
	platformOnce.Do(func() {
		platformKind = classifyGOOS(runtime.GOOS)
	})
	return platformKind
}

func classifyGOOS(goos string) model.Platform {
	switch goos {
	case "linux":
		return model.PlatformLinux
	case "windows":
		return model.PlatformWindows
	case "darwin":
		return model.PlatformDarwin
	}
	return model.PlatformOther
}
