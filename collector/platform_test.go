package collector

import (
	"testing"

	"github.com/psvitals/vitals/model"
)

func TestClassifyGOOS_KnownFamilies(t *testing.T) {
	cases := map[string]model.Platform{
		"linux":   model.PlatformLinux,
		"windows": model.PlatformWindows,
		"darwin":  model.PlatformDarwin,
	}
	for goos, want := range cases {
		if got := classifyGOOS(goos); got != want {
			t.Errorf("classifyGOOS(%q) = %q; want %q", goos, got, want)
		}
	}
}

func TestClassifyGOOS_EverythingElseIsOther(t *testing.T) {
	for _, goos := range []string{"freebsd", "openbsd", "plan9", "js", ""} {
		if got := classifyGOOS(goos); got != model.PlatformOther {
			t.Errorf("classifyGOOS(%q) = %q; want %q", goos, got, model.PlatformOther)
		}
	}
}

func TestDetectPlatform_Memoized(t *testing.T) {
	first := DetectPlatform()
	second := DetectPlatform()
	if first != second {
		t.Errorf("DetectPlatform() = %q then %q; want stable answer", first, second)
	}
	if first == "" {
		t.Errorf("DetectPlatform() = empty; want a platform family")
	}
}
