package collector

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/psvitals/vitals/model"
)

// FallbackAdapter reports the facts the runtime itself knows. It never
// shells out and never fails for the system query, so it terminates every
// priority list: even an unrecognized platform gets platform name,
// architecture, hostname, and a core count.
type FallbackAdapter struct{}

func (a *FallbackAdapter) Name() string { return "fallback" }

func (a *FallbackAdapter) TryCollect(ctx context.Context, kind Query) (*Partial, error) {
	if kind != QuerySystem {
		return nil, fmt.Errorf("fallback: process enumeration not supported: %w", ErrSourceUnavailable)
	}
	snap := model.NewSystemSnapshot()
	snap.PlatformName = runtime.GOOS
	snap.Architecture = runtime.GOARCH
	snap.CPU.LogicalCores = int64(runtime.NumCPU())
	if hn, err := os.Hostname(); err == nil && hn != "" {
		snap.Hostname = hn
	}
	return &Partial{Source: a.Name(), System: &snap}, nil
}
