package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/psvitals/vitals/model"
)

// NoLimit requests the full process list.
const NoLimit = -1

const defaultAdapterTimeout = 3 * time.Second

// Options configure an Orchestrator. The zero value detects the platform,
// uses the real command runner, the default per-adapter timeout, and the
// library source when it works.
type Options struct {
	Platform          model.Platform
	Timeout           time.Duration // per-adapter budget
	CPUSampleWindow   time.Duration // blocking window for cpu usage sampling
	DisableRichSource bool          // force the command/filesystem path
	Runner            Runner
	Debug             bool // log skipped sources; VITALS_DEBUG=1 also enables
}

// Orchestrator walks per-platform adapter priority lists. The first
// adapter that returns data becomes the base; later adapters only fill
// fields the base left unknown. It degrades rather than fails: with every
// source gone the caller still gets a result full of unknown markers.
type Orchestrator struct {
	platform  model.Platform
	processes []Adapter // priority order for the process query
	system    []Adapter // priority order for the system query
	timeout   time.Duration
	debug     bool
}

func NewOrchestrator(opts Options) *Orchestrator {
	platform := opts.Platform
	if platform == "" {
		platform = DetectPlatform()
	}
	r := opts.Runner
	if r == nil {
		r = NewRunner()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultAdapterTimeout
	}
	o := &Orchestrator{
		platform: platform,
		timeout:  timeout,
		debug:    opts.Debug || os.Getenv("VITALS_DEBUG") == "1",
	}

	if !opts.DisableRichSource && RichSourceAvailable() {
		rich := &GopsutilAdapter{SampleWindow: opts.CPUSampleWindow}
		o.processes = append(o.processes, rich)
		o.system = append(o.system, rich)
	}
	switch platform {
	case model.PlatformLinux:
		procfs := &ProcfsAdapter{SampleWindow: opts.CPUSampleWindow}
		o.processes = append(o.processes, procfs, &PSAdapter{Runner: r})
		o.system = append(o.system, procfs)
	case model.PlatformDarwin:
		o.processes = append(o.processes, &PSAdapter{Runner: r})
		o.system = append(o.system, &VMStatAdapter{Runner: r})
	case model.PlatformWindows:
		o.processes = append(o.processes, &TasklistAdapter{Runner: r})
		o.system = append(o.system, &WMICAdapter{Runner: r})
	}
	fallback := &FallbackAdapter{}
	o.processes = append(o.processes, fallback)
	o.system = append(o.system, fallback)
	return o
}

// Platform reports the platform family the orchestrator was built for.
func (o *Orchestrator) Platform() model.Platform { return o.platform }

// CollectProcesses returns the current processes sorted by cpu percent
// descending (ties by pid ascending), truncated to limit after sorting.
// NoLimit returns everything; 0 is a valid request for none. All sources
// failing yields an empty list, never an error.
func (o *Orchestrator) CollectProcesses(ctx context.Context, limit int) []model.ProcessRecord {
	procs, _ := o.collectProcessList(ctx)
	if len(procs) == 0 {
		return []model.ProcessRecord{}
	}
	if needsMemoryDerivation(procs) {
		if total := o.totalMemory(ctx); total > 0 {
			deriveProcessMemory(procs, total)
		}
	}
	for i := range procs {
		procs[i].Normalize()
	}
	model.SortProcesses(procs)
	return Truncate(procs, limit)
}

// CollectSystemStatus assembles a full snapshot: system vitals from the
// base adapter plus concurrent gap-fillers, and the complete process list
// so status counts are computed over every process, not a display page.
func (o *Orchestrator) CollectSystemStatus(ctx context.Context) model.SystemSnapshot {
	snap, sources := o.collectSystemBase(ctx)

	procs, procSource := o.collectProcessList(ctx)
	snap.Processes = procs
	if procSource != "" {
		sources = appendSource(sources, procSource)
	}
	deriveProcessMemory(snap.Processes, snap.Memory.Total)

	snap.Sources = sources
	snap.Finalize()
	return snap
}

// collectProcessList walks the process priority list and returns the first
// non-empty record set along with the source that produced it.
func (o *Orchestrator) collectProcessList(ctx context.Context) ([]model.ProcessRecord, string) {
	for _, a := range o.processes {
		p, err := o.safeCollect(ctx, a, QueryProcesses)
		if err != nil {
			o.logSkip(a, QueryProcesses, err)
			continue
		}
		if p == nil || len(p.Processes) == 0 {
			continue
		}
		return p.Processes, p.Source
	}
	return nil, ""
}

// collectSystemBase finds the first adapter that yields system data, then
// runs the remaining adapters concurrently and merges their partials in
// priority order into the base's unknown fields.
func (o *Orchestrator) collectSystemBase(ctx context.Context) (model.SystemSnapshot, []string) {
	for i, a := range o.system {
		p, err := o.safeCollect(ctx, a, QuerySystem)
		if err != nil {
			o.logSkip(a, QuerySystem, err)
			continue
		}
		if p == nil || p.System == nil {
			continue
		}
		snap := *p.System
		sources := []string{p.Source}

		rest := o.system[i+1:]
		if len(rest) == 0 || systemComplete(&snap) {
			return snap, sources
		}
		fills := make([]*Partial, len(rest))
		var g errgroup.Group
		for j, filler := range rest {
			j, filler := j, filler
			g.Go(func() error {
				fp, err := o.safeCollect(ctx, filler, QuerySystem)
				if err != nil {
					o.logSkip(filler, QuerySystem, err)
					return nil
				}
				fills[j] = fp
				return nil
			})
		}
		_ = g.Wait()
		for _, fp := range fills {
			if fp == nil || fp.System == nil {
				continue
			}
			if mergeSystem(&snap, fp.System) {
				sources = appendSource(sources, fp.Source)
			}
		}
		return snap, sources
	}

	// Every source failed: a recognizable shell of a snapshot, not an error.
	snap := model.NewSystemSnapshot()
	snap.PlatformName = string(o.platform)
	return snap, nil
}

// safeCollect shields the orchestrator from a misbehaving adapter: it
// bounds the call with the per-adapter timeout, converts panics into
// unavailability, and tags errors with the source name.
func (o *Orchestrator) safeCollect(ctx context.Context, a Adapter, kind Query) (p *Partial, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = &SourceError{Source: a.Name(), Err: fmt.Errorf("panic: %v: %w", r, ErrSourceUnavailable)}
		}
	}()
	cctx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	p, err = a.TryCollect(cctx, kind)
	if err != nil {
		var se *SourceError
		if !errors.As(err, &se) {
			err = &SourceError{Source: a.Name(), Err: err}
		}
	}
	return p, err
}

func (o *Orchestrator) logSkip(a Adapter, kind Query, err error) {
	if o.debug {
		log.Printf("vitals: source %s skipped for %s query: %v", a.Name(), kind, err)
	}
}

// totalMemory asks the system adapters for just the total-memory figure,
// used to turn rss bytes into a memory percent when the process source
// does not report one.
func (o *Orchestrator) totalMemory(ctx context.Context) int64 {
	for _, a := range o.system {
		p, err := o.safeCollect(ctx, a, QuerySystem)
		if err != nil || p == nil || p.System == nil {
			continue
		}
		if p.System.Memory.Total > 0 {
			return p.System.Memory.Total
		}
	}
	return model.UnknownInt
}

func needsMemoryDerivation(procs []model.ProcessRecord) bool {
	for _, p := range procs {
		if p.MemoryPercent < 0 && p.RSS >= 0 {
			return true
		}
	}
	return false
}

func deriveProcessMemory(procs []model.ProcessRecord, total int64) {
	if total <= 0 {
		return
	}
	for i := range procs {
		if procs[i].MemoryPercent < 0 && procs[i].RSS >= 0 {
			procs[i].MemoryPercent = float64(procs[i].RSS) / float64(total) * 100
		}
	}
}

// Truncate applies a post-sort limit: negative means everything, zero is a
// valid request for an empty list.
func Truncate(procs []model.ProcessRecord, limit int) []model.ProcessRecord {
	if limit < 0 || limit >= len(procs) {
		return procs
	}
	return procs[:limit]
}

func appendSource(sources []string, name string) []string {
	for _, s := range sources {
		if s == name {
			return sources
		}
	}
	return append(sources, name)
}

func textUnknown(s string) bool { return s == "" || s == model.UnknownText }

// mergeSystem copies src fields into dst where dst is unknown, reporting
// whether anything changed. Derived percentages are left for Finalize.
func mergeSystem(dst, src *model.SystemSnapshot) bool {
	changed := fillText(&dst.PlatformName, src.PlatformName)
	changed = fillText(&dst.PlatformVersion, src.PlatformVersion) || changed
	changed = fillText(&dst.Architecture, src.Architecture) || changed
	changed = fillText(&dst.Hostname, src.Hostname) || changed
	if dst.BootTime.IsZero() && !src.BootTime.IsZero() {
		dst.BootTime = src.BootTime
		changed = true
	}
	changed = fillInt(&dst.CPU.PhysicalCores, src.CPU.PhysicalCores) || changed
	changed = fillInt(&dst.CPU.LogicalCores, src.CPU.LogicalCores) || changed
	changed = fillFloat(&dst.CPU.UsagePercent, src.CPU.UsagePercent) || changed
	changed = fillText(&dst.CPU.ModelName, src.CPU.ModelName) || changed
	changed = fillInt(&dst.Memory.Total, src.Memory.Total) || changed
	changed = fillInt(&dst.Memory.Used, src.Memory.Used) || changed
	changed = fillInt(&dst.Memory.Available, src.Memory.Available) || changed
	changed = fillInt(&dst.Swap.Total, src.Swap.Total) || changed
	changed = fillInt(&dst.Swap.Used, src.Swap.Used) || changed
	changed = fillInt(&dst.Swap.Available, src.Swap.Available) || changed
	if len(dst.LoadAverage) == 0 && len(src.LoadAverage) > 0 {
		dst.LoadAverage = src.LoadAverage
		changed = true
	}
	return changed
}

func fillText(dst *string, src string) bool {
	if textUnknown(*dst) && !textUnknown(src) {
		*dst = src
		return true
	}
	return false
}

func fillInt(dst *int64, src int64) bool {
	if *dst < 0 && src >= 0 {
		*dst = src
		return true
	}
	return false
}

func fillFloat(dst *float64, src float64) bool {
	if *dst < 0 && src >= 0 {
		*dst = src
		return true
	}
	return false
}

// systemComplete reports whether a snapshot has no gaps worth filling, so
// the orchestrator can skip the remaining adapters entirely.
func systemComplete(s *model.SystemSnapshot) bool {
	if textUnknown(s.PlatformName) || textUnknown(s.PlatformVersion) ||
		textUnknown(s.Architecture) || textUnknown(s.Hostname) {
		return false
	}
	if s.BootTime.IsZero() || len(s.LoadAverage) == 0 {
		return false
	}
	if s.CPU.PhysicalCores < 0 || s.CPU.LogicalCores < 0 ||
		s.CPU.UsagePercent < 0 || textUnknown(s.CPU.ModelName) {
		return false
	}
	if s.Memory.Total < 0 || s.Memory.Used < 0 || s.Memory.Available < 0 {
		return false
	}
	if s.Swap.Total < 0 || s.Swap.Used < 0 {
		return false
	}
	return true
}
