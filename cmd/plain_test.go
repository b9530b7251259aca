package cmd

import (
	"strings"
	"testing"

	"github.com/psvitals/vitals/model"
)

// ── cpct ─────────────────────────────────────────────────────────────────────

func TestCpct_UnmeasuredRendersDash(t *testing.T) {
	got := cpct(-1, 70, 90)
	if !strings.Contains(got, "-") {
		t.Errorf("cpct(-1) = %q; want a dash placeholder", got)
	}
	if strings.Contains(got, "%") {
		t.Errorf("cpct(-1) = %q; should not render a percent sign", got)
	}
}

func TestCpct_CritIsRed(t *testing.T) {
	got := cpct(95, 70, 90)
	if !strings.Contains(got, "95.0%") {
		t.Errorf("cpct(95) = %q; want the value rendered", got)
	}
	if !strings.Contains(got, FBRed) {
		t.Errorf("cpct(95) = %q; want red styling above crit", got)
	}
}

func TestCpct_OKIsGreen(t *testing.T) {
	got := cpct(12.3, 70, 90)
	if !strings.Contains(got, FBGrn) {
		t.Errorf("cpct(12.3) = %q; want green styling below warn", got)
	}
}

// ── bar ──────────────────────────────────────────────────────────────────────

func TestBar_UnmeasuredIsEmptyTrack(t *testing.T) {
	got := bar(-1, 10)
	if strings.Contains(got, "#") {
		t.Errorf("bar(-1, 10) = %q; want no filled cells", got)
	}
	if strings.Count(got, "-") != 10 {
		t.Errorf("bar(-1, 10) = %q; want 10 track cells", got)
	}
}

func TestBar_HalfFull(t *testing.T) {
	got := bar(50, 10)
	if strings.Count(got, "#") != 5 {
		t.Errorf("bar(50, 10) = %q; want 5 filled cells", got)
	}
	if strings.Count(got, "-") != 5 {
		t.Errorf("bar(50, 10) = %q; want 5 empty cells", got)
	}
}

func TestBar_OverHundredClamped(t *testing.T) {
	got := bar(250, 8)
	if strings.Count(got, "#") != 8 {
		t.Errorf("bar(250, 8) = %q; want a full bar", got)
	}
}

// ── fb / fcount ──────────────────────────────────────────────────────────────

func TestFb_Unmeasured(t *testing.T) {
	if got := fb(-1); got != "-" {
		t.Errorf("fb(-1) = %q; want \"-\"", got)
	}
}

func TestFb_Zero(t *testing.T) {
	if got := fb(0); got != "0 B" {
		t.Errorf("fb(0) = %q; want \"0 B\"", got)
	}
}

func TestFb_BinaryUnits(t *testing.T) {
	if got := fb(1536); got != "1.5 KiB" {
		t.Errorf("fb(1536) = %q; want \"1.5 KiB\"", got)
	}
}

func TestFcount_Unmeasured(t *testing.T) {
	if got := fcount(-1); got != "-" {
		t.Errorf("fcount(-1) = %q; want \"-\"", got)
	}
}

func TestFcount_Value(t *testing.T) {
	if got := fcount(48); got != "48" {
		t.Errorf("fcount(48) = %q; want \"48\"", got)
	}
}

// ── trunc ────────────────────────────────────────────────────────────────────

func TestTrunc_ShortUnchanged(t *testing.T) {
	if got := trunc("hello", 10); got != "hello" {
		t.Errorf("trunc(\"hello\", 10) = %q; want \"hello\"", got)
	}
}

func TestTrunc_LongGetsEllipsis(t *testing.T) {
	if got := trunc("abcdefghij", 5); got != "abc.." {
		t.Errorf("trunc = %q; want \"abc..\"", got)
	}
}

func TestTrunc_TinyWidth(t *testing.T) {
	if got := trunc("abcd", 2); got != "ab" {
		t.Errorf("trunc = %q; want \"ab\"", got)
	}
}

// ── platformLabel ────────────────────────────────────────────────────────────

func TestPlatformLabel_PrefersVersion(t *testing.T) {
	snap := model.NewSystemSnapshot()
	snap.PlatformName = "linux"
	snap.PlatformVersion = "Ubuntu 24.04 LTS"
	if got := platformLabel(&snap); got != "Ubuntu 24.04 LTS" {
		t.Errorf("platformLabel = %q; want the version string", got)
	}
}

func TestPlatformLabel_FallsBackToName(t *testing.T) {
	snap := model.NewSystemSnapshot()
	snap.PlatformName = "darwin"
	if got := platformLabel(&snap); got != "darwin" {
		t.Errorf("platformLabel = %q; want \"darwin\"", got)
	}
}

// ── intensiveCounts ──────────────────────────────────────────────────────────

func TestIntensiveCounts(t *testing.T) {
	procs := []model.ProcessRecord{
		{PID: 1, CPUPercent: 55.0, MemoryPercent: 2.0},
		{PID: 2, CPUPercent: 10.0, MemoryPercent: 12.0}, // at threshold: not counted
		{PID: 3, CPUPercent: 10.1, MemoryPercent: 25.0},
		{PID: 4, CPUPercent: model.UnknownFloat, MemoryPercent: model.UnknownFloat},
	}
	cpu, mem := intensiveCounts(procs)
	if cpu != 2 {
		t.Errorf("cpu intensive = %d; want 2", cpu)
	}
	if mem != 2 {
		t.Errorf("mem intensive = %d; want 2", mem)
	}
}

// ── titleLine ────────────────────────────────────────────────────────────────

func TestTitleLine_ContainsTitle(t *testing.T) {
	got := titleLine("SYSTEM")
	if !strings.Contains(got, "== SYSTEM ") {
		t.Errorf("titleLine = %q; want \"== SYSTEM \" prefix", got)
	}
}
