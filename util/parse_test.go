package util

import (
	"os"
	"path/filepath"
	"testing"
)

// ---------------------------------------------------------------------------
// ParseMemSize – unit suffixes normalize to bytes during parsing
// ---------------------------------------------------------------------------

func TestParseMemSize_PlainBytes(t *testing.T) {
	got, err := ParseMemSize("12345")
	if err != nil {
		t.Fatalf("ParseMemSize(\"12345\") error: %v", err)
	}
	if got != 12345 {
		t.Errorf("ParseMemSize(\"12345\") = %d; want 12345", got)
	}
}

func TestParseMemSize_MeminfoKB(t *testing.T) {
	got, err := ParseMemSize("1234 kB")
	if err != nil {
		t.Fatalf("ParseMemSize(\"1234 kB\") error: %v", err)
	}
	if got != 1234*1024 {
		t.Errorf("ParseMemSize(\"1234 kB\") = %d; want %d", got, 1234*1024)
	}
}

func TestParseMemSize_TasklistCommaK(t *testing.T) {
	got, err := ParseMemSize("1,234 K")
	if err != nil {
		t.Fatalf("ParseMemSize(\"1,234 K\") error: %v", err)
	}
	if got != 1234*1024 {
		t.Errorf("ParseMemSize(\"1,234 K\") = %d; want %d", got, 1234*1024)
	}
}

func TestParseMemSize_SwapusageM(t *testing.T) {
	got, err := ParseMemSize("2048.00M")
	if err != nil {
		t.Fatalf("ParseMemSize(\"2048.00M\") error: %v", err)
	}
	if got != 2048*1024*1024 {
		t.Errorf("ParseMemSize(\"2048.00M\") = %d; want %d", got, 2048*1024*1024)
	}
}

func TestParseMemSize_FractionalG(t *testing.T) {
	got, err := ParseMemSize("1.5G")
	if err != nil {
		t.Fatalf("ParseMemSize(\"1.5G\") error: %v", err)
	}
	want := int64(1.5 * 1024 * 1024 * 1024)
	if got != want {
		t.Errorf("ParseMemSize(\"1.5G\") = %d; want %d", got, want)
	}
}

func TestParseMemSize_KiB(t *testing.T) {
	got, err := ParseMemSize("8 KiB")
	if err != nil {
		t.Fatalf("ParseMemSize(\"8 KiB\") error: %v", err)
	}
	if got != 8192 {
		t.Errorf("ParseMemSize(\"8 KiB\") = %d; want 8192", got)
	}
}

func TestParseMemSize_Idempotent(t *testing.T) {
	first, err := ParseMemSize("2048.00M")
	if err != nil {
		t.Fatalf("first parse error: %v", err)
	}
	second, err := ParseMemSize("2147483648")
	if err != nil {
		t.Fatalf("re-parse error: %v", err)
	}
	if first != second {
		t.Errorf("re-parsing normalized bytes changed value: %d != %d", second, first)
	}
}

func TestParseMemSize_EmptyIsError(t *testing.T) {
	if _, err := ParseMemSize("   "); err == nil {
		t.Error("ParseMemSize(\"   \") = nil error; want error")
	}
}

func TestParseMemSize_GarbageIsError(t *testing.T) {
	if _, err := ParseMemSize("N/A"); err == nil {
		t.Error("ParseMemSize(\"N/A\") = nil error; want error")
	}
}

func TestParseMemSize_NegativeIsError(t *testing.T) {
	if _, err := ParseMemSize("-5M"); err == nil {
		t.Error("ParseMemSize(\"-5M\") = nil error; want error")
	}
}

// ---------------------------------------------------------------------------
// ParseKeyValueLines – colon, equals, and whitespace separated forms
// ---------------------------------------------------------------------------

func TestParseKeyValueLines_ColonForm(t *testing.T) {
	m := ParseKeyValueLines([]string{"MemTotal:       16384 kB", "MemFree: 1024 kB"})
	if m["MemTotal"] != "16384 kB" {
		t.Errorf("m[MemTotal] = %q; want \"16384 kB\"", m["MemTotal"])
	}
}

func TestParseKeyValueLines_EqualsForm(t *testing.T) {
	m := ParseKeyValueLines([]string{"TotalVisibleMemorySize=16777216", "Caption=Microsoft Windows 11 Pro"})
	if m["TotalVisibleMemorySize"] != "16777216" {
		t.Errorf("m[TotalVisibleMemorySize] = %q; want \"16777216\"", m["TotalVisibleMemorySize"])
	}
	if m["Caption"] != "Microsoft Windows 11 Pro" {
		t.Errorf("m[Caption] = %q; want full caption", m["Caption"])
	}
}

func TestParseKeyValueLines_EqualsWinsOverColon(t *testing.T) {
	// WMI datetimes carry a colon-free date but a dotted fraction; the "="
	// must split the pair, not any later punctuation.
	m := ParseKeyValueLines([]string{"LastBootUpTime=20240101120000.500000+060"})
	if m["LastBootUpTime"] != "20240101120000.500000+060" {
		t.Errorf("m[LastBootUpTime] = %q; want the raw datetime", m["LastBootUpTime"])
	}
}

func TestParseKeyValueLines_WhitespaceForm(t *testing.T) {
	m := ParseKeyValueLines([]string{"btime 1700000000"})
	if m["btime"] != "1700000000" {
		t.Errorf("m[btime] = %q; want \"1700000000\"", m["btime"])
	}
}

func TestParseKeyValueLines_SkipsBlanks(t *testing.T) {
	m := ParseKeyValueLines([]string{"", "  ", "a: 1"})
	if len(m) != 1 {
		t.Errorf("len(m) = %d; want 1", len(m))
	}
}

// ---------------------------------------------------------------------------
// Numeric helpers
// ---------------------------------------------------------------------------

func TestParseUint64_StripsKBSuffix(t *testing.T) {
	got := ParseUint64("204 kB")
	if got != 204 {
		t.Errorf("ParseUint64(\"204 kB\") = %d; want 204", got)
	}
}

func TestParseUint64_InvalidIsZero(t *testing.T) {
	got := ParseUint64("nope")
	if got != 0 {
		t.Errorf("ParseUint64(\"nope\") = %d; want 0", got)
	}
}

func TestParseFloat64_Basic(t *testing.T) {
	got := ParseFloat64(" 3.25 ")
	if got != 3.25 {
		t.Errorf("ParseFloat64(\" 3.25 \") = %v; want 3.25", got)
	}
}

func TestFieldsAt_InBoundsAndOut(t *testing.T) {
	line := "cpu  100 200 300"
	if got := FieldsAt(line, 2); got != "200" {
		t.Errorf("FieldsAt(line, 2) = %q; want \"200\"", got)
	}
	if got := FieldsAt(line, 9); got != "" {
		t.Errorf("FieldsAt(line, 9) = %q; want \"\"", got)
	}
}

// ---------------------------------------------------------------------------
// File readers
// ---------------------------------------------------------------------------

func TestReadFileLines_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lines")
	if err := os.WriteFile(path, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	lines, err := ReadFileLines(path)
	if err != nil {
		t.Fatalf("ReadFileLines error: %v", err)
	}
	if len(lines) != 3 || lines[1] != "two" {
		t.Errorf("lines = %v; want [one two three]", lines)
	}
}

func TestParseKeyValueFile_Missing(t *testing.T) {
	if _, err := ParseKeyValueFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("ParseKeyValueFile(absent) = nil error; want error")
	}
}
