package util

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadFileString reads a file and returns its contents as a string.
func ReadFileString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFileLines reads a file and returns its lines.
func ReadFileLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// ParseKeyValueFile parses a file with "key value" or "key: value" lines.
func ParseKeyValueFile(path string) (map[string]string, error) {
	lines, err := ReadFileLines(path)
	if err != nil {
		return nil, err
	}
	return ParseKeyValueLines(lines), nil
}

// ParseKeyValueLines parses lines with "key value", "key: value", or
// "key=value" format. wmic-style "key=value" wins over ":" so WMI
// datetimes ("...=20240101120000.000000+000") keep their dots intact.
func ParseKeyValueLines(lines []string) map[string]string {
	m := make(map[string]string)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var key, val string
		if idx := strings.Index(line, "="); idx >= 0 {
			key = strings.TrimSpace(line[:idx])
			val = strings.TrimSpace(line[idx+1:])
		} else if idx := strings.Index(line, ":"); idx >= 0 {
			key = strings.TrimSpace(line[:idx])
			val = strings.TrimSpace(line[idx+1:])
		} else {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				key = fields[0]
				val = strings.Join(fields[1:], " ")
			} else if len(fields) == 1 {
				key = fields[0]
			}
		}
		if key != "" {
			m[key] = val
		}
	}
	return m
}

// ParseUint64 parses a string to uint64, returning 0 on error.
func ParseUint64(s string) uint64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " kB")
	s = strings.TrimSpace(s)
	v, _ := strconv.ParseUint(s, 10, 64)
	return v
}

// ParseInt parses a string to int, returning 0 on error.
func ParseInt(s string) int {
	s = strings.TrimSpace(s)
	v, _ := strconv.Atoi(s)
	return v
}

// ParseFloat64 parses a string to float64, returning 0 on error.
func ParseFloat64(s string) float64 {
	s = strings.TrimSpace(s)
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// sizeSuffixes maps unit suffixes to byte multipliers, longest first so
// "KiB" is not mistaken for a bare "B".
var sizeSuffixes = []struct {
	suffix string
	mult   int64
}{
	{"KIB", 1 << 10}, {"MIB", 1 << 20}, {"GIB", 1 << 30}, {"TIB", 1 << 40},
	{"KB", 1 << 10}, {"MB", 1 << 20}, {"GB", 1 << 30}, {"TB", 1 << 40},
	{"K", 1 << 10}, {"M", 1 << 20}, {"G", 1 << 30}, {"T", 1 << 40},
	{"B", 1},
}

// ParseMemSize parses a memory size with an optional binary-unit suffix
// into bytes: "1234" (already bytes), "1234 kB" (meminfo), "1,234 K"
// (tasklist), "2048.00M" (sysctl vm.swapusage), "1.5G". Thousands
// separators are ignored. A bare number passes through unchanged, so
// re-parsing an already-normalized byte count is a no-op.
func ParseMemSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty size")
	}

	mult := int64(1)
	upper := strings.ToUpper(s)
	for _, u := range sizeSuffixes {
		if strings.HasSuffix(upper, u.suffix) {
			mult = u.mult
			s = strings.TrimSpace(s[:len(s)-len(u.suffix)])
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse size %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return int64(v * float64(mult)), nil
}

// FieldsAt returns the field at the given index from a whitespace-split line.
// Returns empty string if index is out of bounds.
func FieldsAt(line string, idx int) string {
	fields := strings.Fields(line)
	if idx < len(fields) {
		return fields[idx]
	}
	return ""
}
