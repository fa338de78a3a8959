package portscan

import (
	"strings"
)

// processHeaderLines is the number of leading lines of `tasklist` output
// (blank line, column titles, separator) that never describe a process.
const processHeaderLines = 3

// ProcessMap maps a process id to its image name.
type ProcessMap map[string]string

// ParseProcesses extracts process names from `tasklist` output.
// The first three lines are skipped unconditionally.
func ParseProcesses(output string) ProcessMap {
	res := make(ProcessMap)
	lines := strings.Split(output, "\n")
	if len(lines) <= processHeaderLines {
		return res
	}
	for _, line := range lines[processHeaderLines:] {
		pid, name, ok := ParseProcessLine(line)
		if !ok {
			continue
		}
		res[pid] = name
	}
	return res
}

// ParseProcessLine returns the pid and the name from a `tasklist` row.
// Only the first whitespace-delimited token is used as the name, so
// "Microsoft Edge.exe" is reported as "Microsoft".
func ParseProcessLine(line string) (string, string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !isDigits(fields[1]) {
		return "", "", false
	}
	return fields[1], fields[0], true
}
