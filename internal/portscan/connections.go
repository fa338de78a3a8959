package portscan

import (
	"strconv"
	"strings"
)

const maxPort = 65535

// ConnectionMap maps a listening port to the id of its owning process.
type ConnectionMap map[int]string

// ParseConnections extracts listening TCP ports from `netstat -aon` output.
// When a port is listed more than once, the last line wins.
func ParseConnections(output string) ConnectionMap {
	res := make(ConnectionMap)
	for _, line := range strings.Split(output, "\n") {
		port, pid, ok := ParseConnectionLine(line)
		if !ok {
			continue
		}
		res[port] = pid
	}
	return res
}

// ParseConnectionLine recognizes a line of the shape
//
//	TCP    0.0.0.0:135    0.0.0.0:0    LISTENING    888
//
// and returns the local port and the pid. Both addresses must be dotted IPv4
// literals, so IPv6 listeners (e.g. "[::]:135") never match.
func ParseConnectionLine(line string) (int, string, bool) {
	fields := strings.Fields(line)
	for i := 0; i+4 < len(fields); i++ {
		if fields[i] != "TCP" {
			continue
		}
		port, ok := parseIPv4Address(fields[i+1])
		if !ok {
			continue
		}
		if _, ok := parseIPv4Address(fields[i+2]); !ok {
			continue
		}
		if fields[i+3] != "LISTENING" {
			continue
		}
		pid := fields[i+4]
		if !isDigits(pid) {
			continue
		}
		return port, pid, true
	}
	return 0, "", false
}

// parseIPv4Address accepts "<digits and dots>:<digits>" and returns the port.
func parseIPv4Address(s string) (int, bool) {
	host, portStr, found := strings.Cut(s, ":")
	if !found || host == "" || !isDigits(portStr) {
		return 0, false
	}
	for _, ch := range host {
		if ch != '.' && (ch < '0' || ch > '9') {
			return 0, false
		}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port > maxPort {
		return 0, false
	}
	return port, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
