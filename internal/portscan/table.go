package portscan

import (
	"sort"

	"github.com/cybozu-go/port-dashboard/internal/common"
)

// BuildTable merges the connection and process maps into port rows.
// Every port in [0, SystemPortMax] is reported; ports above it appear only
// when occupied. Rows are sorted by ascending port.
func BuildTable(conns ConnectionMap, procs ProcessMap) []common.PortRow {
	ports := make([]int, 0, len(conns))
	for port := range conns {
		ports = append(ports, port)
	}
	sort.Ints(ports)

	rows := make([]common.PortRow, 0, common.SystemPortMax+1+len(conns))
	seen := make(map[int]bool, len(conns))
	for _, port := range ports {
		software, ok := procs[conns[port]]
		if !ok {
			software = common.SoftwareUnknown
		}
		rows = append(rows, common.PortRow{
			Port:       port,
			SystemPort: common.IsSystemPort(port),
			Status:     common.StatusOccupied,
			Software:   software,
		})
		seen[port] = true
	}

	for port := 0; port <= common.SystemPortMax; port++ {
		if seen[port] {
			continue
		}
		rows = append(rows, common.PortRow{
			Port:       port,
			SystemPort: common.IsSystemPort(port),
			Status:     common.StatusFree,
			Software:   common.SoftwareNone,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Port < rows[j].Port
	})
	return rows
}
