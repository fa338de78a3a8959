package common

// PortStatus tells whether a port has a listening socket.
type PortStatus string

const (
	StatusOccupied PortStatus = "Occupied"
	StatusFree     PortStatus = "Free"
)

// PortRow represents one reported port
type PortRow struct {
	// Port represents the port number
	Port int `json:"port"`
	// SystemPort is true for ports in the reserved range 0-1024
	SystemPort bool `json:"systemPort"`
	// Status represents whether the port is occupied
	Status PortStatus `json:"status"`
	// Software represents the name of the owning process
	Software string `json:"software"`
}

// IsSystemPort reports whether port is in the reserved range.
func IsSystemPort(port int) bool {
	return 0 <= port && port <= SystemPortMax
}
