package common

// SystemPortMax is the highest port number classified as a system port.
const SystemPortMax = 1024

const SoftwareUnknown = "Unknown"
const SoftwareNone = "-"

// HeaderDegraded carries the comma-separated names of listers that failed
// while computing a port table.
const HeaderDegraded = "X-Port-Dashboard-Degraded"
