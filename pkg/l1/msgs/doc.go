// Package msgs defines the host side messages published about devices.
//
// Nothing here is part of the bus protocol: the bus only carries frames.
// Simulated devices publish a Status snapshot so hosts can watch them.
//
// Producer: simulation host
// Consumer: monitors, shells
package msgs
