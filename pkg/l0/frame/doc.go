// Package frame provides the peripheral bus protocol.
package frame

// The bus carries fixed size command frames from a single bus master to
// any number of actuator controllers sharing the line. There is no slave
// select: every controller listens to every byte and uses the address
// field to decide whether a frame is meant for it.
//
//   +----------------+---------+---------+-----------+----------+
//   | Sentinel(0x69) | Address | Command | Parameter | Checksum |
//   +----------------+---------+---------+-----------+----------+
//
// The sentinel is not part of the stored frame. It resets assembly
// wherever it appears, so the stream resynchronizes on its own after
// noise or a partially transmitted frame. The checksum is the modulo 256
// sum of the three fields before it. Nothing is ever sent back.
//
// Producer: bus master (L1)
// Consumer: actuator controller (L0)
