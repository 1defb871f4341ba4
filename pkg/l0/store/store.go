// Package store keeps the device configuration in EEPROM.
//
//	+------+------------------+
//	| 0x00 | magic            |
//	| 0x01 | device identity  |
//	| 0x02 | initial duty     |
//	+------+------------------+
package store

import "github.com/robotalks/cymbal/pkg/l0/hal"

// EEPROM layout.
const (
	AddrMagic       byte = 0
	AddrDeviceID    byte = 1
	AddrInitialDuty byte = 2
)

// Magic marks the EEPROM as configured.
const Magic byte = 0x43

// Store reads and writes the persisted configuration.
type Store struct {
	mem     hal.EEPROM
	minDuty byte
	maxDuty byte
}

// New creates a Store. Initial duty outside [minDuty, maxDuty] reads as minDuty.
func New(mem hal.EEPROM, minDuty, maxDuty byte) *Store {
	return &Store{mem: mem, minDuty: minDuty, maxDuty: maxDuty}
}

// Read reads a byte once no write is in flight.
func (s *Store) Read(addr byte) byte {
	s.waitReady()
	return s.mem.ReadByte(addr)
}

// Write starts writing a byte once no write is in flight.
func (s *Store) Write(addr, value byte) {
	s.waitReady()
	s.mem.WriteByte(addr, value)
}

func (s *Store) waitReady() {
	for s.mem.Busy() {
	}
}

// Configured tells whether the magic marker is present.
func (s *Store) Configured() bool {
	return s.Read(AddrMagic) == Magic
}

// DeviceID returns the programmed identity, or 0 when unconfigured.
func (s *Store) DeviceID() byte {
	if s.Configured() {
		return s.Read(AddrDeviceID)
	}
	return 0
}

// SetDeviceID persists the identity and then the magic marker, so an
// interrupted update leaves the device unconfigured.
func (s *Store) SetDeviceID(id byte) {
	s.Write(AddrDeviceID, id)
	s.Write(AddrMagic, Magic)
}

// InitialDuty returns the persisted initial duty if in range, or the
// minimum duty.
func (s *Store) InitialDuty() byte {
	if duty := s.Read(AddrInitialDuty); duty >= s.minDuty && duty <= s.maxDuty {
		return duty
	}
	return s.minDuty
}

// SetInitialDuty persists the initial duty. It's not range checked here.
func (s *Store) SetInitialDuty(duty byte) {
	s.Write(AddrInitialDuty, duty)
}
