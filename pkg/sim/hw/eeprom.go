package hw

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robotalks/cymbal/pkg/l0/hal"
)

// EEPROM defaults.
const (
	DefaultEEPROMSize = 512
	DefaultWriteCycle = 3400 * time.Microsecond
	erased            = 0xff
)

// EEPROM simulates byte addressed EEPROM with a write cycle.
type EEPROM struct {
	WriteCycle time.Duration
	// OnWrite is called after each write is issued.
	OnWrite func(addr, value byte)

	clock     hal.Clock
	lock      sync.Mutex
	data      []byte
	busyUntil time.Duration
	writes    int
	overlaps  int
}

// NewEEPROM creates an erased EEPROM.
func NewEEPROM(clock hal.Clock, size int) *EEPROM {
	if size <= 0 {
		size = DefaultEEPROMSize
	}
	m := &EEPROM{WriteCycle: DefaultWriteCycle, clock: clock, data: make([]byte, size)}
	m.Erase()
	return m
}

// Busy implements hal.EEPROM.
func (m *EEPROM) Busy() bool {
	now := m.clock.Now()
	m.lock.Lock()
	defer m.lock.Unlock()
	return now < m.busyUntil
}

// ReadByte implements hal.EEPROM.
func (m *EEPROM) ReadByte(addr byte) byte {
	now := m.clock.Now()
	m.lock.Lock()
	defer m.lock.Unlock()
	if now < m.busyUntil {
		m.overlaps++
	}
	return m.data[int(addr)%len(m.data)]
}

// WriteByte implements hal.EEPROM.
func (m *EEPROM) WriteByte(addr, value byte) {
	now := m.clock.Now()
	m.lock.Lock()
	if now < m.busyUntil {
		m.overlaps++
	}
	m.data[int(addr)%len(m.data)] = value
	m.busyUntil = now + m.WriteCycle
	m.writes++
	fn := m.OnWrite
	m.lock.Unlock()
	if fn != nil {
		fn(addr, value)
	}
}

// Peek reads a byte ignoring the write cycle.
func (m *EEPROM) Peek(addr byte) byte {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.data[int(addr)%len(m.data)]
}

// Poke writes a byte instantly, like an external programmer.
func (m *EEPROM) Poke(addr, value byte) {
	m.lock.Lock()
	m.data[int(addr)%len(m.data)] = value
	m.lock.Unlock()
}

// Erase sets all bytes to 0xff.
func (m *EEPROM) Erase() {
	m.lock.Lock()
	for i := range m.data {
		m.data[i] = erased
	}
	m.lock.Unlock()
}

// Writes returns the number of issued writes.
func (m *EEPROM) Writes() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.writes
}

// Overlaps returns the number of operations issued during a write cycle.
func (m *EEPROM) Overlaps() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.overlaps
}

// Image returns a copy of the content.
func (m *EEPROM) Image() []byte {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]byte(nil), m.data...)
}

// Load replaces the content from an image file. A missing file leaves
// the EEPROM erased.
func (m *EEPROM) Load(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	if len(data) != len(m.data) {
		return fmt.Errorf("eeprom image %s: size %d, expect %d", path, len(data), len(m.data))
	}
	copy(m.data, data)
	return nil
}

// Save writes the content to an image file.
func (m *EEPROM) Save(path string) error {
	return os.WriteFile(path, m.Image(), 0644)
}
