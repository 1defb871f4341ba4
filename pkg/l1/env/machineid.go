// Package env provides the host environment shared by cymbal binaries.
package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

const appID = "cymbal"

// MachineID retrieves the app specific ID identifying the machine.
func MachineID() (string, error) {
	return machineid.ProtectedID(appID)
}

// DefaultName derives a short device name from the machine ID. It falls
// back to the app name where no machine ID is available.
func DefaultName() string {
	id, err := MachineID()
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return appID
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return appID + "-" + id
}
