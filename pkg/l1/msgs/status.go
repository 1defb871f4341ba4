package msgs

import (
	"errors"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/cymbal/pkg/l0/device"
	"github.com/robotalks/cymbal/pkg/l0/frame"
	"github.com/robotalks/cymbal/pkg/l0/hal"
)

// Status is the snapshot of a device.
type Status struct {
	Name            string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Address         uint32 `protobuf:"varint,2,opt,name=address,proto3" json:"address"`
	Inert           bool   `protobuf:"varint,3,opt,name=inert,proto3" json:"inert,omitempty"`
	Duty            uint32 `protobuf:"varint,4,opt,name=duty,proto3" json:"duty"`
	Output          bool   `protobuf:"varint,5,opt,name=output,proto3" json:"output,omitempty"`
	PulseWidthUs    uint32 `protobuf:"varint,6,opt,name=pulse_width_us,json=pulseWidthUs,proto3" json:"pulse_width_us,omitempty"`
	Frames          uint64 `protobuf:"varint,7,opt,name=frames,proto3" json:"frames,omitempty"`
	ChecksumErrors  uint64 `protobuf:"varint,8,opt,name=checksum_errors,json=checksumErrors,proto3" json:"checksum_errors,omitempty"`
	BusyBytes       uint64 `protobuf:"varint,9,opt,name=busy_bytes,json=busyBytes,proto3" json:"busy_bytes,omitempty"`
	Executed        uint64 `protobuf:"varint,10,opt,name=executed,proto3" json:"executed,omitempty"`
	NotAddressed    uint64 `protobuf:"varint,11,opt,name=not_addressed,json=notAddressed,proto3" json:"not_addressed,omitempty"`
	UnknownCommands uint64 `protobuf:"varint,12,opt,name=unknown_commands,json=unknownCommands,proto3" json:"unknown_commands,omitempty"`
	TimestampMs     int64  `protobuf:"varint,13,opt,name=timestamp_ms,json=timestampMs,proto3" json:"timestamp_ms,omitempty"`
}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*Status) ProtoMessage() {}

// ErrEmptyStatus indicates a cleared retained status, i.e. the device is gone.
var ErrEmptyStatus = errors.New("empty status")

// StatusFrom builds a Status from a device snapshot.
func StatusFrom(name string, state device.State, pulseWidth time.Duration, at time.Time) *Status {
	return &Status{
		Name:            name,
		Address:         uint32(state.ID),
		Inert:           state.Mode == device.ModeInert,
		Duty:            uint32(state.Duty),
		Output:          state.Output == hal.High,
		PulseWidthUs:    uint32(pulseWidth / time.Microsecond),
		Frames:          state.Stats.Events[frame.EventFrame],
		ChecksumErrors:  state.Stats.Events[frame.EventChecksum],
		BusyBytes:       state.Stats.Events[frame.EventBusy],
		Executed:        state.Stats.Outcomes[device.OutcomeExecuted],
		NotAddressed:    state.Stats.Outcomes[device.OutcomeNotAddressed],
		UnknownCommands: state.Stats.Outcomes[device.OutcomeUnknownCommand],
		TimestampMs:     at.UnixNano() / int64(time.Millisecond),
	}
}

// Encode encodes the Status to bytes.
func (m *Status) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeStatus decodes bytes into Status.
func DecodeStatus(data []byte) (*Status, error) {
	if len(data) == 0 {
		return nil, ErrEmptyStatus
	}
	var m Status
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
