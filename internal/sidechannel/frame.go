// Package sidechannel implements the out-of-band request/response protocol
// of spec.md §4.4: a frame read/write codec plus a dispatch table servicing
// drain, bidi/connectivity queries, device-ID lookup, and an SNMP proxy.
package sidechannel

import (
	"encoding/binary"
	"io"
	"time"
)

// Command identifies the requested operation. Values are internal to this
// core; they need not match any external wire enumeration, only be
// consistent between the frame's writer and this package's dispatcher.
type Command byte

const (
	CmdSoftReset Command = iota
	CmdDrainOutput
	CmdGetBidi
	CmdGetConnected
	CmdGetDeviceID
	CmdSNMPGet
	CmdSNMPGetNext
)

// Status is the response status byte, per spec.md §4.4's response policy.
type Status byte

const (
	StatusOK Status = iota
	StatusIOError
	StatusBadMessage
	StatusNotImplemented
)

// Frame is one side-channel request or response, per spec.md §6's "(command
// byte, status byte, 4-byte big-endian length, payload)" layout.
type Frame struct {
	Command Command
	Status  Status
	Payload []byte
}

const headerSize = 1 + 1 + 4

// writeDeadliner is implemented by *os.File and net.Conn; WriteFrame uses
// it to honor the "1-second write timeout" spec.md §6 requires when the
// underlying writer supports deadlines.
type writeDeadliner interface {
	SetWriteDeadline(time.Time) error
}

// ReadFrame decodes one frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Frame{}, err
	}
	length := binary.BigEndian.Uint32(header[2:6])
	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Command: Command(header[0]), Status: Status(header[1]), Payload: payload}, nil
}

// WriteFrame encodes and writes one frame to w.
func WriteFrame(w io.Writer, f Frame) error {
	if dl, ok := w.(writeDeadliner); ok {
		_ = dl.SetWriteDeadline(time.Now().Add(time.Second))
	}
	header := make([]byte, headerSize, headerSize+len(f.Payload))
	header[0] = byte(f.Command)
	header[1] = byte(f.Status)
	binary.BigEndian.PutUint32(header[2:6], uint32(len(f.Payload)))
	header = append(header, f.Payload...)
	_, err := w.Write(header)
	return err
}
