package sidechannel

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"

	"printcore/internal/log"
	"printcore/internal/snmpclient"
)

// Handler services one Frame per Dispatch call, per spec.md §4.4's request
// dispatch table.
type Handler struct {
	// Drain invokes the run loop's Drain variant; nil means no device fd is
	// open (drain-output replies NOT_IMPLEMENTED).
	Drain func() error
	// BidiInUse reports the current bidi flag for get-bidi.
	BidiInUse func() bool
	// DeviceConnected reports whether the device fd is open for
	// get-connected.
	DeviceConnected func() bool
	// SNMP is the proxy target for get-device-id and snmp-get/-get-next;
	// nil means SNMP is unavailable for this job.
	SNMP snmpclient.Client
	// LookupEnv defaults to os.LookupEnv; tests override it to exercise
	// the CUPS_SNMP_VALUE / 1284DEVICEID mocking paths without touching
	// the process environment.
	LookupEnv func(string) (string, bool)
	Logger    *log.Logger
}

func (h *Handler) lookupEnv(key string) (string, bool) {
	if h.LookupEnv != nil {
		return h.LookupEnv(key)
	}
	return os.LookupEnv(key)
}

// Dispatch services one request frame and returns exactly one response
// frame, per spec.md §4.4's response policy.
func (h *Handler) Dispatch(req Frame) Frame {
	switch req.Command {
	case CmdDrainOutput:
		return h.dispatchDrain(req)
	case CmdGetBidi:
		return h.dispatchGetBidi(req)
	case CmdGetConnected:
		return h.dispatchGetConnected(req)
	case CmdGetDeviceID:
		return h.dispatchGetDeviceID(req)
	case CmdSNMPGet:
		return h.dispatchSNMP(req, false)
	case CmdSNMPGetNext:
		return h.dispatchSNMP(req, true)
	case CmdSoftReset:
		return h.dispatchSoftReset(req)
	default:
		return Frame{Command: req.Command, Status: StatusBadMessage}
	}
}

func (h *Handler) dispatchDrain(req Frame) Frame {
	if h.Drain == nil {
		return Frame{Command: req.Command, Status: StatusNotImplemented}
	}
	if err := h.Drain(); err != nil {
		return Frame{Command: req.Command, Status: StatusIOError}
	}
	return Frame{Command: req.Command, Status: StatusOK}
}

func (h *Handler) dispatchGetBidi(req Frame) Frame {
	var payload byte
	if h.BidiInUse != nil && h.BidiInUse() {
		payload = 1
	}
	return Frame{Command: req.Command, Status: StatusOK, Payload: []byte{payload}}
}

func (h *Handler) dispatchGetConnected(req Frame) Frame {
	var payload byte
	if h.DeviceConnected != nil && h.DeviceConnected() {
		payload = 1
	}
	return Frame{Command: req.Command, Status: StatusOK, Payload: []byte{payload}}
}

func (h *Handler) dispatchGetDeviceID(req Frame) Frame {
	if h.SNMP != nil {
		pkt, err := h.SNMP.Get([]string{snmpclient.PpmPrinterIEEE1284DeviceID + ".1.1"})
		if err == nil && len(pkt.Variables) > 0 {
			return Frame{Command: req.Command, Status: StatusOK, Payload: []byte(snmpclient.FormatValue(pkt.Variables[0]))}
		}
	}
	if v, ok := h.lookupEnv("1284DEVICEID"); ok && v != "" {
		return Frame{Command: req.Command, Status: StatusOK, Payload: []byte(v)}
	}
	return Frame{Command: req.Command, Status: StatusNotImplemented}
}

// dispatchSNMP implements spec.md §4.4's snmp-get/snmp-get-next entry,
// including the CUPS_SNMP_VALUE/CUPS_SNMP_COUNT mocking override scenario
// S4 exercises.
func (h *Handler) dispatchSNMP(req Frame, next bool) Frame {
	nulIdx := bytes.IndexByte(req.Payload, 0)
	if len(req.Payload) < 2 || nulIdx < 0 {
		return Frame{Command: req.Command, Status: StatusBadMessage}
	}
	oid := string(req.Payload[:nulIdx])

	if mockValue, ok := h.lookupEnv("CUPS_SNMP_VALUE"); ok {
		count := 1
		if c, ok := h.lookupEnv("CUPS_SNMP_COUNT"); ok {
			if n, err := strconv.Atoi(c); err == nil && n > 0 {
				count = n
			}
		}
		parts := append([]string{oid}, repeat(mockValue, count)...)
		return Frame{Command: req.Command, Status: StatusOK, Payload: []byte(strings.Join(parts, "\x00"))}
	}

	if h.SNMP == nil {
		return Frame{Command: req.Command, Status: StatusNotImplemented}
	}

	var pkt *gosnmp.SnmpPacket
	var err error
	if next {
		pkt, err = h.SNMP.GetNext([]string{oid})
	} else {
		pkt, err = h.SNMP.Get([]string{oid})
	}
	if err != nil || len(pkt.Variables) == 0 {
		return Frame{Command: req.Command, Status: StatusIOError}
	}
	value := snmpclient.FormatValue(pkt.Variables[0])
	payload := oid + "\x00" + value
	return Frame{Command: req.Command, Status: StatusOK, Payload: []byte(payload)}
}

func (h *Handler) dispatchSoftReset(req Frame) Frame {
	if h.Drain != nil {
		_ = h.Drain()
	}
	return Frame{Command: req.Command, Status: StatusOK}
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}
