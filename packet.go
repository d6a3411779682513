package notifyfwd

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

// Packet types handled or emitted by the dispatcher.
const (
	PacketShow   = "notification-show"
	PacketClose  = "notification-close"
	PacketAction = "notification-action"

	// legacy names still sent by older peers
	packetShowLegacy  = "notify_show"
	packetCloseLegacy = "notify_close"
)

const (
	showMandatoryLen = 9  // type + 8 fields
	showIconLen      = 10 // icon at index 9
	showActionsLen   = 12 // actions and hints at 10 and 11
)

// Packet is a decoded wire packet: index 0 holds the packet type,
// the remaining positions hold its fields.
type Packet []any

// Type returns the packet type, or "" if the packet is empty or untyped.
func (p Packet) Type() string {
	if len(p) == 0 {
		return ""
	}
	s, _ := p[0].(string)
	return s
}

// ShowRequest is the content of one "notification-show" packet.
type ShowRequest struct {
	DBusID        string
	ID            uint32
	AppName       string
	ReplacesID    uint32
	AppIcon       any
	Summary       string
	Body          string
	ExpireTimeout int32 // milliseconds, <= 0 is left to the backend
	Icon          any
	Actions       []string
	Hints         map[string]any

	// TrailingField is set when the packet carried a single field after the
	// icon: actions and hints must come as a pair, so it was ignored.
	TrailingField bool
}

// DecodeShow decodes a "notification-show" packet.
//
// Positions 1 to 8 are mandatory. The icon is read when the packet has at
// least 10 elements, actions and hints when it has at least 12. Anything in
// between is treated as "icon present, actions and hints absent".
func DecodeShow(p Packet) (*ShowRequest, error) {
	if len(p) < showMandatoryLen {
		return nil, fmt.Errorf("%w: %s has %d fields, need %d", ErrShortPacket, p.Type(), len(p), showMandatoryLen)
	}
	r := &ShowRequest{
		AppIcon: p[5],
		Actions: []string{},
		Hints:   map[string]any{},
	}
	var err error
	if r.DBusID, err = toString(p, 1); err != nil {
		return nil, err
	}
	if r.ID, err = toUint32(p, 2); err != nil {
		return nil, err
	}
	if r.AppName, err = toString(p, 3); err != nil {
		return nil, err
	}
	if r.ReplacesID, err = toUint32(p, 4); err != nil {
		return nil, err
	}
	if r.Summary, err = toString(p, 6); err != nil {
		return nil, err
	}
	if r.Body, err = toString(p, 7); err != nil {
		return nil, err
	}
	timeout, err := toInt64(p, 8)
	if err != nil {
		return nil, err
	}
	r.ExpireTimeout = clampInt32(timeout)

	if len(p) >= showIconLen {
		r.Icon = p[9]
	}
	if len(p) >= showActionsLen {
		if p[10] != nil {
			if r.Actions, err = cast.ToStringSliceE(p[10]); err != nil {
				return nil, fieldErr(p, 10, err)
			}
		}
		if p[11] != nil {
			if r.Hints, err = cast.ToStringMapE(p[11]); err != nil {
				return nil, fieldErr(p, 11, err)
			}
		}
	} else if len(p) == showActionsLen-1 {
		r.TrailingField = true
	}
	return r, nil
}

// DecodeClose decodes a "notification-close" packet: [type, id, reason?, text?].
// A missing reason defaults to ReasonClosedByCall, a missing text to "".
func DecodeClose(p Packet) (id uint32, reason Reason, text string, err error) {
	if len(p) < 2 {
		return 0, 0, "", fmt.Errorf("%w: %s has %d fields, need 2", ErrShortPacket, p.Type(), len(p))
	}
	if id, err = toUint32(p, 1); err != nil {
		return 0, 0, "", err
	}
	reason = ReasonClosedByCall
	if len(p) > 2 {
		r, err := toUint32(p, 2)
		if err != nil {
			return 0, 0, "", err
		}
		reason = Reason(r)
	}
	if len(p) > 3 {
		if text, err = toString(p, 3); err != nil {
			return 0, 0, "", err
		}
	}
	return id, reason, text, nil
}

func fieldErr(p Packet, i int, err error) error {
	return fmt.Errorf("%w: %s field %d: %v", ErrMalformedPacket, p.Type(), i, err)
}

func toString(p Packet, i int) (string, error) {
	s, err := cast.ToStringE(p[i])
	if err != nil {
		return "", fieldErr(p, i, err)
	}
	return s, nil
}

func toInt64(p Packet, i int) (int64, error) {
	v, err := cast.ToInt64E(p[i])
	if err != nil {
		return 0, fieldErr(p, i, err)
	}
	return v, nil
}

func toUint32(p Packet, i int) (uint32, error) {
	v, err := toInt64(p, i)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxUint32 {
		return 0, fieldErr(p, i, fmt.Errorf("%d out of range", v))
	}
	return uint32(v), nil
}

func clampInt32(v int64) int32 {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}
