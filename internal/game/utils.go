// internal/game/utils.go
package game

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MarshalEvent encodes ev as a flat JSON object with its wire name in "type",
// e.g. {"type":"bidRejected","message":"..."}.
func MarshalEvent(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", ev.Type(), err)
	}
	typ, err := json.Marshal(ev.Type())
	if err != nil {
		return nil, fmt.Errorf("marshal event type: %w", err)
	}

	out := make([]byte, 0, len(body)+len(typ)+10)
	out = append(out, `{"type":`...)
	out = append(out, typ...)
	if len(body) > 2 { // body is "{...}"
		out = append(out, ',')
		out = append(out, body[1:]...)
	} else {
		out = append(out, '}')
	}
	return out, nil
}

// ConvertEventToBytes marshals an Event into JSON bytes.
// Logs a warning and returns a generic error event on marshalling failure.
func ConvertEventToBytes(logger logrus.FieldLogger, ev Event) []byte {
	data, err := MarshalEvent(ev)
	if err != nil {
		logger.Warnf("failed to marshal event: %v", err)
		return []byte(`{"type":"error","message":"internal error"}`)
	}
	return data
}
