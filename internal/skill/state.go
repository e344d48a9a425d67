package skill

import (
	"bytes"
	"encoding/json"
)

// Continuation payloads carried between turns, tagged by the handler
// that reads them. The platform round-trips the blob verbatim, so a
// payload is validated on every read and never trusted blindly.

// worktimeState accumulates the log-worktime flow.
type worktimeState struct {
	Minutes     int    `json:"minutes,omitempty"`
	TaskID      string `json:"taskId,omitempty"`
	WorkTypeID  string `json:"workTypeId,omitempty"`
	Description string `json:"description,omitempty"`
}

// pageState drives the "далее" pagination over a prepared line list.
type pageState struct {
	Remaining []string `json:"remaining"`
	PageSize  int      `json:"pageSize"`
	Source    string   `json:"source"`
}

// decodeState strictly unmarshals a carried payload. Unknown fields
// fail the decode: a blob shaped for another handler (stale or
// tampered) must not be reinterpreted.
func decodeState(raw json.RawMessage, out any) bool {
	if len(raw) == 0 {
		return false
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	return decoder.Decode(out) == nil
}
