package wizard

import "strings"

// ProtocolDraft is the free-text metadata describing the recommendation as a
// whole. Mutated freely during the detail step, read-only afterwards.
type ProtocolDraft struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d ProtocolDraft) IsValid() bool {
	return strings.TrimSpace(d.Name) != ""
}
