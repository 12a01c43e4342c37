package models

// ModerationEntry records a flagged item awaiting an admin decision.
// The log is append-only; approve/remove mutate the entry in place rather
// than appending a new record.
type ModerationEntry struct {
	Timestamp string   `json:"timestamp"`
	Action    string   `json:"action"`
	ItemType  ItemType `json:"itemType"`
	ItemID    int      `json:"itemId"`
	By        string   `json:"by"`
	Approved  *bool    `json:"approved,omitempty"`
	Removed   *bool    `json:"removed,omitempty"`
}

// Pending reports whether the entry still belongs in the moderation queue.
func (e ModerationEntry) Pending() bool {
	return (e.Approved == nil || !*e.Approved) && (e.Removed == nil || !*e.Removed)
}
