package domain

import "time"

// Room is a shared expense-splitting group: a fixed member list with an
// admin, the pairwise debt ledger, the current derived transfer list and
// the append-only event history. Users is ordered; the position of a user
// in it is that user's ledger index.
type Room struct {
	RoomID    string         `json:"roomId"`
	RoomName  string         `json:"roomName"`
	AdminID   string         `json:"adminId"`
	Users     []string       `json:"users"` // member UserIDs, ledger order
	Bill      Ledger         `json:"bill"`
	PayerList []Transfer     `json:"payerList"`
	History   []HistoryEntry `json:"history"`
	AuditFields

	// LastSettledAt is set when a settlement commits; it drives the
	// recent-settlement conflict window.
	LastSettledAt *time.Time `json:"lastSettledAt,omitempty"`
}

// MemberIndex returns the ledger index of userID, or -1 when the user is
// not a member.
func (r *Room) MemberIndex(userID string) int {
	for i, id := range r.Users {
		if id == userID {
			return i
		}
	}
	return -1
}

// IsMember reports whether userID belongs to the room.
func (r *Room) IsMember(userID string) bool {
	return r.MemberIndex(userID) >= 0
}
