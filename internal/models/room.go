package models

import "time"

// Room represents a room row. The member list, debt ledger, transfer list
// and history are stored as JSONB documents and unmarshalled by the
// repository layer.
type Room struct {
	RoomID    string `db:"room_id"`
	RoomName  string `db:"room_name"`
	AdminID   string `db:"admin_id"`
	Users     []byte `db:"users"`
	Bill      []byte `db:"bill"`
	PayerList []byte `db:"payer_list"`
	History   []byte `db:"history"`
	AuditFields
	LastSettledAt *time.Time `db:"last_settled_at"`
}
