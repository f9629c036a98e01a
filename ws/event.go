// Package ws pushes registry changes to connected clients over WebSocket.
//
// Layout:
//   - Hub: tracks every connection and fans events out (observer pattern)
//   - Client: one WebSocket connection with its read and write pumps
//   - Event: the JSON frame exchanged with clients
//
// Flow of a change:
//  1. A user registers a donor: HTTP POST → service → DB insert
//  2. The service calls Hub.BroadcastToAll
//  3. The hub queues the frame on every client's send channel
//  4. Each client's WritePump writes it to its socket
package ws

// Event is a single frame.
//
// Seq increases by one per outbound broadcast so a client can spot a gap
// (seq 5 followed by seq 7 means 6 was lost).
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ─── Client → Server ───

const (
	OpHeartbeat = "heartbeat" // keeps the read deadline alive
)

// ─── Server → Client ───

const (
	OpReady              = "ready"
	OpHeartbeatAck       = "heartbeat_ack"
	OpDonorCreate        = "donor_create"
	OpDonorUpdate        = "donor_update"
	OpDonorDelete        = "donor_delete"
	OpBloodRequestCreate = "blood_request_create"
)

// ReadyData is sent once, right after the connection is registered.
type ReadyData struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// DeletedData identifies a removed record.
type DeletedData struct {
	ID string `json:"id"`
}
