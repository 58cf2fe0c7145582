package websocket

// query parameters accepted on the upgrade request
type ConnectParams struct {
	// rooms to receive when the broker runs in room scope
	Rooms []string `form:"room"`
}
