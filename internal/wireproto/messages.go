package wireproto

// Message type/command constants, named per spec.md §6's wire tables.
const (
	TypeOpen   = "open"
	TypeStdin  = "stdin"
	TypeResize = "resize"
	TypePing   = "ping"
	TypeClose  = "close"

	TypeReady = "ready"
	TypeData  = "data"
	TypeExit  = "exit"
	TypePong  = "pong"
	TypeInfo  = "info"
	TypeError = "error"

	CmdStdin  = "stdin"
	CmdResize = "resize"
	CmdPing   = "ping"
	CmdInfo   = "info"
	CmdClose  = "close"
)

// ExtMessage is a message sent by the extension to the bridge over its
// length-prefixed stdio transport.
type ExtMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Shell   string `json:"shell,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Rows    int    `json:"rows,omitempty"`
	DataB64 string `json:"data_b64,omitempty"`
}

// BridgeMessage is a message sent by the bridge back to the extension.
type BridgeMessage struct {
	Type     string `json:"type"`
	Session  string `json:"session,omitempty"`
	Platform string `json:"platform,omitempty"`
	Shell    string `json:"shell,omitempty"`
	DataB64  string `json:"data_b64,omitempty"`
	Code     *int   `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Command is a record the bridge sends to the session daemon over the
// authenticated loopback channel.
type Command struct {
	Cmd     string `json:"cmd"`
	DataB64 string `json:"data_b64,omitempty"`
	Cols    int    `json:"cols,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

// Event is a record the session daemon sends back to a connected bridge.
type Event struct {
	Type     string `json:"type"`
	Session  string `json:"session,omitempty"`
	Platform string `json:"platform,omitempty"`
	Shell    string `json:"shell,omitempty"`
	DataB64  string `json:"data_b64,omitempty"`
	Code     *int   `json:"code,omitempty"`
}

// IntPtr is a small helper for populating Event.Code / BridgeMessage.Code,
// which are pointers so that an exit code of 0 still serializes.
func IntPtr(n int) *int {
	return &n
}
