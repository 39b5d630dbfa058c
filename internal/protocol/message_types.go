package protocol

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeCreateRoom MessageType = "createRoom"
	MessageTypeJoinRoom   MessageType = "joinRoom"
	MessageTypeStartGame  MessageType = "startGame"
	MessageTypePlayCard   MessageType = "playCard"
	MessageTypeDrawCard   MessageType = "drawCard"
	MessageTypeEndTurn    MessageType = "endTurn"
	MessageTypeSetName    MessageType = "setName"

	// Server to client messages
	MessageTypeWelcome            MessageType = "welcome"
	MessageTypeNameSet            MessageType = "nameSet"
	MessageTypeRoomCreated        MessageType = "roomCreated"
	MessageTypeRoomJoined         MessageType = "roomJoined"
	MessageTypePlayerJoined       MessageType = "playerJoined"
	MessageTypeGameStarted        MessageType = "gameStarted"
	MessageTypeGameUpdate         MessageType = "gameUpdate"
	MessageTypeGameOver           MessageType = "gameOver"
	MessageTypePlayerDisconnected MessageType = "playerDisconnected"
	MessageTypeError              MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
