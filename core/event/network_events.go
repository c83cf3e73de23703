package event

import "net/http"

// PeerMessage is published when a message arrives from a peer.
// Done must be called by the listener that completes the exchange.
type PeerMessage struct {
	baseEvent
	Payload   []byte
	Request   *http.Request
	Response  http.ResponseWriter
	MessageID string
	Done      ReplyFunc
}

func NewPeerMessage(payload []byte, req *http.Request, resp http.ResponseWriter, messageID string, done ReplyFunc) *PeerMessage {
	return &PeerMessage{
		Payload:   payload,
		Request:   req,
		Response:  resp,
		MessageID: messageID,
		Done:      done,
	}
}

func (e *PeerMessage) EventName() string { return "PeerMessage" }
func (e *PeerMessage) Channel() Channel  { return ChannelPeer }

// IoTEvent is published for messages coming from IoT devices.
type IoTEvent struct {
	baseEvent
	Payload any
	Reply   ReplyFunc
}

func NewIoTEvent(payload any, reply ReplyFunc) *IoTEvent {
	return &IoTEvent{Payload: payload, Reply: reply}
}

func (e *IoTEvent) EventName() string { return "IoTEvent" }
func (e *IoTEvent) Channel() Channel  { return ChannelIoT }

// BlockchainEvent is published for messages coming from the blockchain layer.
type BlockchainEvent struct {
	baseEvent
	Payload any
	Reply   ReplyFunc
}

func NewBlockchainEvent(payload any, reply ReplyFunc) *BlockchainEvent {
	return &BlockchainEvent{Payload: payload, Reply: reply}
}

func (e *BlockchainEvent) EventName() string { return "BlockchainEvent" }
func (e *BlockchainEvent) Channel() Channel  { return ChannelBlockchain }
