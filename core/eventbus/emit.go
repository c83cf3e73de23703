package eventbus

import (
	"net/http"

	"streembit-go/core/event"
)

// AppInit announces that the application has started.
func (b *Bus) AppInit() bool {
	return b.Publish(event.NewAppInit())
}

// AppEvent publishes a named application event.
func (b *Bus) AppEvent(name string, payload any) bool {
	return b.Publish(event.NewAppEvent(name, payload))
}

// AppLog publishes a log line for whoever bridges app-log to a logger.
func (b *Bus) AppLog(level, message string) bool {
	return b.Publish(event.NewAppLog(level, message))
}

// TaskInit asks the task subsystem to start a task.
func (b *Bus) TaskInit(task string, payload any) bool {
	return b.Publish(event.NewTaskInit(task, payload))
}

// IoTEvent publishes a message from an IoT device.
func (b *Bus) IoTEvent(payload any, reply event.ReplyFunc) bool {
	return b.Publish(event.NewIoTEvent(payload, reply))
}

// PeerMessage publishes a message received from a peer.
func (b *Bus) PeerMessage(payload []byte, req *http.Request, resp http.ResponseWriter, messageID string, done event.ReplyFunc) bool {
	return b.Publish(event.NewPeerMessage(payload, req, resp, messageID, done))
}

// BlockchainEvent publishes a message from the blockchain layer.
func (b *Bus) BlockchainEvent(payload any, reply event.ReplyFunc) bool {
	return b.Publish(event.NewBlockchainEvent(payload, reply))
}

// ErrorEvent publishes an error for interested subsystems.
func (b *Bus) ErrorEvent(err error, payload any) bool {
	return b.Publish(event.NewErrorEvent(err, payload))
}
