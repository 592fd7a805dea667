package notifier

// Broadcaster pushes a payload to every connected observer.
// [DIP] The overlay service depends on this abstraction, not on the websocket hub.
type Broadcaster interface {
	Broadcast(payload any)
}
