package event

// UpdateFrame is posted once per frame with the seconds elapsed since the previous frame.
type UpdateFrame struct {
	DeltaTime float64 `json:"delta_time"`
}

type KeyAction string

const (
	KeyPressed  KeyAction = "pressed"
	KeyReleased KeyAction = "released"
)

// Keyboard is posted when a key is pressed or released. Held keys repeat as Pressed.
type Keyboard struct {
	Key    string    `json:"key"`
	Action KeyAction `json:"action"`
}

// KeyEscape is the key name the console treats as a quit request.
const KeyEscape = "Escape"

type MouseMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ButtonAction string

const (
	ButtonPressed  ButtonAction = "pressed"
	ButtonReleased ButtonAction = "released"
)

type MouseButton struct {
	Button string       `json:"button"`
	Action ButtonAction `json:"action"`
}

// LoadGame is posted exactly once, before the first frame.
type LoadGame struct{}

type ResizeWindow struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
