package internal

import "fmt"

// RoomStatus is the game loop state of a room. The numeric values are part
// of the client protocol (sent in the ready snapshot).
type RoomStatus int

const (
	StatusPlaying RoomStatus = iota
	StatusLoading
	StatusEnding
	StatusStarting
)

func (s RoomStatus) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusLoading:
		return "loading"
	case StatusEnding:
		return "ending"
	case StatusStarting:
		return "starting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// RoomInfo is the lightweight overview of one room.
type RoomInfo struct {
	Name       string `json:"room"`
	TotalUsers int    `json:"users"`
}
