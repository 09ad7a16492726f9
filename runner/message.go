package runner

import "fmt"

type MessageType int

const (
	_ MessageType = iota
	MsgStarted
	MsgHalted
	MsgStopped
)

func (mt MessageType) String() string {
	switch mt {
	case MsgStarted:
		return "Started"
	case MsgHalted:
		return "Halted"
	case MsgStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Message is a lifecycle event sent from the execution goroutine to the host.
type Message struct {
	Type  MessageType
	Cycle uint64
	Err   error // Set for MsgHalted.
}

func NewMessage(mt MessageType, cycle uint64, err error) Message {
	return Message{
		Type:  mt,
		Cycle: cycle,
		Err:   err,
	}
}

func (m Message) String() string {
	if m.Err != nil {
		return fmt.Sprintf("%s at cycle %d: %s", m.Type, m.Cycle, m.Err)
	}
	return fmt.Sprintf("%s at cycle %d", m.Type, m.Cycle)
}
