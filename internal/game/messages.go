package game

import "slices"

// HUDMessage is a text line for the pilot's HUD.
type HUDMessage struct {
	Text      string      `json:"text"`
	Duration  float64     `json:"duration,omitempty"` // seconds, 0 = display default
	Permanent bool        `json:"permanent,omitempty"`
	Urgent    bool        `json:"urgent,omitempty"`
	Color     *[4]float64 `json:"color,omitempty"`
}

// MessageQueue is the HUD collaborator scripted actions talk to.
type MessageQueue interface {
	QueueHUDMessage(msg HUDMessage)
	ClearHUDMessages()
	Simulate(dt float64)
}

type queuedMessage struct {
	HUDMessage
	left float64
	seq  uint64
}

// MessageLog is a bounded in-memory MessageQueue. Urgent messages jump the
// queue. Only the front message is on display and ages; a permanent one stays
// up until something else is waiting behind it. A full log drops its oldest
// entry.
type MessageLog struct {
	messages []queuedMessage
	limit    int
	seq      uint64
}

func NewMessageLog(limit int) *MessageLog {
	return &MessageLog{limit: limit}
}

func (l *MessageLog) QueueHUDMessage(msg HUDMessage) {
	q := queuedMessage{HUDMessage: msg, left: msg.Duration, seq: l.seq}
	l.seq++
	if q.left <= 0 {
		q.left = MessageDefaultDuration
	}
	if msg.Urgent {
		l.messages = slices.Insert(l.messages, 0, q)
	} else {
		l.messages = append(l.messages, q)
	}
	if l.limit > 0 && len(l.messages) > l.limit {
		oldest := 0
		for i, m := range l.messages {
			if m.seq < l.messages[oldest].seq {
				oldest = i
			}
		}
		l.messages = slices.Delete(l.messages, oldest, oldest+1)
	}
}

func (l *MessageLog) ClearHUDMessages() {
	l.messages = nil
}

// Simulate counts down the displayed message and moves on to the next one
// when it is done.
func (l *MessageLog) Simulate(dt float64) {
	if len(l.messages) == 0 {
		return
	}
	front := &l.messages[0]
	if front.Permanent {
		if len(l.messages) > 1 {
			l.messages = slices.Delete(l.messages, 0, 1)
		}
		return
	}
	front.left -= dt
	if front.left <= 0 {
		l.messages = slices.Delete(l.messages, 0, 1)
	}
}

// Messages returns a copy of the queued messages, front first.
func (l *MessageLog) Messages() []HUDMessage {
	out := make([]HUDMessage, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.HUDMessage
	}
	return out
}
