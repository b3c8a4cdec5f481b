// Package notify shows short-lived user notifications, the terminal
// counterpart of toast messages.
package notify

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Level int

const (
	Success Level = iota
	Failure
)

func (l Level) String() string {
	if l == Success {
		return "ok"
	}
	return "error"
}

type Notification struct {
	ID      ulid.ULID
	Level   Level
	Message string
	At      time.Time
}

const DefaultKeep = 20

// Notifier writes one line per notification and remembers the most recent
// ones. It is safe for concurrent use.
type Notifier struct {
	mu      sync.Mutex
	out     io.Writer
	now     func() time.Time
	entropy io.Reader
	keep    int
	recent  []Notification
}

func New(out io.Writer, keep int) *Notifier {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Notifier{
		out:     out,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
		keep:    keep,
	}
}

func (n *Notifier) Success(msg string) Notification {
	return n.notify(Success, msg)
}

func (n *Notifier) Error(msg string) Notification {
	return n.notify(Failure, msg)
}

func (n *Notifier) notify(level Level, msg string) Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	at := n.now()
	note := Notification{
		ID:      ulid.MustNew(ulid.Timestamp(at), n.entropy),
		Level:   level,
		Message: msg,
		At:      at,
	}
	n.recent = append(n.recent, note)
	if len(n.recent) > n.keep {
		n.recent = n.recent[len(n.recent)-n.keep:]
	}
	if n.out != nil {
		fmt.Fprintf(n.out, "[%s] %s\n", level, msg)
	}
	return note
}

// Recent returns the remembered notifications, oldest first.
func (n *Notifier) Recent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.recent...)
}
