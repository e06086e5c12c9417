package storefront

import (
	"sync"
	"time"
)

const NotificationTTL = 3 * time.Second

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notification struct {
	Message string
	Level   Level
	At      time.Time
}

// Notifier affiche une seule notification à la fois, masquée automatiquement après ttl.
type Notifier struct {
	ttl     time.Duration
	display func(Notification)

	mu      sync.Mutex
	current *Notification
	gen     uint64
	timer   *time.Timer
}

// NewNotifier accepte un display nil; les notifications restent alors consultables via Current.
func NewNotifier(ttl time.Duration, display func(Notification)) *Notifier {
	if ttl <= 0 {
		ttl = NotificationTTL
	}
	return &Notifier{ttl: ttl, display: display}
}

func (n *Notifier) Success(msg string) { n.Show(LevelSuccess, msg) }
func (n *Notifier) Error(msg string)   { n.Show(LevelError, msg) }
func (n *Notifier) Info(msg string)    { n.Show(LevelInfo, msg) }

// Show remplace la notification courante et relance le délai de masquage.
func (n *Notifier) Show(level Level, msg string) {
	note := Notification{Message: msg, Level: level, At: time.Now()}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = &note
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(gen) })
	n.mu.Unlock()

	if n.display != nil {
		n.display(note)
	}
}

func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen == gen {
		n.current = nil
	}
}

// Current renvoie la notification visible, s'il y en a une.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.gen++
	n.current = nil
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
