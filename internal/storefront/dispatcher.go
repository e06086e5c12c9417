package storefront

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	DefaultQueueSize   = 64
	DefaultTaskTimeout = 15 * time.Second
)

type task struct {
	name string
	run  func(ctx context.Context) error
}

// Dispatcher exécute les tâches en arrière-plan, dans l'ordre d'arrivée, sur un seul worker.
// Les échecs sont journalisés et jamais renvoyés à l'appelant.
type Dispatcher struct {
	tasks   chan task
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}

	// pending compte les tâches soumises et pas encore terminées. Enqueue et
	// Wait peuvent être appelés en parallèle.
	countMu sync.Mutex
	idle    *sync.Cond
	pending int
}

func NewDispatcher(size int, timeout time.Duration) *Dispatcher {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	d := &Dispatcher{
		tasks:   make(chan task, size),
		timeout: timeout,
		done:    make(chan struct{}),
	}
	d.idle = sync.NewCond(&d.countMu)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for t := range d.tasks {
		d.execute(t)
	}
}

func (d *Dispatcher) execute(t task) {
	defer d.finish()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Tâche %s interrompue: %v", t.name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := t.run(ctx); err != nil {
		log.Printf("⚠️ Tâche %s échouée: %v", t.name, err)
	}
}

// Enqueue bloque si la file est pleine. Renvoie false après Close.
func (d *Dispatcher) Enqueue(name string, run func(ctx context.Context) error) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		log.Printf("⚠️ Tâche %s ignorée: file fermée", name)
		return false
	}
	d.countMu.Lock()
	d.pending++
	d.countMu.Unlock()
	d.tasks <- task{name: name, run: run}
	return true
}

func (d *Dispatcher) finish() {
	d.countMu.Lock()
	d.pending--
	if d.pending == 0 {
		d.idle.Broadcast()
	}
	d.countMu.Unlock()
}

// Wait attend que la file soit vide et le worker inactif.
func (d *Dispatcher) Wait() {
	d.countMu.Lock()
	for d.pending > 0 {
		d.idle.Wait()
	}
	d.countMu.Unlock()
}

// Close vide la file puis arrête le worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()
	<-d.done
}
