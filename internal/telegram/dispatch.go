package telegram

import (
	"sync"

	"github.com/ideamans/go-sheettable/dialogue"
)

// dispatcher runs one worker per user. Messages of a user are handled in
// arrival order; a slow user does not hold up the others.
type dispatcher struct {
	handle func(dialogue.Message)

	mu     sync.Mutex
	queues map[int64][]dialogue.Message // present while a worker runs
	wg     sync.WaitGroup
}

func newDispatcher(handle func(dialogue.Message)) *dispatcher {
	return &dispatcher{handle: handle, queues: make(map[int64][]dialogue.Message)}
}

// userKey matches the key the dialogue machine keeps sessions under.
func userKey(msg dialogue.Message) int64 {
	if msg.UserID != 0 {
		return msg.UserID
	}
	return msg.ChatID
}

func (d *dispatcher) dispatch(msg dialogue.Message) {
	key := userKey(msg)

	d.mu.Lock()
	queue, running := d.queues[key]
	d.queues[key] = append(queue, msg)
	d.mu.Unlock()

	if !running {
		d.wg.Add(1)
		go d.work(key)
	}
}

func (d *dispatcher) work(key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.queues[key]
		if len(queue) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		msg := queue[0]
		d.queues[key] = queue[1:]
		d.mu.Unlock()

		d.handle(msg)
	}
}

// wait blocks until every queued message has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
