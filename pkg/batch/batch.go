// Package batch provides a counting barrier with chainable sequential stages.
//
// A Batch is a stage in a chain. Push and Pop move the counter of the stage they
// are called on and of every stage after it, so a later stage can only reach zero
// once all earlier stages have. When a stage's counter drops to zero its callback
// runs exactly once.
//
//	b := batch.Start(func(b *batch.Batch) {
//		for _, step := range steps {
//			b.Go(step)
//		}
//	}).ContinueWith(func(*batch.Batch) {
//		fmt.Println("all steps done")
//	}).Start()
//
// Work that never pushes completes synchronously inside Start.
package batch

import "sync"

// Batch is a single stage of a barrier chain.
type Batch struct {
	mu    *sync.Mutex
	head  *Batch
	next  *Batch
	stack int
	cb    func(*Batch)
	done  bool
}

// Start creates the head stage of a new chain. The callback fires once the stage
// counter returns to zero after the chain is started with (*Batch).Start.
func Start(cb func(*Batch)) *Batch {
	b := &Batch{mu: &sync.Mutex{}, cb: cb}
	b.head = b
	return b
}

// Sequence builds a chain with one stage per function. The chain is not started.
// It returns the last stage; call Start on it to run the chain.
func Sequence(stages ...func(*Batch)) *Batch {
	if len(stages) == 0 {
		return Start(nil)
	}
	b := Start(stages[0])
	for _, s := range stages[1:] {
		b = b.ContinueWith(s)
	}
	return b
}

// Push increments the counter of this stage and of every following stage.
func (b *Batch) Push() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for cur := b; cur != nil; cur = cur.next {
		cur.stack++
	}
}

// Pop decrements the counter of this stage and of every following stage, invoking
// each stage callback whose counter reaches zero. Callbacks run outside the chain
// lock, in order, on the calling goroutine.
func (b *Batch) Pop() {
	cur := b
	for cur != nil {
		b.mu.Lock()
		cur.stack--
		if cur.stack < 0 {
			b.mu.Unlock()
			panic("batch: pop without matching push")
		}
		var cb func(*Batch)
		fire := cur.stack == 0 && !cur.done
		if fire {
			cb = cur.cb
			cur.cb = nil
			cur.done = true
		}
		b.mu.Unlock()

		if cb != nil {
			cb(cur)
		}

		b.mu.Lock()
		cur = cur.next
		b.mu.Unlock()
	}
}

// ContinueWith appends a stage after the last stage of the chain. The new stage
// inherits the running counter of its predecessor and fires after it.
func (b *Batch) ContinueWith(cb func(*Batch)) *Batch {
	b.mu.Lock()
	defer b.mu.Unlock()
	last := b
	for last.next != nil {
		last = last.next
	}
	nb := &Batch{mu: b.mu, head: b.head, stack: last.stack, cb: cb}
	last.next = nb
	return nb
}

// Start starts evaluation of the whole chain. It returns the receiver so it can
// end a construction expression.
func (b *Batch) Start() *Batch {
	b.head.Push()
	b.head.Pop()
	return b
}

// Go runs fn on a new goroutine as a branch of this stage.
func (b *Batch) Go(fn func()) {
	b.Push()
	go func() {
		defer b.Pop()
		fn()
	}()
}

// Done reports whether the stage callback has fired.
func (b *Batch) Done() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.done
}
