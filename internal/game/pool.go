package game

// Pool recycles simulation objects. Marking an index free is the only release
// discipline: the pool is only touched from the simulation goroutine.
type Pool[T any] struct {
	objects []*T
	locked  []bool
	count   int
	factory func() *T
}

func NewPool[T any](capacity int, factory func() *T) *Pool[T] {
	return &Pool[T]{
		objects: make([]*T, 0, capacity),
		locked:  make([]bool, 0, capacity),
		factory: factory,
	}
}

// Get returns a free object (allocating one if needed) and locks it.
func (p *Pool[T]) Get() *T {
	for i, used := range p.locked {
		if !used {
			p.locked[i] = true
			p.count++
			return p.objects[i]
		}
	}
	obj := p.factory()
	p.objects = append(p.objects, obj)
	p.locked = append(p.locked, true)
	p.count++
	return obj
}

func (p *Pool[T]) MarkAsFree(index int) {
	if index < 0 || index >= len(p.locked) || !p.locked[index] {
		return
	}
	p.locked[index] = false
	p.count--
}

func (p *Pool[T]) HasLockedObjects() bool { return p.count > 0 }

func (p *Pool[T]) LockedCount() int { return p.count }

// ExecuteForLockedObjects calls fn for every object in use, passing its index
// so the callback can release it.
func (p *Pool[T]) ExecuteForLockedObjects(fn func(obj *T, index int)) {
	for i := range p.objects {
		if p.locked[i] {
			fn(p.objects[i], i)
		}
	}
}

// Clear releases every object.
func (p *Pool[T]) Clear() {
	for i := range p.locked {
		p.locked[i] = false
	}
	p.count = 0
}
