package scheduler

import (
	"container/heap"
	"strings"
	"time"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/util"
)

type (
	task struct {
		fn    Func
		at    time.Time
		path  []string
		key   string
		index int
	}

	// dueQueue orders pending tasks by due time. Tasks scheduled under a
	// path are also indexed by key and by path tree, so they can be
	// replaced in place, cancelled individually, or pruned as a subtree.
	dueQueue struct {
		heap   taskOrder
		byKey  map[string]*task
		byPath *util.PathTree[*task]
	}

	taskOrder []*task
)

func newDueQueue() *dueQueue {
	return &dueQueue{
		byKey:  map[string]*task{},
		byPath: util.NewPathTree[*task](),
	}
}

// add enqueues a task. A task whose path is already pending is replaced
// in place, keeping at most one task per path.
func (q *dueQueue) add(t *task) {
	if t == nil || t.fn == nil || t.at.IsZero() {
		return
	}
	if len(t.path) > 0 {
		t.key = pathKey(t.path)
		if prev := q.byKey[t.key]; prev != nil {
			prev.fn = t.fn
			prev.at = t.at
			heap.Fix(&q.heap, prev.index)
			return
		}
		q.byKey[t.key] = t
		q.byPath.Insert(t.path, t)
	}
	heap.Push(&q.heap, t)
}

// head returns the earliest pending task without removing it
func (q *dueQueue) head() *task {
	if len(q.heap) == 0 {
		return nil
	}
	return q.heap[0]
}

// next removes and returns the earliest pending task
func (q *dueQueue) next() *task {
	if len(q.heap) == 0 {
		return nil
	}
	t := heap.Pop(&q.heap).(*task)
	q.deindex(t)
	return t
}

// cancel drops the keyed task pending for the exact path
func (q *dueQueue) cancel(path []string) {
	t := q.byKey[pathKey(path)]
	if t == nil {
		return
	}
	heap.Remove(&q.heap, t.index)
	q.deindex(t)
}

// prune drops every keyed task under the path prefix
func (q *dueQueue) prune(prefix []string) {
	if len(prefix) == 0 {
		return
	}
	for _, t := range q.byPath.Detach(prefix) {
		delete(q.byKey, t.key)
		heap.Remove(&q.heap, t.index)
	}
}

func (q *dueQueue) deindex(t *task) {
	if t.key == "" {
		return
	}
	delete(q.byKey, t.key)
	q.byPath.Remove(t.path)
}

// pathKey flattens a path into a map key. Segments never contain the
// separator, so distinct paths never collide.
func pathKey(path []string) string {
	if len(path) == 0 {
		return ""
	}
	return strings.Join(path, "\x1f")
}

func (o taskOrder) Len() int {
	return len(o)
}

func (o taskOrder) Less(i, j int) bool {
	return o[i].at.Before(o[j].at)
}

func (o taskOrder) Swap(i, j int) {
	o[i], o[j] = o[j], o[i]
	o[i].index = i
	o[j].index = j
}

func (o *taskOrder) Push(x any) {
	t := x.(*task)
	t.index = len(*o)
	*o = append(*o, t)
}

func (o *taskOrder) Pop() any {
	old := *o
	n := len(old) - 1
	t := old[n]
	old[n] = nil
	t.index = -1
	*o = old[:n]
	return t
}
