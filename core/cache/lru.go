package cache

import (
	"container/list"
	"sync"
)

type LRUOpts struct {
	Size int // default 128
}

type entry[T any] struct {
	key string
	val T
}

type LRU[T any] struct {
	mu    sync.Mutex
	size  int
	ll    *list.List
	items map[string]*list.Element
}

func NewLRU[T any](opts LRUOpts) *LRU[T] {
	if opts.Size <= 0 {
		opts.Size = 128
	}
	return &LRU[T]{
		size:  opts.Size,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

func (l *LRU[T]) Get(key string) (out T, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ele, ok := l.items[key]
	if !ok {
		return out, false
	}
	l.ll.MoveToFront(ele)
	return ele.Value.(*entry[T]).val, true
}

func (l *LRU[T]) Put(key string, val T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ele, ok := l.items[key]; ok {
		l.ll.MoveToFront(ele)
		ele.Value.(*entry[T]).val = val
		return
	}

	l.items[key] = l.ll.PushFront(&entry[T]{key: key, val: val})
	if l.ll.Len() > l.size {
		last := l.ll.Back()
		l.ll.Remove(last)
		delete(l.items, last.Value.(*entry[T]).key)
	}
}

func (l *LRU[T]) Delete(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ele, ok := l.items[key]; ok {
		l.ll.Remove(ele)
		delete(l.items, key)
	}
}

func (l *LRU[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ll.Len()
}

var _ Cache[any] = (*LRU[any])(nil)
