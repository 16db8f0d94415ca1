package eventlog

import (
	"sync"
	"time"
)

// DefaultCapacity емкость журнала по умолчанию
const DefaultCapacity = 100

// Entry запись журнала событий симулятора
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// Log кольцевой буфер фиксированной емкости: хранит последние N записей,
// самая старая вытесняется за O(1).
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	head    int // индекс самой старой записи
	size    int
}

// New создает новый журнал событий указанной емкости
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries: make([]Entry, capacity),
	}
}

// Append добавляет запись в журнал, вытесняя самую старую при переполнении
func (l *Log) Append(event string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos := (l.head + l.size) % len(l.entries)
	l.entries[pos] = Entry{
		Timestamp: time.Now(),
		Event:     event,
		Details:   details,
	}

	if l.size < len(l.entries) {
		l.size++
	} else {
		l.head = (l.head + 1) % len(l.entries)
	}
}

// Recent возвращает не более n последних записей, новые в начале
func (l *Log) Recent(n int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > l.size {
		n = l.size
	}

	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		pos := (l.head + l.size - 1 - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[pos])
	}

	return out
}

// Oldest возвращает самую старую сохраненную запись
func (l *Log) Oldest() (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.size == 0 {
		return Entry{}, false
	}
	return l.entries[l.head], true
}

// Len возвращает текущее число записей
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.size
}

// Capacity возвращает емкость журнала
func (l *Log) Capacity() int {
	return len(l.entries)
}
