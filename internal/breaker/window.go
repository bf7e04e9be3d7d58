// Package breaker 提供熔断器的滑动窗口统计实现。
package breaker

import "sync"

// Window 有界滑动窗口，记录最近 N 次调用结果，使用环形缓冲区实现
type Window struct {
	mu       sync.Mutex
	size     int
	buffer   []bool // true=成功，false=失败
	index    int    // 当前写入位置
	total    int    // 已记录的结果数（未满窗口时 < size）
	failures int    // 窗口内失败次数
}

// NewWindow 创建滑动窗口
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 100
	}
	return &Window{
		size:   size,
		buffer: make([]bool, size),
	}
}

// Record 记录一次调用结果
func (w *Window) Record(success bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 窗口已满时，先减去即将被覆盖的失败计数
	if w.total >= w.size && !w.buffer[w.index] {
		w.failures--
	}

	w.buffer[w.index] = success
	if !success {
		w.failures++
	}

	w.index = (w.index + 1) % w.size
	if w.total < w.size {
		w.total++
	}
}

// Total 窗口内已记录的结果数
func (w *Window) Total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// FailureRate 窗口内失败率，空窗口返回 0
func (w *Window) FailureRate() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.total == 0 {
		return 0
	}
	return float64(w.failures) / float64(w.total)
}

// Reset 清空窗口
func (w *Window) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.index = 0
	w.total = 0
	w.failures = 0
	for i := range w.buffer {
		w.buffer[i] = false
	}
}
