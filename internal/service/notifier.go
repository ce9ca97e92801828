package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Notifier 同步进度推送通道
// 事件有序；Error 与 Close 为终止事件，只有第一个生效
type Notifier interface {
	Log(msg string)
	JSON(v any)
	Error(err error)
	Close()
}

// Progress 进度事件
type Progress struct {
	Title    string `json:"title"`
	Progress string `json:"progress"`
}

// NewProgress 计算两位小数的百分比
func NewProgress(processed, total int) Progress {
	pct := 0.0
	if total > 0 {
		pct = float64(processed) / float64(total) * 100
	}
	return Progress{Title: "Updating Inventory", Progress: fmt.Sprintf("%.2f", pct)}
}

// ==================== Stream Notifier ====================

// EventKind 事件类型
type EventKind string

const (
	EventLog   EventKind = "log"
	EventJSON  EventKind = "json"
	EventError EventKind = "error"
	EventClose EventKind = "close"
)

// Event 推送给订阅方的事件，Data 为最终发送的文本
type Event struct {
	Kind EventKind
	Data string
}

// Terminal 是否为终止事件
func (e Event) Terminal() bool {
	return e.Kind == EventError || e.Kind == EventClose
}

// StreamNotifier 把事件写入 channel，由 HTTP 层转发给客户端
// 订阅方断开 (ctx 结束) 后停止发送，但同步流程继续执行
type StreamNotifier struct {
	ctx    context.Context
	events chan Event

	mu       sync.Mutex
	done     bool
	detached bool
}

// NewStreamNotifier 创建推送通道，ctx 表示订阅方的生命周期
func NewStreamNotifier(ctx context.Context, buffer int) *StreamNotifier {
	return &StreamNotifier{
		ctx:    ctx,
		events: make(chan Event, buffer),
	}
}

// Events 事件流，终止事件之后关闭
func (n *StreamNotifier) Events() <-chan Event {
	return n.events
}

// Detached 订阅方是否已经断开
func (n *StreamNotifier) Detached() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.detached
}

func (n *StreamNotifier) Log(msg string) {
	n.send(Event{Kind: EventLog, Data: msg}, false)
}

func (n *StreamNotifier) JSON(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		n.send(Event{Kind: EventLog, Data: fmt.Sprintf("%v", v)}, false)
		return
	}
	n.send(Event{Kind: EventJSON, Data: string(raw)}, false)
}

func (n *StreamNotifier) Error(err error) {
	n.send(Event{Kind: EventError, Data: err.Error()}, true)
}

func (n *StreamNotifier) Close() {
	n.send(Event{Kind: EventClose}, true)
}

func (n *StreamNotifier) send(evt Event, terminal bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.done {
		return
	}
	if !n.detached {
		select {
		case n.events <- evt:
		case <-n.ctx.Done():
			n.detached = true
		}
	}
	if terminal {
		n.done = true
		close(n.events)
	}
}

// ==================== Log Notifier ====================

// LogNotifier 无订阅方时 (定时任务) 把事件写入日志
type LogNotifier struct {
	logger *zap.Logger

	mu   sync.Mutex
	done bool
	err  error
}

// NewLogNotifier 创建日志通道
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Log(msg string) {
	if n.finished() {
		return
	}
	n.logger.Info(msg)
}

func (n *LogNotifier) JSON(v any) {
	if n.finished() {
		return
	}
	if p, ok := v.(Progress); ok {
		n.logger.Debug(p.Title, zap.String("progress", p.Progress))
		return
	}
	n.logger.Debug("progress", zap.Any("payload", v))
}

func (n *LogNotifier) Error(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.done {
		return
	}
	n.done = true
	n.err = err
	n.logger.Error("inventory update failed", zap.Error(err))
}

func (n *LogNotifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.done = true
}

// Err 终止时的错误 (正常结束为 nil)
func (n *LogNotifier) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}

func (n *LogNotifier) finished() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.done
}
