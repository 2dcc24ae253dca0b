// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/vaultways/errs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogMode 決定輸出格式與等級
type LogMode uint8

const (
	ModeDev     LogMode = iota // text, debug, stderr
	ModeProd                   // json, info, stdout
	ModeSilence                // 全丟
)

// ParseMode 由旗標字串取得 LogMode
func ParseMode(s string) (LogMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent":
		return ModeSilence, nil
	default:
		return ModeDev, errs.Warnf("unknown log mode %q", s)
	}
}

// FileSink 輪替檔案輸出設定，Path 為空代表不寫檔
type FileSink struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

func (fs FileSink) writer() *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   fs.Path,
		MaxSize:    max(1, fs.MaxSizeMB),
		MaxBackups: fs.MaxBackups,
		MaxAge:     fs.MaxAgeDays,
		Compress:   fs.Compress,
	}
}

// NewDefaultLogger 同步 logger，直接輸出到 mode 對應的位置
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, nil))
}

// NewLogger 包裝呼叫端自組的 Handler
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev, nil)
	}
	return slog.New(h)
}

// NewAsync 以 mode 預設組裝，外包一層 AsyncHandler
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode, nil), buf)
	return slog.New(ah), ah
}

// NewAsyncWithFile 同 NewAsync，另外把紀錄寫入 lumberjack 輪替檔。
// 回傳的 AsyncHandler.Close 會一併關閉檔案。
func NewAsyncWithFile(buf int, mode LogMode, sink FileSink) (*slog.Logger, *AsyncHandler) {
	if sink.Path == "" || mode == ModeSilence {
		return NewAsync(buf, mode)
	}
	lj := sink.writer()
	ah := NewAsyncHandler(buildHandler(mode, lj), buf)
	ah.closer = lj
	return slog.New(ah), ah
}

// AsyncHandler 把任何 slog.Handler 變成非阻塞：Handle 只 enqueue，背景 worker 寫出。
// 佇列滿時直接丟棄並計數，不把延遲帶回請求路徑。
type AsyncHandler struct {
	next   slog.Handler
	d      *dispatcher
	closer io.Closer
}

type dispatcher struct {
	ch      chan item
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type item struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &dispatcher{
		ch:     make(chan item, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return &AsyncHandler{next: next, d: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.d != nil
}

// Dropped 因佇列滿或已關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.d.dropped.Load()
}

// Close 停止接收並把佇列寫完
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.d.once.Do(func() { close(h.d.closed) })
	h.d.wg.Wait()
	if h.closer != nil {
		_ = h.closer.Close()
	}
}

func (d *dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case it := <-d.ch:
			_ = it.h.Handle(it.ctx, it.rec)
		case <-d.closed:
			for {
				select {
				case it := <-d.ch:
					_ = it.h.Handle(it.ctx, it.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.d.closed:
		h.d.dropped.Add(1)
		return nil
	default:
	}
	// Record 跨 goroutine 前要 Clone
	select {
	case h.d.ch <- item{ctx: ctx, rec: r.Clone(), h: h.next}:
	default:
		h.d.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d, closer: h.closer}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d, closer: h.closer}
}

// buildHandler 依 mode 建立 handler；file 非 nil 時與主要輸出並寫
func buildHandler(mode LogMode, file io.Writer) slog.Handler {
	var (
		out  io.Writer = os.Stderr
		opts           = &slog.HandlerOptions{Level: slog.LevelDebug}
	)
	switch mode {
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil)
	case ModeProd:
		out = os.Stdout
		opts.Level = slog.LevelInfo
	}
	if file != nil {
		out = io.MultiWriter(out, file)
	}
	if mode == ModeProd {
		return slog.NewJSONHandler(out, opts)
	}
	return slog.NewTextHandler(out, opts)
}
