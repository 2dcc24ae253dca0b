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

package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

// App 持有所有長駐元件，收到 SIGINT/SIGTERM 或任一元件結束時統一關閉。
type App struct {
	comps []Component
	hooks []func(context.Context) error
}

func New() *App { return &App{} }

func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// OnShutdown 元件關閉後依註冊的反序執行（先關 runtime，再關 log）
func (a *App) OnShutdown(fn func(context.Context) error) {
	a.hooks = append(a.hooks, fn)
}

// Run 阻塞到收到訊號或元件回報結束；回傳第一個元件錯誤與關閉錯誤
func (a *App) Run() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	return a.run(quit)
}

func (a *App) run(quit <-chan os.Signal) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) { errCh <- c.Run() }(c)
	}

	var runErr error
	select {
	case <-quit:
	case runErr = <-errCh:
	}
	return errors.Join(runErr, a.shutdown(shutdownTimeout))
}

func (a *App) shutdown(td time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	var all []error
	for _, c := range a.comps {
		all = append(all, c.Shutdown(ctx))
	}
	for i := len(a.hooks) - 1; i >= 0; i-- {
		all = append(all, a.hooks[i](ctx))
	}
	return errors.Join(all...)
}
