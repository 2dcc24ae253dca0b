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

package netsvr

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// ChiAdapter 以 chi 實作 NetSvr；handler 與 middleware 都是標準 net/http 形態。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
}

// NewChiServer 建立監聽 addr 的 ChiAdapter。writeTimeout 需涵蓋最久的模擬請求。
func NewChiServer(addr string, writeTimeout time.Duration) *ChiAdapter {
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func (c *ChiAdapter) Ready() bool {
	return c != nil && c.router != nil && c.server != nil && c.server.Addr != ""
}

func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Address() string {
	return c.server.Addr
}

// Handler 給 httptest 直接驅動路由
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Mount(path string, h http.Handler) {
	c.router.Mount(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&subRouter{r: r})
	})
}

type subRouter struct {
	r chi.Router
}

func (s *subRouter) Use(mw func(http.Handler) http.Handler) { s.r.Use(mw) }
func (s *subRouter) Get(path string, h http.HandlerFunc)    { s.r.Get(path, h) }
func (s *subRouter) Post(path string, h http.HandlerFunc)   { s.r.Post(path, h) }
func (s *subRouter) Mount(path string, h http.Handler)      { s.r.Mount(path, h) }

func (s *subRouter) Group(path string, fn func(NetRouter)) {
	s.r.Route(path, func(r chi.Router) { fn(&subRouter{r: r}) })
}
