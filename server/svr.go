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

// Package server 組裝 HTTP 服務：runtime、稽核儲存、metrics、路由與生命週期。
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/server/api"
	"github.com/zintix-labs/vaultways/server/app"
	"github.com/zintix-labs/vaultways/server/logger"
	"github.com/zintix-labs/vaultways/server/metrics"
	"github.com/zintix-labs/vaultways/server/netsvr"
	"github.com/zintix-labs/vaultways/server/svrcfg"
)

// Run 以預設的 chi server 啟動，阻塞到收到終止訊號。
// 設定或依賴錯誤同時寫到 stderr，避免 logger 尚未可用時無處可看。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, netsvr.NewChiServer(sCfg.Addr, sCfg.WriteTimeout))
}

// RunWithSvr 同 Run，但由呼叫端注入 NetSvr（自訂 listener、TLS 或既有框架）。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("chi server is not ready")
	}

	a, err := Assemble(sCfg, svr)
	if err != nil {
		sCfg.Log.Error("assemble failed", slog.Any("err", err))
		return err
	}
	sCfg.Log.Info("[vaultways] listening", slog.String("addr", svr.Address()), slog.String("audit", sCfg.Audit))
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}

// Assemble 建立 runtime 與稽核儲存並掛上路由，回傳尚未啟動的 App。
// 關閉順序：HTTP server → runtime → 稽核儲存 → logger。
func Assemble(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) (*app.App, error) {
	store, err := sCfg.BuildAudit()
	if err != nil {
		return nil, err
	}
	if p, ok := store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(context.Background()); err != nil {
			return nil, errs.Wrap(err, "audit store unreachable")
		}
	}
	rt, err := sCfg.Vaultways.BuildRuntime(sCfg.PoolSize)
	if err != nil {
		return nil, errs.Wrap(err, "build runtime")
	}
	deps := api.Deps{Runtime: rt, Store: store, Metrics: metrics.New()}
	if err := api.RegisterRoutes(svr, sCfg, deps); err != nil {
		rt.Close()
		return nil, err
	}

	a := app.NewWith(svr)
	if ah, ok := sCfg.Log.Handler().(*logger.AsyncHandler); ok {
		a.OnShutdown(func(context.Context) error { ah.Close(); return nil })
	}
	if c, ok := store.(io.Closer); ok {
		a.OnShutdown(func(context.Context) error { return c.Close() })
	}
	a.OnShutdown(func(context.Context) error { rt.Close(); return nil })
	return a, nil
}
