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

package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/audit"
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/server/httperr"
	"github.com/zintix-labs/vaultways/server/metrics"
	"github.com/zintix-labs/vaultways/server/netsvr/middleware"
)

// SpinHandler 真錢路徑：spin、回放與稽核查詢
type SpinHandler struct {
	rt      *vaultways.SlotRuntime
	store   audit.Store // nil 代表不稽核
	mx      *metrics.Metrics
	log     *slog.Logger
	timeout time.Duration

	devStart bool // 開發用：允許呼叫端指定起始 RNG 狀態
}

func NewSpinHandler(rt *vaultways.SlotRuntime, store audit.Store, mx *metrics.Metrics, log *slog.Logger, timeout time.Duration, devStart bool) (*SpinHandler, error) {
	if rt == nil || mx == nil || log == nil {
		return nil, errs.NewFatal("spin handler needs runtime, metrics and logger")
	}
	mx.WatchPools(rt.Pools()...)
	if devStart {
		log.Warn("spin accepts caller supplied start_state, never enable on a real-money server")
	}
	return &SpinHandler{rt: rt, store: store, mx: mx, log: log, timeout: timeout, devStart: devStart}, nil
}

// Spin GET/POST /v1/spin
//
// 作廢局一樣回 200，body 帶 void 與零派彩；呼叫端依 void 欄位退款。
// RNG 狀態屬於這一局，呼叫端不得指定；重現一局請走 /v1/replay。
func (h *SpinHandler) Spin(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeSpinRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.StartState.HasPayload() && !h.devStart {
		httperr.Errs(w, errs.NewWarn("start_state is not accepted on /v1/spin, use /v1/replay"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	res, draws, err := h.rt.Spin(ctx, req)
	if err != nil && !errs.IsVoid(err) {
		httperr.Log(h.log, "spin failed", err)
		httperr.Errs(w, err)
		return
	}
	h.mx.ObserveRound(res)
	if err != nil {
		h.log.Error("round void",
			slog.String("req_id", middleware.GetReqID(r)),
			slog.String("round_id", res.RoundID),
			slog.String("kind", errs.KindOf(err).String()),
			slog.Any("err", err))
	}
	h.keep(ctx, res, draws)
	httperr.WriteJSON(w, http.StatusOK, res)
}

// keep 稽核寫入失敗只記錄，不影響本局回應
func (h *SpinHandler) keep(ctx context.Context, res dto.RoundResult, draws []uint64) {
	if h.store == nil || res.RoundID == "" {
		return
	}
	if err := h.store.Put(ctx, audit.NewRecord(res, draws)); err != nil {
		h.log.Error("audit put failed", slog.String("round_id", res.RoundID), slog.Any("err", err))
	}
}

// Replay POST /v1/replay：以抽樣紀錄重跑一局
func (h *SpinHandler) Replay(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeReplayRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	res, err := h.rt.Replay(req)
	if err != nil && !errs.IsVoid(err) {
		httperr.Errs(w, err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, res)
}

// Round GET /v1/round/{id}：取回稽核紀錄（含抽樣）
func (h *SpinHandler) Round(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		httperr.Errs(w, errs.NewWarn("audit store disabled"))
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		httperr.Errs(w, errs.NewWarn("round id is required"))
		return
	}
	rec, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			httperr.WriteJSON(w, http.StatusNotFound, httperr.Body{Error: err.Error()})
			return
		}
		httperr.Log(h.log, "audit get failed", err)
		httperr.Errs(w, err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, rec)
}
