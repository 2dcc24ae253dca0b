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
	"net/http"
	"net/url"
	"strings"

	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/server/httperr"
	"github.com/zintix-labs/vaultways/spec"
	"github.com/zintix-labs/vaultways/stats"
)

const (
	maxSimRounds    = 1_000_000
	maxSimWorkers   = 8
	maxPlayers      = 100_000
	maxPlayerRounds = 15_000
	playerWorkers   = 4
)

// SimHandler 模擬類 API，不經過機台池，每次請求建立獨立的 Simulator
type SimHandler struct {
	vw *vaultways.Vaultways
}

func NewSimHandler(vw *vaultways.Vaultways) (*SimHandler, error) {
	if vw == nil {
		return nil, errs.NewFatal("sim handler needs vaultways")
	}
	return &SimHandler{vw: vw}, nil
}

type simRequest struct {
	GID     spec.GID `json:"gid"`
	Mode    string   `json:"mode"`
	Round   int      `json:"round"`
	Workers int      `json:"workers,omitempty"`
	Seed    *int64   `json:"seed,omitempty"`
}

type simResponse struct {
	Seed     int64             `json:"seed"`
	Stats    *stats.StatReport `json:"stats"`
	UsedTime int64             `json:"used_ms"`
}

func (req *simRequest) fromQuery(q url.Values) error {
	req.Mode = q.Get("mode")
	for _, f := range []func() error{
		func() error { return gidParam(q, &req.GID) },
		func() error { return intParam(q, "round", &req.Round) },
		func() error { return intParam(q, "workers", &req.Workers) },
		func() error { return seedParam(q, &req.Seed) },
	} {
		if err := f(); err != nil {
			return err
		}
	}
	return nil
}

func (req *simRequest) valid() error {
	if req.Mode == "" {
		req.Mode = spec.BetModeNormal
	}
	req.Workers = max(1, req.Workers)
	if err := inRange("round", req.Round, 1, maxSimRounds); err != nil {
		return err
	}
	if err := inRange("workers", req.Workers, 1, maxSimWorkers); err != nil {
		return err
	}
	return resolveSeed(&req.Seed)
}

// Sim GET/POST /v1/sim：固定局數的 RTP 報表
func (h *SimHandler) Sim(w http.ResponseWriter, r *http.Request) {
	req := new(simRequest)
	if err := decode(r, req, req.fromQuery); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := req.valid(); err != nil {
		httperr.Errs(w, err)
		return
	}
	if _, ok := h.vw.EntryById(req.GID); !ok {
		httperr.Errs(w, errs.Warnf("gid %d not found", req.GID))
		return
	}
	sim, err := h.vw.NewSimulatorWithSeed(req.GID, *req.Seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator"))
		return
	}
	// 每個 worker 跑 round 局
	st, used, err := sim.SimMP(req.Mode, max(1, req.Round/req.Workers), req.Workers, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate"))
		return
	}
	httperr.WriteJSON(w, http.StatusOK, simResponse{Seed: *req.Seed, Stats: st, UsedTime: used.Milliseconds()})
}

type simPlayerRequest struct {
	GID    spec.GID `json:"gid"`
	Mode   string   `json:"mode"`
	Player int      `json:"player"`
	Bets   int      `json:"bets"`
	Round  int      `json:"round"`
	Seed   *int64   `json:"seed,omitempty"`
}

type simPlayerResponse struct {
	Seed      int64                   `json:"seed"`
	Stats     *stats.StatReport       `json:"stats"`
	Estimator *stats.EstimatorPlayers `json:"est"`
	UsedTime  int64                   `json:"used_ms"`
}

func (req *simPlayerRequest) fromQuery(q url.Values) error {
	req.Mode = q.Get("mode")
	if err := gidParam(q, &req.GID); err != nil {
		return err
	}
	for key, dst := range map[string]*int{"player": &req.Player, "bets": &req.Bets, "round": &req.Round} {
		if err := intParam(q, key, dst); err != nil {
			return err
		}
	}
	return seedParam(q, &req.Seed)
}

func (req *simPlayerRequest) valid() error {
	if req.Mode == "" {
		req.Mode = spec.BetModeNormal
	}
	if err := inRange("player", req.Player, 1, maxPlayers); err != nil {
		return err
	}
	if req.Bets < 1 {
		return errs.NewWarn("bets must be at least 1")
	}
	if err := inRange("round", req.Round, 1, maxPlayerRounds); err != nil {
		return err
	}
	return resolveSeed(&req.Seed)
}

// SimPlayers GET/POST /v1/simplayer：帶入初始資金的玩家體驗模擬
func (h *SimHandler) SimPlayers(w http.ResponseWriter, r *http.Request) {
	req := new(simPlayerRequest)
	if err := decode(r, req, req.fromQuery); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := req.valid(); err != nil {
		httperr.Errs(w, err)
		return
	}
	if _, ok := h.vw.EntryById(req.GID); !ok {
		httperr.Errs(w, errs.Warnf("gid %d not found", req.GID))
		return
	}
	sim, err := h.vw.NewSimulatorWithSeed(req.GID, *req.Seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "build simulator"))
		return
	}
	st, est, used, err := sim.SimPlayers(playerWorkers, req.Player, req.Bets, req.Mode, req.Round, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate players"))
		return
	}
	httperr.WriteJSON(w, http.StatusOK, simPlayerResponse{Seed: *req.Seed, Stats: st, Estimator: est, UsedTime: used.Milliseconds()})
}

type simByCfgRequest struct {
	Mode   string `json:"mode"`
	Round  int    `json:"round"`
	Format string `json:"format"` // yaml | json
	Cfg    string `json:"cfg"`
	Seed   *int64 `json:"seed,omitempty"`
}

// SimByCfg POST /v1/simbycfg：以外部帶入的設定檔試跑，不註冊進目錄
func (h *SimHandler) SimByCfg(w http.ResponseWriter, r *http.Request) {
	req := new(simByCfgRequest)
	if err := decode(r, req, func(url.Values) error { return errs.NewWarn("simbycfg accepts POST only") }); err != nil {
		httperr.Errs(w, err)
		return
	}
	if req.Mode == "" {
		req.Mode = spec.BetModeNormal
	}
	if err := inRange("round", req.Round, 1, maxSimRounds); err != nil {
		httperr.Errs(w, err)
		return
	}
	if err := resolveSeed(&req.Seed); err != nil {
		httperr.Errs(w, err)
		return
	}
	build := h.vw.NewSimulatorByYAML
	if strings.EqualFold(req.Format, "json") {
		build = h.vw.NewSimulatorByJSON
	}
	sim, err := build([]byte(req.Cfg), *req.Seed)
	if err != nil {
		// 呼叫端帶錯設定屬於請求錯誤
		if errs.KindOf(err) == errs.KindConfiguration {
			err = &errs.E{Message: "invalid cfg", Cause: err, ErrLv: errs.Warn, Kind: errs.KindConfiguration}
		}
		httperr.Errs(w, err)
		return
	}
	st, used, err := sim.Sim(req.Mode, req.Round, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, simResponse{Seed: *req.Seed, Stats: st, UsedTime: used.Milliseconds()})
}
