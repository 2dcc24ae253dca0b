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

// Package metrics 以 Prometheus 輸出局數、派彩倍數、封頂、作廢與機台池狀態。
//
// 指標名規範：vaultways_<name>；局相關標籤為 profile、mode。
package metrics

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zintix-labs/vaultways"
	"github.com/zintix-labs/vaultways/dto"
)

const (
	labelProfile = "profile"
	labelMode    = "mode"
	labelOutcome = "outcome"
	labelKind    = "kind"
	labelGameID  = "game_id"
)

// 結果分類
const (
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeVoid = "void"
)

// Metrics 自帶 registry，方便同一進程內多個實例（測試）互不干擾
type Metrics struct {
	reg     *prometheus.Registry
	rounds  *prometheus.CounterVec
	capHits *prometheus.CounterVec
	voids   *prometheus.CounterVec
	mult    *prometheus.HistogramVec
	pools   *poolCollector
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	m := &Metrics{
		reg: reg,
		rounds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultways_rounds_total",
			Help: "已結算局數",
		}, []string{labelProfile, labelMode, labelOutcome}),
		capHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultways_wincap_hits_total",
			Help: "觸及封頂的局數",
		}, []string{labelProfile, labelMode}),
		voids: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vaultways_void_rounds_total",
			Help: "作廢局數（依錯誤類別）",
		}, []string{labelProfile, labelKind}),
		mult: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vaultways_payout_multiplier",
			Help:    "單局最終倍數（x bet）",
			Buckets: []float64{0, 0.5, 1, 2, 5, 10, 20, 50, 100, 500, 1000, 5000, 10000, 50000},
		}, []string{labelProfile, labelMode}),
		pools: &poolCollector{
			avail:    prometheus.NewDesc("vaultways_pool_available", "可借出機台數", []string{labelGameID}, nil),
			inflight: prometheus.NewDesc("vaultways_pool_inflight", "使用中機台數", []string{labelGameID}, nil),
			rebuild:  prometheus.NewDesc("vaultways_pool_rebuild_total", "補機次數", []string{labelGameID}, nil),
			panics:   prometheus.NewDesc("vaultways_pool_panics_total", "panic 次數", []string{labelGameID}, nil),
			fatals:   prometheus.NewDesc("vaultways_pool_fatals_total", "fatal 次數（含作廢局）", []string{labelGameID}, nil),
		},
	}
	reg.MustRegister(m.pools)
	return m
}

// ObserveRound 記錄一局結果；作廢局只進 rounds/voids
func (m *Metrics) ObserveRound(res dto.RoundResult) {
	if res.Void != nil {
		m.rounds.WithLabelValues(res.Profile, res.Mode, OutcomeVoid).Inc()
		m.voids.WithLabelValues(res.Profile, res.Void.Kind).Inc()
		return
	}
	outcome := OutcomeLoss
	if res.WinUnits > 0 {
		outcome = OutcomeWin
	}
	m.rounds.WithLabelValues(res.Profile, res.Mode, outcome).Inc()
	if res.Capped {
		m.capHits.WithLabelValues(res.Profile, res.Mode).Inc()
	}
	f, _ := res.FinalMultiplier.Float64()
	m.mult.WithLabelValues(res.Profile, res.Mode).Observe(f)
}

// WatchPools 於 scrape 時讀取機台池快照
func (m *Metrics) WatchPools(pools ...*vaultways.MachinePool) {
	m.pools.mu.Lock()
	m.pools.pools = append(m.pools.pools, pools...)
	m.pools.mu.Unlock()
}

// Registry 供測試或外部再註冊自訂 collector
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler 壓縮交給外層 middleware
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg, DisableCompression: true})
}

type poolCollector struct {
	mu    sync.Mutex
	pools []*vaultways.MachinePool

	avail, inflight, rebuild, panics, fatals *prometheus.Desc
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.avail
	ch <- c.inflight
	ch <- c.rebuild
	ch <- c.panics
	ch <- c.fatals
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.pools {
		s := p.Metrics()
		gid := strconv.FormatUint(uint64(s.GameID), 10)
		ch <- prometheus.MustNewConstMetric(c.avail, prometheus.GaugeValue, float64(s.Available), gid)
		ch <- prometheus.MustNewConstMetric(c.inflight, prometheus.GaugeValue, float64(s.Inflight), gid)
		ch <- prometheus.MustNewConstMetric(c.rebuild, prometheus.CounterValue, float64(s.Rebuild), gid)
		ch <- prometheus.MustNewConstMetric(c.panics, prometheus.CounterValue, float64(s.Panics), gid)
		ch <- prometheus.MustNewConstMetric(c.fatals, prometheus.CounterValue, float64(s.Fatals), gid)
	}
}
