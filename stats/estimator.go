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

package stats

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// 信賴水準固定 95%
const confidence = 0.95

var (
	expQuantiles  = []float64{0.10, 1.0 / 3.0, 2.0 / 3.0, 0.90}
	rtpThresholds = []float64{0.30, 0.50, 0.70, 1.00}
)

// EstimatorPlayers 多玩家模擬的體驗評估：RTP 分布、事件次數、離場結局
type EstimatorPlayers struct {
	RtpStat     RtpStat
	EventStat   EventStat
	SessionStat SessionStat
}

// RtpStat 玩家 RTP 的分布
type RtpStat struct {
	Median    PointStat
	Quantiles []QuantileStat  // 最差 10%、33% ... 的玩家各自的 RTP
	Below     []ThresholdStat // RTP 不超過門檻的玩家比例
}

type QuantileStat struct {
	Q float64
	PointStat
}

type ThresholdStat struct {
	RTP float64
	PointStat
}

// PointStat 點估計與信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

type EventStat struct {
	Trigger EventCount
	Cap     EventCount // 每位玩家封頂次數
	Bucket  BucketEvent
}

// EventCount 每位玩家事件次數落在 0/1/2/3+ 的比例
type EventCount struct {
	Zero PointStat
	One  PointStat
	Two  PointStat
	More PointStat
}

type BucketEvent struct {
	BucketLabel []string
	BucketCount []EventCount
}

type SessionStat struct {
	Bust    PointStat // 破產
	Cashout PointStat // 贏滿離場
	Alive   PointStat // 轉完仍在場
}

// At 取第 q 分位的估計
func (r RtpStat) At(q float64) (PointStat, bool) {
	for _, v := range r.Quantiles {
		if v.Q == q {
			return v.PointStat, true
		}
	}
	return PointStat{}, false
}

// EstimatorPlayerExp 由每位玩家各自的報表估計整體體驗
func EstimatorPlayerExp(sts []*StatReport) *EstimatorPlayers {
	out := &EstimatorPlayers{}
	n := len(sts)
	if n == 0 {
		return out
	}

	rtp := make([]float64, n)
	for i, s := range sts {
		rtp[i] = s.Rtp()
	}
	slices.Sort(rtp)
	out.RtpStat.Median = quantileStat(rtp, 0.5)
	for _, q := range expQuantiles {
		out.RtpStat.Quantiles = append(out.RtpStat.Quantiles, QuantileStat{Q: q, PointStat: quantileStat(rtp, q)})
	}
	for _, x := range rtpThresholds {
		k, _ := slices.BinarySearch(rtp, x)
		for k < n && rtp[k] <= x {
			k++
		}
		out.RtpStat.Below = append(out.RtpStat.Below, ThresholdStat{RTP: x, PointStat: proportion(k, n)})
	}

	out.EventStat.Trigger = countEvents(sts, func(s *StatReport) int { return s.Summary.Trigger })
	out.EventStat.Cap = countEvents(sts, func(s *StatReport) int { return s.Summary.CapHits })
	labels := Buckets.WinBucketStr()
	out.EventStat.Bucket = BucketEvent{BucketLabel: labels, BucketCount: make([]EventCount, len(labels))}
	for bi := range labels {
		out.EventStat.Bucket.BucketCount[bi] = countEvents(sts, func(s *StatReport) int {
			if bi < len(s.Dist.TotalWinCollect) {
				return s.Dist.TotalWinCollect[bi]
			}
			return 0
		})
	}

	var bust, cash, alive int
	for _, s := range sts {
		bust += b2i(s.Player.Bust)
		cash += b2i(s.Player.Cashout)
		alive += b2i(s.Player.Alive)
	}
	out.SessionStat = SessionStat{Bust: proportion(bust, n), Cashout: proportion(cash, n), Alive: proportion(alive, n)}
	return out
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// countEvents 依每位玩家的事件次數分成 0/1/2/3+ 並估計比例
func countEvents(sts []*StatReport, count func(*StatReport) int) EventCount {
	var c [4]int
	for _, s := range sts {
		c[min(count(s), 3)]++
	}
	n := len(sts)
	return EventCount{Zero: proportion(c[0], n), One: proportion(c[1], n), Two: proportion(c[2], n), More: proportion(c[3], n)}
}

// proportion 二項比例 k/n 與 Clopper-Pearson 區間
func proportion(k, n int) PointStat {
	if n == 0 {
		return PointStat{CI: CI{Lo: 0, Hi: 1}}
	}
	lo, hi := cpBounds(k, n)
	return PointStat{Hat: float64(k) / float64(n), CI: CI{Lo: lo, Hi: hi}}
}

func cpBounds(k, n int) (lo, hi float64) {
	alpha := 1 - confidence
	lo, hi = 0, 1
	if k > 0 {
		lo = distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}.Quantile(alpha / 2)
	}
	if k < n {
		hi = distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}.Quantile(1 - alpha/2)
	}
	return lo, hi
}

// quantileStat sorted 需已排序。點估計取最近秩；區間把秩的 CP 範圍換回樣本值。
func quantileStat(sorted []float64, q float64) PointStat {
	n := len(sorted)
	if n == 0 {
		return PointStat{}
	}
	at := func(i int) float64 { return sorted[min(max(i, 0), n-1)] }
	k := min(max(int(q*float64(n)), 1), max(n-1, 1))
	pLo, pHi := cpBounds(k, n)
	hi := int(pHi * float64(n))
	if hi > 0 {
		hi--
	}
	return PointStat{
		Hat: at(int(q * float64(n))),
		CI:  CI{Lo: at(int(pLo * float64(n))), Hi: at(hi)},
	}
}

// ============================================================
// ** 輸出 **
// ============================================================

func (est *EstimatorPlayers) Out() {
	fmt.Print(est.String())
}

func (est *EstimatorPlayers) String() string {
	var b strings.Builder
	section := func(title string) { fmt.Fprintf(&b, "\n=== %s ===\n", title) }
	row := func(k, v string) { fmt.Fprintf(&b, "  %-22s : %s\n", k, v) }

	section("RTP (Player Experience)")
	row("Median RTP", fmtPoint(est.RtpStat.Median))
	for _, v := range est.RtpStat.Quantiles {
		row(fmt.Sprintf("P%.0f RTP", v.Q*100), fmtPoint(v.PointStat))
	}
	for _, v := range est.RtpStat.Below {
		row(fmt.Sprintf("<=%.0f%% RTP (players)", v.RTP*100), fmtPoint(v.PointStat))
	}

	section("Events per player")
	row("free spins trigger", fmtEventCount(est.EventStat.Trigger))
	row("win cap", fmtEventCount(est.EventStat.Cap))

	section("Buckets (per player hits)")
	for i, label := range est.EventStat.Bucket.BucketLabel {
		row(label, fmtEventCount(est.EventStat.Bucket.BucketCount[i]))
	}

	section("Session Outcome")
	row("Bust", fmtPoint(est.SessionStat.Bust))
	row("Cashout", fmtPoint(est.SessionStat.Cashout))
	row("Alive", fmtPoint(est.SessionStat.Alive))
	return b.String()
}

func fmtPoint(p PointStat) string {
	return fmt.Sprintf("%.2f%% [%.2f%%, %.2f%%]", p.Hat*100, p.CI.Lo*100, p.CI.Hi*100)
}

func fmtEventCount(ec EventCount) string {
	return fmt.Sprintf("0x: %s | 1x: %s | 2x: %s | 3+x: %s",
		fmtPoint(ec.Zero), fmtPoint(ec.One), fmtPoint(ec.Two), fmtPoint(ec.More))
}
