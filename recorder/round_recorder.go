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

package recorder

import (
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/spec"
	"github.com/zintix-labs/vaultways/stats"
)

// RoundRecorder 遊戲紀錄員
//
// RoundRecorder 負責紀錄每局結果，並透過Done輸出統計報表。
// 所有數值皆為整數單位；一局的押注 = BetUnit * Cost。
type RoundRecorder struct {
	GameName string
	GameId   spec.GID
	Profile  string
	BetMode  string
	BetUnit  int // 1 倍押注（bet_unit * bet_mult）
	BetMult  int
	Cost     int
	InitBets int
	Basic    *BasicRecord
	Dist     *DistRecord
	Feature  *FeatureRecord
	Player   *PlayerRecord

	st *spec.SymbolTable
}

// BasicRecord 基本遊戲資料紀錄
type BasicRecord struct {
	TotalBet      int
	TotalWin      int
	BaseWin       int
	FreeWin       int
	TotalWinSqSum int // 平方和
	BaseWinSqSum  int // 平方和
	FreeWinSqSum  int // 平方和
	Trigger       int
	CapHits       int
	Voids         int
	MaxWin        int
	Rounds        int
}

// DistRecord 分數區間落點統計
//
// 紀錄時紀錄int資訊
type DistRecord struct {
	Bucket          *stats.WinBucket
	TotalWinCollect []int
	BaseWinCollect  []int
	FreeWinCollect  []int
}

// FeatureRecord 免費遊戲紀錄
type FeatureRecord struct {
	Sessions   int
	FreeSpins  int
	Retriggers int
	Upgrades   map[int16]int // 轉換目標 id -> 達成場數
}

// PlayerRecord 玩家統計
type PlayerRecord struct {
	leaveLine   int
	InitBalance int
	Balance     int
	MaxBalance  int
	MinBalance  int
	Bust        bool
	Cashout     bool
	Alive       bool
}

func NewRoundRecorder(gs *spec.GameSetting, betMode string, betMult int, initBets int) (*RoundRecorder, error) {
	s := new(RoundRecorder)
	if gs == nil || gs.SymbolTable == nil {
		return s, errs.NewFatal("game setting is not initialized")
	}
	m, ok := gs.BetMode(betMode)
	if !ok {
		return s, errs.Warnf("bet mode %q not offered by %s", betMode, gs.GameName)
	}
	if betMult < 1 {
		return s, errs.Warnf("invalid bet mult %d", betMult)
	}
	if initBets < 0 {
		return s, errs.Warnf("init bets must not negative integer, got: %d", initBets)
	}
	// 通過valid
	s.GameName = gs.GameName
	s.GameId = gs.GameID
	s.Profile = gs.Profile.Name
	s.BetMode = betMode
	s.BetMult = betMult
	s.BetUnit = gs.BetUnit * betMult
	s.Cost = m.Cost
	s.InitBets = initBets
	s.st = gs.SymbolTable
	s.Basic = new(BasicRecord)
	s.Dist = newDistRecord(s.BetUnit)
	s.Feature = &FeatureRecord{Upgrades: make(map[int16]int)}
	s.Player = newPlayerRecord(s.stake(), s.InitBets)
	return s, nil
}

// MergeRoundRecorder 合併同一組設定下多個 worker 的紀錄（玩家紀錄不合併）
func MergeRoundRecorder(r []*RoundRecorder) (*RoundRecorder, error) {
	if len(r) == 0 {
		return nil, errs.NewFatal("merge round record err : empty input")
	}
	r0 := r[0]
	s := &RoundRecorder{
		GameName: r0.GameName,
		GameId:   r0.GameId,
		Profile:  r0.Profile,
		BetMode:  r0.BetMode,
		BetUnit:  r0.BetUnit,
		BetMult:  r0.BetMult,
		Cost:     r0.Cost,
		InitBets: r0.InitBets,
		st:       r0.st,
		Basic:    new(BasicRecord),
		Dist:     newDistRecord(r0.BetUnit),
		Feature:  &FeatureRecord{Upgrades: make(map[int16]int)},
		Player:   newPlayerRecord(r0.stake(), r0.InitBets),
	}
	for _, v := range r {
		if v.GameId != r0.GameId || v.GameName != r0.GameName {
			return s, errs.NewFatal("merge round record err : different game")
		}
		if v.BetMode != r0.BetMode || v.BetUnit != r0.BetUnit {
			return s, errs.NewFatal("merge round record err : different bet")
		}
		b := v.Basic
		s.Basic.TotalBet += b.TotalBet
		s.Basic.TotalWin += b.TotalWin
		s.Basic.BaseWin += b.BaseWin
		s.Basic.FreeWin += b.FreeWin
		s.Basic.TotalWinSqSum += b.TotalWinSqSum
		s.Basic.BaseWinSqSum += b.BaseWinSqSum
		s.Basic.FreeWinSqSum += b.FreeWinSqSum
		s.Basic.Trigger += b.Trigger
		s.Basic.CapHits += b.CapHits
		s.Basic.Voids += b.Voids
		s.Basic.MaxWin = max(s.Basic.MaxWin, b.MaxWin)
		s.Basic.Rounds += b.Rounds

		// 整合Dist
		for i := range len(v.Dist.TotalWinCollect) {
			s.Dist.TotalWinCollect[i] += v.Dist.TotalWinCollect[i]
			s.Dist.BaseWinCollect[i] += v.Dist.BaseWinCollect[i]
			s.Dist.FreeWinCollect[i] += v.Dist.FreeWinCollect[i]
		}

		s.Feature.Sessions += v.Feature.Sessions
		s.Feature.FreeSpins += v.Feature.FreeSpins
		s.Feature.Retriggers += v.Feature.Retriggers
		for id, n := range v.Feature.Upgrades {
			s.Feature.Upgrades[id] += n
		}
	}
	return s, nil
}

// Record 以單局已結算的結果更新統計（不含玩家）
func (s *RoundRecorder) Record(rr *buf.RoundResult) {
	base, free := split(rr)
	s.recordBasic(rr, base, free)
	s.recordDist(base, free)
	s.recordFeature(rr)
}

// RecordVoid 作廢局：押注退回，不計入 RTP，只計數
func (s *RoundRecorder) RecordVoid() {
	s.Basic.Voids++
}

// RecordWithPlayer 在 Record 的基礎上，進一步更新玩家餘額／離場狀態，並回傳玩家是否停止遊戲。
func (s *RoundRecorder) RecordWithPlayer(rr *buf.RoundResult) bool {
	if s.Player.Balance < s.stake() {
		return true
	}
	s.Record(rr)
	return s.recordPlayer(rr.Payout)
}

func (s *RoundRecorder) Done() *stats.StatReport {
	stake := float64(s.stake())
	ss := stake * stake
	b := s.Basic

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			GameName:    s.GameName,
			GameId:      s.GameId,
			Profile:     s.Profile,
			BetMode:     s.BetMode,
			BetUnit:     s.BetUnit,
			BetMult:     s.BetMult,
			Cost:        s.Cost,
			TotalBet:    b.TotalBet,
			TotalWin:    b.TotalWin,
			BaseWin:     b.BaseWin,
			FreeWin:     b.FreeWin,
			Trigger:     b.Trigger,
			NoWinRounds: s.Dist.TotalWinCollect[0],
			CapHits:     b.CapHits,
			Voids:       b.Voids,
			MaxWin:      b.MaxWin,
			Rounds:      b.Rounds,
		},
		Mult: &stats.MultReport{
			TotalWinMult:      float64(b.TotalWin) / stake,
			BaseWinMult:       float64(b.BaseWin) / stake,
			FreeWinMult:       float64(b.FreeWin) / stake,
			TotalWinMultSqSum: float64(b.TotalWinSqSum) / ss,
			BaseWinMultSqSum:  float64(b.BaseWinSqSum) / ss,
			FreeWinMultSqSum:  float64(b.FreeWinSqSum) / ss,
		},
		Dist: &stats.DistReport{
			WinBucket:       stats.Buckets.WinBucketStr(),
			TotalWinCollect: s.Dist.TotalWinCollect,
			BaseWinCollect:  s.Dist.BaseWinCollect,
			FreeWinCollect:  s.Dist.FreeWinCollect,
		},
		Feature: &stats.FeatureReport{
			Sessions:      s.Feature.Sessions,
			FreeSpins:     s.Feature.FreeSpins,
			Retriggers:    s.Feature.Retriggers,
			ThresholdHits: make(map[string]int, len(s.Feature.Upgrades)),
		},
		Player: &stats.PlayerReport{
			InitBalance: s.Player.InitBalance,
			Balance:     s.Player.Balance,
			MaxBalance:  s.Player.MaxBalance,
			MinBalance:  s.Player.MinBalance,
			Bust:        s.Player.Bust,
			Cashout:     s.Player.Cashout,
		},
	}
	for id, n := range s.Feature.Upgrades {
		report.Feature.ThresholdHits[s.st.Name(id)] = n
	}

	length := len(report.Dist.WinBucket)
	totalWinF := make([]float64, length)
	baseWinF := make([]float64, length)
	freeWinF := make([]float64, length)
	if rf := float64(b.Rounds); rf > 0 {
		for i := range length {
			totalWinF[i] = float64(report.Dist.TotalWinCollect[i]) / rf
			baseWinF[i] = float64(report.Dist.BaseWinCollect[i]) / rf
			freeWinF[i] = float64(report.Dist.FreeWinCollect[i]) / rf
		}
	}
	report.Dist.TotalWinDist = totalWinF
	report.Dist.BaseWinDist = baseWinF
	report.Dist.FreeWinDist = freeWinF

	report.Done()
	return report
}

// ============================================================
// ** 內部方法 **
// ============================================================

// stake 每局實際押注
func (s *RoundRecorder) stake() int {
	return s.BetUnit * s.Cost
}

// split 封頂後的派彩拆回主遊戲與免費遊戲；封頂扣除的部分算在免費遊戲
func split(rr *buf.RoundResult) (int, int) {
	base := min(rr.BaseWin, rr.Payout)
	return base, rr.Payout - base
}

func (s *RoundRecorder) recordBasic(rr *buf.RoundResult, bw, fw int) {
	w := rr.Payout
	b := s.Basic
	b.TotalBet += s.stake()
	b.TotalWin += w
	b.BaseWin += bw
	b.FreeWin += fw
	b.TotalWinSqSum += w * w
	b.BaseWinSqSum += bw * bw
	b.FreeWinSqSum += fw * fw
	if rr.Triggered {
		b.Trigger++
	}
	if rr.Capped {
		b.CapHits++
	}
	if w > b.MaxWin {
		b.MaxWin = w
	}
	b.Rounds++
}

func (s *RoundRecorder) recordDist(bw, fw int) {
	d := s.Dist
	bk := d.Bucket
	d.TotalWinCollect[bk.Index(bw+fw)]++
	d.BaseWinCollect[bk.Index(bw)]++
	d.FreeWinCollect[bk.Index(fw)]++
}

func (s *RoundRecorder) recordFeature(rr *buf.RoundResult) {
	if !rr.Triggered {
		return
	}
	f := s.Feature
	f.Sessions++
	f.FreeSpins += rr.FreeSpinsPlayed
	f.Retriggers += rr.Retriggers
	for _, ev := range rr.Events {
		if ev.Kind == buf.EventTransform {
			f.Upgrades[ev.Symbol]++
		}
	}
}

func (s *RoundRecorder) recordPlayer(w int) bool {
	p := s.Player
	b := s.stake()

	// 更新資金
	p.Balance -= b
	p.Balance += w

	if p.Balance > p.MaxBalance {
		p.MaxBalance = p.Balance
	}
	if p.Balance < p.MinBalance {
		p.MinBalance = p.Balance
	}

	// 更新結局
	leave := false
	if p.Balance < b {
		p.Bust = true
		leave = true
	}
	if p.Balance >= p.leaveLine {
		p.Cashout = true
		leave = true
	}
	return leave
}

func newDistRecord(bu int) *DistRecord {
	n := len(stats.Buckets.WinBucketStr())
	return &DistRecord{
		Bucket:          stats.Buckets.GetBucketByBetUnit(bu),
		TotalWinCollect: make([]int, n),
		BaseWinCollect:  make([]int, n),
		FreeWinCollect:  make([]int, n),
	}
}

func newPlayerRecord(stake int, initBets int) *PlayerRecord {
	b := stake * initBets // 初始帶入總金額(依每局押注看)
	return &PlayerRecord{
		InitBalance: b,
		Balance:     b,
		MaxBalance:  b,
		MinBalance:  b,
		leaveLine:   3 * b, // 設定離場條件(3倍本金)
	}
}
