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

package vaultways

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/panjf2000/ants/v2"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/recorder"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
	"github.com/zintix-labs/vaultways/stats"
)

const capPrepare int = 100

// Simulator 用於模擬遊戲行為，可建立多台機台並平行紀錄統計。
//
// 每台機台有自己的亂數流（由 seedMaker 從初始 seed 衍生），同一個 seed 與 worker 數下結果可重現。
type Simulator struct {
	GameName  string            // 遊戲名稱
	GameId    spec.GID          // 遊戲 id
	gs        *spec.GameSetting // 方便重用建立 recorder
	cf        core.PRNGFactory  // 亂數生成器
	initSeed  int64             // 初始下的種子
	seedmaker *seedMaker        // 種子生成器
	mBuf      []*Machine        // 併發執行機台實例
}

func newSimulatorWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64) (*Simulator, error) {
	s := &Simulator{
		GameName:  gs.GameName,
		GameId:    gs.GameID,
		gs:        gs,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
		mBuf:      make([]*Machine, 1, capPrepare),
	}
	m, err := newMachineWithSeed(gs, cf, s.initSeed, true)
	if err != nil {
		return nil, err
	}
	s.mBuf[0] = m
	return s, nil
}

// Sim 單線模擬器：以一台機台連續跑指定 round 並回傳統計結果與用時
func (s *Simulator) Sim(betMode string, rounds int, showpb bool) (*stats.StatReport, time.Duration, error) {
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	r, err := recorder.NewRoundRecorder(s.gs, betMode, 1, 0)
	if err != nil {
		return nil, 0, err
	}
	bar := newBar(rounds, showpb)
	err = runRounds(s.mBuf[0], r, betMode, rounds, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, err
	}
	return r.Done(), used, nil
}

// SimMP 平行執行多個機台，總計 rounds*mp 次 spin，合併統計結果後回傳統計結果與用時
func (s *Simulator) SimMP(betMode string, rounds int, mp int, showpb bool) (*stats.StatReport, time.Duration, error) {
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	if rounds < 1 {
		return nil, 0, errs.NewWarn("round must > 0")
	}
	if err := s.prepareMachines(mp); err != nil {
		return nil, 0, err
	}
	rBuf, err := s.recorders(mp, betMode, 0)
	if err != nil {
		return nil, 0, err
	}

	bar := newBar(rounds*mp, showpb)
	err = fanOut(mp, mp, func(i int) error {
		return runRounds(s.mBuf[i], rBuf[i], betMode, rounds, bar)
	})
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, err
	}

	st, err := recorder.MergeRoundRecorder(rBuf)
	if err != nil {
		return nil, used, err
	}
	return st.Done(), used, nil
}

// SimPlayers 模擬多個玩家各自帶入初始籌碼（以每局押注計）的遊戲歷程，並產出機台報表與玩家報表。
//
// 玩家排入 worker pool，mp 台機台輪流借出；玩家破產或贏滿 3 倍本金即離場。
func (s *Simulator) SimPlayers(mp int, players int, initBets int, betMode string, rounds int, showpb bool) (*stats.StatReport, *stats.EstimatorPlayers, time.Duration, error) {
	if players < 1 || initBets < 1 || rounds < 1 || mp < 1 {
		return nil, nil, 0, errs.NewWarn("invalid param")
	}
	if err := s.prepareMachines(mp); err != nil {
		return nil, nil, 0, err
	}
	rBuf, err := s.recorders(players, betMode, initBets)
	if err != nil {
		return nil, nil, 0, err
	}

	// 機台以 channel 借還，一台機台同時只服務一位玩家
	machines := make(chan *Machine, mp)
	for i := 0; i < mp; i++ {
		machines <- s.mBuf[i]
	}
	bar := newBar(players, showpb)
	err = fanOut(mp, players, func(i int) error {
		m := <-machines
		defer func() { machines <- m }()
		defer bar.Increment()
		return playUntilLeave(m, rBuf[i], betMode, rounds)
	})
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, nil, used, err
	}

	// 機台基準報表
	record, err := recorder.MergeRoundRecorder(rBuf)
	if err != nil {
		return nil, nil, used, err
	}
	st := record.Done()

	// 玩家分析報表
	sBuf := make([]*stats.StatReport, players)
	for i, r := range rBuf {
		sBuf[i] = r.Done()
	}
	return st, stats.EstimatorPlayerExp(sBuf), used, nil
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (s *Simulator) prepareMachines(mp int) error {
	for len(s.mBuf) < mp {
		m, err := newMachineWithSeed(s.gs, s.cf, s.seedmaker.next(), true)
		if err != nil {
			return err
		}
		s.mBuf = append(s.mBuf, m)
	}
	return nil
}

// recorders 每個 worker / 玩家各自一份，最後再合併
func (s *Simulator) recorders(n int, betMode string, initBets int) ([]*recorder.RoundRecorder, error) {
	out := make([]*recorder.RoundRecorder, n)
	for i := range out {
		r, err := recorder.NewRoundRecorder(s.gs, betMode, 1, initBets)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// runRounds 作廢局只計數；其他錯誤中止模擬
func runRounds(m *Machine, r *recorder.RoundRecorder, betMode string, rounds int, bar *pb.ProgressBar) error {
	for i := 0; i < rounds; i++ {
		rr, err := m.SpinInternal(betMode)
		bar.Increment()
		if err != nil {
			if errs.IsVoid(err) {
				r.RecordVoid()
				continue
			}
			return err
		}
		r.Record(rr)
	}
	return nil
}

func playUntilLeave(m *Machine, r *recorder.RoundRecorder, betMode string, rounds int) error {
	for range rounds {
		rr, err := m.SpinInternal(betMode)
		if err != nil {
			if errs.IsVoid(err) {
				r.RecordVoid()
				continue
			}
			return err
		}
		if r.RecordWithPlayer(rr) {
			break
		}
	}
	return nil
}

func newBar(total int, show bool) *pb.ProgressBar {
	bar := pb.StartNew(total)
	if !show {
		bar.SetWriter(io.Discard)
	}
	return bar
}

// fanOut 以 workers 個 goroutine 執行 tasks 個工作，回傳第一個錯誤
func fanOut(workers, tasks int, run func(i int) error) error {
	var (
		wg    sync.WaitGroup
		once  sync.Once
		first error
	)
	fail := func(err error) { once.Do(func() { first = err }) }
	pool, err := ants.NewPoolWithFunc(workers, func(arg any) {
		defer wg.Done()
		if err := run(arg.(int)); err != nil {
			fail(err)
		}
	})
	if err != nil {
		return errs.Wrap(err, "new worker pool")
	}
	defer pool.Release()
	for i := range tasks {
		wg.Add(1)
		if err := pool.Invoke(i); err != nil {
			wg.Done()
			fail(errs.Wrap(err, "submit simulation task"))
		}
	}
	wg.Wait()
	return first
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// next 以全週期 LCG 推進 state，再用可逆 mix63 打散；可被多 goroutine 同時呼叫。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}

// Seed 初始種子，帶著它即可重跑同一份報表
func (s *Simulator) Seed() int64 {
	return s.initSeed
}
