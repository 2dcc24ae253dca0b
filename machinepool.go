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
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
)

// 連續淘汰超過此數即關池，交給上層處理
const maxFailStreak = 100

// MachinePool 管理同一組設定的機台。
//
// 借出的機台若 panic 或回傳 Fatal 錯誤（含作廢局），其狀態不再可信：
// 該機台直接淘汰並以新 seed 補上一台，容量維持不變。
type MachinePool struct {
	gs    *spec.GameSetting
	cf    core.PRNGFactory
	seeds *seedMaker
	idle  chan *Machine
	size  int

	done   chan struct{}
	once   sync.Once
	reason atomic.Pointer[string]
	// 關池當下的 inflight / available，未關閉時為 -1
	atClose atomic.Pointer[[2]int]

	inflight   atomic.Int32
	rebuilt    atomic.Int32
	panics     atomic.Int32
	fatals     atomic.Int32
	failStreak atomic.Int32
}

func newMachinePool(n int, gs *spec.GameSetting, cf core.PRNGFactory, seed int64) (*MachinePool, error) {
	n = max(1, n)
	p := &MachinePool{
		gs:    gs,
		cf:    cf,
		seeds: newSeedMaker(seed),
		idle:  make(chan *Machine, n),
		size:  n,
		done:  make(chan struct{}),
	}
	for range n {
		m, err := p.build()
		if err != nil {
			return nil, err
		}
		p.idle <- m
	}
	return p, nil
}

func (p *MachinePool) build() (*Machine, error) {
	return newMachineWithSeed(p.gs, p.cf, p.seeds.next(), false)
}

// Close 之後所有 Spin 直接回錯誤
func (p *MachinePool) Close() { p.closeWithReason("closed") }

func (p *MachinePool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *MachinePool) closeWithReason(reason string) {
	p.once.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.reason.Store(&reason)
		p.atClose.Store(&[2]int{int(p.inflight.Load()), len(p.idle)})
		close(p.done)
	})
}

func (p *MachinePool) ClosedReason() string {
	if r := p.reason.Load(); r != nil {
		return *r
	}
	return ""
}

// Spin 借一台機台跑一局，並取回該局的抽樣紀錄供審計。
//
// 作廢局回傳 Void 結果與錯誤。
func (p *MachinePool) Spin(ctx context.Context, req *dto.SpinRequest) (res dto.RoundResult, draws []uint64, err error) {
	// select 在多個 case 就緒時隨機挑選，關池後仍有閒置機台也不能借出
	if p.Closed() {
		return res, nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	}
	var m *Machine
	select {
	case <-p.done:
		return res, nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	case <-ctx.Done():
		return res, nil, errs.NewWarn("spin canceled/timeout: " + ctx.Err().Error())
	case m = <-p.idle:
	}
	if p.Closed() {
		return res, nil, errs.NewFatal("machine pool closed: " + p.ClosedReason())
	}
	p.inflight.Add(1)
	defer func() {
		p.inflight.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			err = errs.NewFatal(fmt.Sprintf("machine %s panic: %v", p.gs.GameName, r))
			p.retire()
			return
		}
		if e, ok := errs.AsErr(err); ok && e.ErrLv == errs.Fatal {
			p.fatals.Add(1)
			if rerr := p.retire(); rerr != nil {
				err = rerr
			}
			return
		}
		p.failStreak.Store(0)
		p.giveBack(m)
	}()

	res, err = m.Spin(req)
	if res.RoundID != "" {
		draws = m.Draws()
	}
	return
}

// retire 丟棄壞機台並補一台新的；補不了或連續故障過多就關池
func (p *MachinePool) retire() error {
	if p.Closed() {
		return nil
	}
	if p.failStreak.Add(1) > maxFailStreak {
		p.closeWithReason("overwhelmed_by_failures")
		return errs.NewFatal("machine pool overwhelmed by failures")
	}
	m, err := p.build()
	p.rebuilt.Add(1)
	if err != nil {
		p.closeWithReason("rebuild_failed")
		return errs.Wrap(err, "machine "+p.gs.GameName+" can not build")
	}
	p.giveBack(m)
	return nil
}

func (p *MachinePool) giveBack(m *Machine) {
	select {
	case <-p.done:
	case p.idle <- m:
	}
}

// MachinePoolMetrics 拉取式觀測快照；Available 取自 len(chan)，高併發下為近似值
type MachinePoolMetrics struct {
	GameName    string   `json:"game_name"`
	GameID      spec.GID `json:"game_id"`
	PoolSize    int      `json:"pool_size"`
	Available   int      `json:"available"`
	Inflight    int      `json:"inflight"`
	Rebuild     int      `json:"rebuild"`
	Panics      int      `json:"panics"`
	Fatals      int      `json:"fatals"`
	Closed      bool     `json:"closed"`
	CloseReason string   `json:"close_reason"`

	CloseInflight int `json:"close_inflight"` // -1 表示尚未關閉
	CloseAvail    int `json:"close_avail"`
}

func (p *MachinePool) Metrics() MachinePoolMetrics {
	s := MachinePoolMetrics{
		GameName:      p.gs.GameName,
		GameID:        p.gs.GameID,
		PoolSize:      p.size,
		Available:     len(p.idle),
		Inflight:      int(p.inflight.Load()),
		Rebuild:       int(p.rebuilt.Load()),
		Panics:        int(p.panics.Load()),
		Fatals:        int(p.fatals.Load()),
		Closed:        p.Closed(),
		CloseReason:   p.ClosedReason(),
		CloseInflight: -1,
		CloseAvail:    -1,
	}
	if c := p.atClose.Load(); c != nil {
		s.CloseInflight, s.CloseAvail = c[0], c[1]
	}
	return s
}

func (p *MachinePool) Available() int { return len(p.idle) }
