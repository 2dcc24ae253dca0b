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
	"sync"

	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/buf"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/sdk/slot"
	"github.com/zintix-labs/vaultways/spec"
)

// Machine 封裝一台「可對外提供 Spin」的遊戲機台。
//
// 對外提供 Spin 入口；對內持有亂數核心（Core）與執行遊戲邏輯的 slot.Game。
//
// 並發語意：
//   - 同一台 Machine 的 Spin 由 mutex 串行化，一局從頭到尾只在自己的 Core 上抽樣。
//   - 要併發請建立多台 Machine（MachinePool / Simulator 的做法）。
//
// Buffer 語意：
//   - slot.Game 的結果緩衝每局覆寫；Spin 回傳前已深拷貝成 DTO。
//   - SpinInternal 直接回傳緩衝，呼叫端必須在下一局前用完。
type Machine struct {
	gameName string     // 遊戲名稱（主要用於觀測/日誌）
	gameId   spec.GID   // 遊戲 ID（Catalog 內唯一；用於路由與查表）
	profile  string     // 設定組名稱（standard / extreme）
	core     *core.Core // 亂數核心
	gh       *slot.Game // 遊戲執行核心
	mu       sync.Mutex // 保護可重用 buffers 與核心狀態一致性
	initseed int64      // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
	draws    []uint64   // 上一局的抽樣紀錄（trace 開啟時）
}

// newMachineWithSeed 以指定 seed 建立 Machine。
//
// trace 為 true 時每局記錄抽樣值，供審計與 Replay；模擬器關閉以保持熱路徑乾淨。
func newMachineWithSeed(gs *spec.GameSetting, cf core.PRNGFactory, seed int64, isSim bool) (*Machine, error) {
	m, err := newMachineWithCore(gs, core.New(cf.New(seed)), !isSim)
	if err != nil {
		return nil, err
	}
	m.initseed = seed
	return m, nil
}

func newMachineWithCore(gs *spec.GameSetting, c *core.Core, trace bool) (*Machine, error) {
	gh, err := slot.NewGame(gs, c)
	if err != nil {
		return nil, err
	}
	c.EnableTrace(trace)
	return &Machine{
		gameName: gs.GameName,
		gameId:   gs.GameID,
		profile:  gs.Profile.Name,
		core:     c,
		gh:       gh,
	}, nil
}

// Spin 為主要公開入口：驗證請求、執行一局並回傳 DTO。
//
// 帶入 start_state 時以該快照重現一局，結束後機台的即時亂數流回到原位。
// 作廢局（亂數耗盡、不變量被破壞）回傳零派彩的 Void 結果，同時回傳造成作廢的錯誤。
func (m *Machine) Spin(r *dto.SpinRequest) (dto.RoundResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// 1. 校驗請求合法性
	if r == nil {
		return dto.RoundResult{}, errs.NewWarn("nil spin request")
	}
	if err := r.Normalize(); err != nil {
		return dto.RoundResult{}, err
	}
	if err := m.valid(r); err != nil {
		return dto.RoundResult{}, err
	}
	snap, err := r.StartState.Snapshot()
	if err != nil {
		return dto.RoundResult{}, err
	}

	// 2. start snapshot
	startsnap, err := m.SnapshotCore()
	if err != nil {
		return dto.RoundResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	if snap != nil {
		startsnap = snap
		if err := m.RestoreCore(snap); err != nil {
			return dto.RoundResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 3. 執行一局
	m.core.ResetDraws()
	rr, spinErr := m.gh.Spin(r.Mode, r.BetMult)
	m.draws = append(m.draws[:0], m.core.Trace()...)

	// 4. after snapshot
	aftersnap, err := m.SnapshotCore()
	if err != nil {
		if e := m.RestoreCore(rem); e != nil {
			return dto.RoundResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.RoundResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}

	// 5. 重現模式：亂數流回到原位
	if snap != nil {
		if err := m.RestoreCore(rem); err != nil {
			return dto.RoundResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	meta := dto.RoundMeta{
		RoundID: dto.NewRoundID(),
		Profile: m.profile,
		Bet:     r.Bet,
		Start:   startsnap,
		After:   aftersnap,
		Draws:   m.core.Draws(),
	}
	if spinErr != nil {
		if errs.IsVoid(spinErr) {
			return dto.NewVoidResult(m.gh.GameSetting, r.Mode, r.BetMult, spinErr, meta), spinErr
		}
		return dto.RoundResult{}, spinErr
	}
	return dto.NewRoundResultDTO(rr, m.gh.GameSetting.SymbolTable, meta)
}

// SpinInternal 直接取得內部結果緩衝；用於模擬器或測試。
//
// 跳過請求檢查，固定 1 倍押注；回傳值在下一局前有效。
func (m *Machine) SpinInternal(betMode string) (*buf.RoundResult, error) {
	return m.gh.Spin(betMode, 1)
}

// Draws 上一局的抽樣紀錄（複本）；未開啟 trace 時為空
func (m *Machine) Draws() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.draws...)
}

func (m *Machine) GameId() spec.GID {
	return m.gameId
}

// BuyCost 購買免費遊戲的費用（1 倍押注為單位）；未開放為 0
func (m *Machine) BuyCost() int {
	return m.gh.BuyCost()
}

func (m *Machine) valid(req *dto.SpinRequest) error {
	if req.GameId != 0 && m.gameId != req.GameId {
		return errs.NewWarn("game id is not matched")
	}
	if req.GameName != "" && m.gameName != req.GameName {
		return errs.NewWarn("game name is not matched")
	}
	if _, ok := m.gh.GameSetting.BetMode(req.Mode); !ok {
		return errs.Warnf("bet mode %s not offered by %s", req.Mode, m.gameName)
	}
	if !m.gh.GameSetting.BetMultOK(req.BetMult) {
		return errs.Warnf("bet_mult %d exceeds %d", req.BetMult, m.gh.GameSetting.MaxBetMult)
	}
	return nil
}

// SnapshotCore 取得Core狀態
func (m *Machine) SnapshotCore() ([]byte, error) {
	return m.core.Snapshot()
}

// RestoreCore 恢復Core狀態
func (m *Machine) RestoreCore(src []byte) error {
	return m.core.Restore(src)
}
