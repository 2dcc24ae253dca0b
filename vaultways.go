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

// Package vaultways 提供引擎的組裝入口與運行入口。
//
// Vaultways 把兩個地基組合起來，並提供建立 Machine / Simulator / SlotRuntime 的入口：
//  1. Catalog：遊戲目錄，每個 game id 對應一份設定組（standard / extreme 各自一份，不得混用）。
//  2. PRNGFactory：亂數核心工廠，相同 seed 必須產生相同序列（回放、審計依賴這一點）。
//
// 設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS），Vaultways 不處理路徑。
//
//	vw, _ := vaultways.NewAuto(core.Default(), vaultways.Configs(configs.FS))
//	m, _ := vw.NewMachine(1001)
//	res, err := m.Spin(&dto.SpinRequest{GameId: 1001, Bet: decimal.NewFromInt(1), Mode: "normal"})
package vaultways

import (
	"crypto/rand"
	"io/fs"
	"math"
	"math/big"
	"sync"

	"github.com/zintix-labs/vaultways/catalog"
	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/sdk/core"
	"github.com/zintix-labs/vaultways/spec"
)

// Configs 把一或多個設定檔來源打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Vaultways 組裝器與運行入口。
//
// 使用流程分成兩階段：
//   - 註冊階段：建立 catalog、解析並檢查所有設定組。
//   - 執行階段：Freeze 之後依 game id 建立 Machine，在 Machine 上執行 Spin。
type Vaultways struct {
	cat *catalog.Catalog
	cf  core.PRNGFactory

	sumMu sync.Mutex
	sum   []catalog.Summary
}

// New 建立一個 Vaultways instance（註冊階段）。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Vaultways, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Vaultways{cat: cata, cf: cf}, nil
}

// NewAuto 註冊所有設定檔並直接進入執行階段。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Vaultways, error) {
	vw, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := vw.RegisterAll(); err != nil {
		return nil, err
	}
	vw.Freeze()
	return vw, nil
}

func (v *Vaultways) Register(ents ...catalog.Entry) error {
	return v.cat.Register(ents...)
}

// RegisterAll 掃描所有設定檔，解析並完整檢查後以設定檔宣告的 id / name 批次註冊。
//
//  1. Fail-fast：任何一個檔案解析失敗就回傳 ConfigurationError。
//  2. 原子性：全部成功才一次寫入 catalog。
//  3. 依檔名排序處理，行為可重現。
func (v *Vaultways) RegisterAll() error {
	srcs := v.cat.Sources()
	names := srcs.Names()
	if len(names) == 0 {
		return errs.Configuration("no config files found to register")
	}
	entries := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		src, _ := srcs.FS(name)
		raw, err := fs.ReadFile(src, name)
		if err != nil {
			return errs.WrapKind(err, errs.KindConfiguration, "read config "+name)
		}
		gs, err := catalog.ParseGameSetting(name, raw)
		if err != nil {
			return err
		}
		entries = append(entries, catalog.Entry{GID: gs.GameID, Name: gs.GameName, ConfigName: name})
	}
	return v.cat.Register(entries...)
}

func (v *Vaultways) Freeze() {
	v.cat.Freeze()
}

func (v *Vaultways) EntryById(id spec.GID) (catalog.Entry, bool) {
	return v.cat.GetByID(id)
}

func (v *Vaultways) EntryByName(name string) (catalog.Entry, bool) {
	return v.cat.GetByName(name)
}

func (v *Vaultways) IDs() []spec.GID {
	return v.cat.IDs()
}

// GameSetting 依 game id 取得設定組（每次重新解析，呼叫端可自由持有）
func (v *Vaultways) GameSetting(id spec.GID) (*spec.GameSetting, error) {
	if err := v.frozen(); err != nil {
		return nil, err
	}
	return v.cat.GameSettingById(id)
}

// Summary 列出所有已註冊的設定組（結果快取）
func (v *Vaultways) Summary() ([]catalog.Summary, error) {
	if err := v.frozen(); err != nil {
		return nil, err
	}
	v.sumMu.Lock()
	defer v.sumMu.Unlock()
	if v.sum != nil {
		return v.sum, nil
	}
	ids := v.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		gs, err := v.cat.GameSettingById(id)
		if err != nil {
			return nil, err
		}
		cs = append(cs, catalog.NewSummary(gs))
	}
	v.sum = cs
	return v.sum, nil
}

// NewMachine 依 game id 建立一台對外服務的 Machine，seed 由 crypto/rand 產生。
func (v *Vaultways) NewMachine(id spec.GID) (*Machine, error) {
	seed, err := CryptoSeed()
	if err != nil {
		return nil, err
	}
	return v.NewMachineWithSeed(id, seed)
}

// NewMachineWithSeed 同一份設定 + 同一個 seed 會得到相同的局序列。
func (v *Vaultways) NewMachineWithSeed(id spec.GID, seed int64) (*Machine, error) {
	gs, err := v.GameSetting(id)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, v.cf, seed, false)
}

// NewMachineByJSON 以外部設定建立機台；設定必須對應一個已註冊的 id / name
func (v *Vaultways) NewMachineByJSON(raw []byte, seed int64) (*Machine, error) {
	gs, err := v.externalCfg(spec.GetGameSettingByJSON, raw)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, v.cf, seed, false)
}

func (v *Vaultways) NewMachineByYAML(raw []byte, seed int64) (*Machine, error) {
	gs, err := v.externalCfg(spec.GetGameSettingByYAML, raw)
	if err != nil {
		return nil, err
	}
	return newMachineWithSeed(gs, v.cf, seed, false)
}

func (v *Vaultways) NewSimulator(id spec.GID) (*Simulator, error) {
	seed, err := CryptoSeed()
	if err != nil {
		return nil, err
	}
	return v.NewSimulatorWithSeed(id, seed)
}

func (v *Vaultways) NewSimulatorWithSeed(id spec.GID, seed int64) (*Simulator, error) {
	gs, err := v.GameSetting(id)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, v.cf, seed)
}

func (v *Vaultways) NewSimulatorByJSON(raw []byte, seed int64) (*Simulator, error) {
	gs, err := v.externalCfg(spec.GetGameSettingByJSON, raw)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, v.cf, seed)
}

func (v *Vaultways) NewSimulatorByYAML(raw []byte, seed int64) (*Simulator, error) {
	gs, err := v.externalCfg(spec.GetGameSettingByYAML, raw)
	if err != nil {
		return nil, err
	}
	return newSimulatorWithSeed(gs, v.cf, seed)
}

// Replay 以紀錄下來的亂數序列重跑一局。
//
// 序列不足時回傳作廢結果與 rng_exhausted 錯誤；多出來的值不會被使用（State.Draws 為實際消耗數）。
func (v *Vaultways) Replay(req *dto.ReplayRequest) (dto.RoundResult, error) {
	if req == nil {
		return dto.RoundResult{}, errs.NewWarn("nil replay request")
	}
	gs, err := v.GameSetting(req.GameId)
	if err != nil {
		return dto.RoundResult{}, errs.Warnf("game id %d not found", req.GameId)
	}
	c := core.New(core.NewScript(req.Draws...))
	m, err := newMachineWithCore(gs, c, true)
	if err != nil {
		return dto.RoundResult{}, err
	}
	return m.Spin(&dto.SpinRequest{
		GameId:   gs.GameID,
		GameName: gs.GameName,
		Bet:      req.Bet,
		Mode:     req.Mode,
		BetMult:  req.BetMult,
	})
}

// BuildRuntime 進入執行階段：每個設定組建立一個機台池（並行建立，任一失敗即整體失敗）。
func (v *Vaultways) BuildRuntime(poolSize int) (*SlotRuntime, error) {
	v.Freeze()
	ids := v.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no games registered")
	}
	return newSlotRuntime(v, ids, max(1, poolSize))
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (v *Vaultways) frozen() error {
	if !v.cat.IsFrozen() {
		return errs.NewFatal("catalog is not frozen yet")
	}
	return nil
}

// externalCfg 外部帶入的設定必須對應已註冊的同一組 id / name
func (v *Vaultways) externalCfg(parse func([]byte) (*spec.GameSetting, error), raw []byte) (*spec.GameSetting, error) {
	if err := v.frozen(); err != nil {
		return nil, err
	}
	gs, err := parse(raw)
	if err != nil {
		return nil, err
	}
	ent, ok := v.cat.GetByID(gs.GameID)
	if !ok {
		return nil, errs.NewWarn("gid not exist")
	}
	ent2, ok := v.cat.GetByName(gs.GameName)
	if !ok {
		return nil, errs.NewWarn("game name not exist")
	}
	if ent.GID != ent2.GID {
		return nil, errs.NewWarn("game id is not matched game name")
	}
	return gs, nil
}

// CryptoSeed 以 crypto/rand 產生非負 int64 種子
func CryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return seed.Int64(), nil
}
