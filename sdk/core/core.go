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

// Package core 提供引擎唯一的亂數來源 Core。
//
// 每一台 Machine 擁有自己的 Core（一條獨立、可重現的亂數流），
// 一局遊戲從頭到尾只在該 Core 上依序抽樣，不與其他局交錯。
package core

import (
	"github.com/zintix-labs/vaultways/errs"
)

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// bounded 取樣交由 PRNG 自己實作，讓每個實作使用最合適的無偏策略。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

// Exhaustible 由有限長度的亂數流實作（例如回放用的 Script）。
type Exhaustible interface {
	Exhausted() bool
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	//
	// 合約：在同一個實作與同一個版本下，New(seed) 必須是決定性的，
	// 相同的 seed 必須產生相同的輸出序列（回放、審計、併發派生都依賴這一點）。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory（PCG64）
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return NewPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 PRNG，並記錄本局消耗的抽樣次數。
//
// 開啟 trace 後，每次抽樣的「回傳值」會被依序記錄，
// 交給 NewScript 即可逐次重播同一局。
type Core struct {
	rng   PRNG
	draws int
	trace []uint64
	trOn  bool
}

// New 允許使用外部自實現的 PRNG 建立 Core。
func New(rng PRNG) *Core {
	return &Core{rng: rng}
}

func (c *Core) Uint64() uint64 {
	v := c.rng.Uint64()
	c.mark(v)
	return v
}

func (c *Core) UintN(n uint) uint {
	v := c.rng.UintN(n)
	c.mark(uint64(v))
	return v
}

func (c *Core) IntN(n int) int {
	v := c.rng.IntN(n)
	c.mark(uint64(v))
	return v
}

// Float64 回傳 [0,1) 53bits 精度浮點，底層只消耗一次 Uint64。
func (c *Core) Float64() float64 {
	return float64(c.Uint64()>>11) / (1 << 53)
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	return src[c.IntN(len(src))]
}

func (c *Core) Snapshot() ([]byte, error) {
	return c.rng.Snapshot()
}

func (c *Core) Restore(b []byte) error {
	return c.rng.Restore(b)
}

// Draws 回傳自上次 ResetDraws 以來的抽樣次數
func (c *Core) Draws() int {
	return c.draws
}

// ResetDraws 歸零抽樣計數與 trace（每局開始呼叫）
func (c *Core) ResetDraws() {
	c.draws = 0
	c.trace = c.trace[:0]
}

// EnableTrace 開關抽樣紀錄
func (c *Core) EnableTrace(on bool) {
	c.trOn = on
}

// Trace 回傳本局的抽樣紀錄（唯讀，下一局會被覆寫）
func (c *Core) Trace() []uint64 {
	return c.trace
}

// Err 檢查亂數流是否已無法提供抽樣
func (c *Core) Err() error {
	if ex, ok := c.rng.(Exhaustible); ok && ex.Exhausted() {
		return errs.RngExhausted("rng stream exhausted")
	}
	return nil
}

func (c *Core) mark(v uint64) {
	c.draws++
	if c.trOn {
		c.trace = append(c.trace, v)
	}
}
