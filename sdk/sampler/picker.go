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

package sampler

import (
	"fmt"

	"github.com/zintix-labs/vaultways/sdk/core"
)

// lutThreshold 權重總和不超過此值時使用 LUT，否則改用 AliasTable。
const lutThreshold = 100_000

// Picker 依權重回傳索引。
type Picker interface {
	Pick(c *core.Core) int
	// Draws 單次 Pick 消耗的亂數次數（固定值）
	Draws() int
}

// Build 依權重總和選擇 LUT 或 AliasTable。
func Build(weights []int) (Picker, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return nil, err
	}
	if total <= lutThreshold {
		return BuildLUT(weights)
	}
	return BuildAliasTable(weights)
}

// WeightTable 把「值/權重」配對包成可直接抽值的表，
// 例如 wild 倍數 {2:60, 3:40}、購買免費遊戲的 scatter 數量。
type WeightTable struct {
	Values  []int
	Weights []int
	picker  Picker
}

// NewWeightTable 建立抽值表；values 與 weights 長度需一致且權重總和為正。
func NewWeightTable(values []int, weights []int) (*WeightTable, error) {
	if len(values) == 0 || len(values) != len(weights) {
		return nil, fmt.Errorf("weight table: %d values vs %d weights", len(values), len(weights))
	}
	pk, err := Build(weights)
	if err != nil {
		return nil, fmt.Errorf("weight table: %w", err)
	}
	return &WeightTable{
		Values:  append([]int(nil), values...),
		Weights: append([]int(nil), weights...),
		picker:  pk,
	}, nil
}

// Draw 抽出一個值
func (w *WeightTable) Draw(c *core.Core) int {
	return w.Values[w.picker.Pick(c)]
}

// Draws 單次 Draw 消耗的亂數次數
func (w *WeightTable) Draws() int {
	return w.picker.Draws()
}

// Prob 回傳 value 的理論機率，不存在則為 0
func (w *WeightTable) Prob(value int) float64 {
	total, hit := 0, 0
	for i, v := range w.Values {
		total += w.Weights[i]
		if v == value {
			hit += w.Weights[i]
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total)
}
