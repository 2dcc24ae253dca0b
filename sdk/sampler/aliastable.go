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
	"math"

	"github.com/zintix-labs/vaultways/sdk/core"
)

// total * n 不得溢位
const maxTotal = math.MaxInt32

// AliasTable Vose alias method，整數比例避免浮點誤差。
// 權重總和過大、不適合展開成 LUT 時使用；一次抽樣消耗兩次 IntN。
type AliasTable struct {
	cut   []int // 以 total 為滿格的留下門檻
	alias []int
	total int
}

func BuildAliasTable(weights []int) (*AliasTable, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return nil, err
	}
	n := len(weights)
	at := &AliasTable{cut: make([]int, n), alias: make([]int, n), total: total}
	var under, over []int
	for i, w := range weights {
		at.cut[i] = w * n
		at.alias[i] = i
		if at.cut[i] < total {
			under = append(under, i)
		} else {
			over = append(over, i)
		}
	}
	for len(under) > 0 && len(over) > 0 {
		s, l := under[len(under)-1], over[len(over)-1]
		under, over = under[:len(under)-1], over[:len(over)-1]
		at.alias[s] = l
		at.cut[l] -= total - at.cut[s]
		if at.cut[l] < total {
			under = append(under, l)
		} else {
			over = append(over, l)
		}
	}
	// 剩下的都是滿格
	for _, i := range append(under, over...) {
		at.cut[i] = total
	}
	return at, nil
}

func (at *AliasTable) Pick(c *core.Core) int {
	i := c.IntN(len(at.cut))
	if c.IntN(at.total) < at.cut[i] {
		return i
	}
	return at.alias[i]
}

func (at *AliasTable) Draws() int { return 2 }
