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

// LUT 把權重展開成索引表，抽一次 IntN 即得結果
type LUT []int

// 展開後上限（約 80MB）
const maxLUTLen = 10_000_000

func BuildLUT(weights []int) (LUT, error) {
	total, err := sumWeights(weights)
	if err != nil {
		return nil, err
	}
	if total > maxLUTLen {
		return nil, fmt.Errorf("lut: total weight %d exceeds %d", total, maxLUTLen)
	}
	l := make(LUT, 0, total)
	for i, w := range weights {
		for range w {
			l = append(l, i)
		}
	}
	return l, nil
}

func (l LUT) Pick(c *core.Core) int { return c.Pick(l) }

func (l LUT) Draws() int { return 1 }

// sumWeights 權重不可為負、總和需大於 0 且不溢位
func sumWeights(weights []int) (int, error) {
	if len(weights) == 0 {
		return 0, fmt.Errorf("sampler: empty weights")
	}
	total := 0
	for i, w := range weights {
		if w < 0 {
			return 0, fmt.Errorf("sampler: negative weight %d at %d", w, i)
		}
		if total > maxTotal-w {
			return 0, fmt.Errorf("sampler: total weight overflow")
		}
		total += w
	}
	if total == 0 {
		return 0, fmt.Errorf("sampler: all weights are zero")
	}
	return total, nil
}
