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

// The PCG algorithm is designed by Melissa O'Neill.
// Portions of the bounded random generation logic (below) are
// adapted from the Go standard library (math/rand), which is
// licensed under the BSD 3-Clause License.

package core

import (
	"math/bits"
	"math/rand/v2"
)

// 黃金比例常數，splitmix64 的步進值
const golden = 0x9e3779b97f4a7c15

// PCG64 以 math/rand/v2 的 PCG (128-bit state) 為底
type PCG64 struct {
	src rand.PCG
}

// NewPCG64WithSeed 以 splitmix64 把 int64 seed 展開成兩組 state
func NewPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ golden
	p := &PCG64{}
	p.src.Seed(splitmix64(x), splitmix64(x^0xDA942042E4DD58B5))
	return p
}

func (p *PCG64) Uint64() uint64 { return p.src.Uint64() }

// UintN n == 0 時回傳 0
func (p *PCG64) UintN(n uint) uint {
	if n == 0 {
		return 0
	}
	return uint(p.below(uint64(n)))
}

// IntN n <= 0 時回傳 -1
func (p *PCG64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return int(p.below(uint64(n)))
}

func (p *PCG64) Snapshot() ([]byte, error) { return p.src.MarshalBinary() }

func (p *PCG64) Restore(b []byte) error { return p.src.UnmarshalBinary(b) }

func splitmix64(x uint64) uint64 {
	x += golden
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// below 回傳 [0,n) 的無偏亂數：取乘積高位，低位落在偏差區時重抽 (Lemire)
func (p *PCG64) below(n uint64) uint64 {
	if n&(n-1) == 0 {
		return p.Uint64() & (n - 1)
	}
	hi, lo := bits.Mul64(p.Uint64(), n)
	if lo >= n {
		return hi
	}
	for reject := -n % n; lo < reject; {
		hi, lo = bits.Mul64(p.Uint64(), n)
	}
	return hi
}
