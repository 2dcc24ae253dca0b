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
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/vaultways/dto"
	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
	"golang.org/x/sync/errgroup"
)

// SlotRuntime 執行階段：每個設定組一個機台池，依 game id 路由
type SlotRuntime struct {
	vw     *Vaultways
	ids    []spec.GID
	pools  map[spec.GID]*MachinePool
	once   sync.Once
	reason atomic.Pointer[string] // nil 表示仍在服務
}

// newSlotRuntime 並行建立各設定組的機台池，任一失敗即整體失敗
func newSlotRuntime(v *Vaultways, ids []spec.GID, poolSize int) (*SlotRuntime, error) {
	seeds := make([]int64, len(ids))
	for i := range seeds {
		s, err := CryptoSeed()
		if err != nil {
			return nil, err
		}
		seeds[i] = s
	}
	built := make([]*MachinePool, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() (err error) {
			gs, err := v.cat.GameSettingById(id)
			if err != nil {
				return err
			}
			built[i], err = newMachinePool(poolSize, gs, v.cf, seeds[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	rt := &SlotRuntime{vw: v, ids: ids, pools: make(map[spec.GID]*MachinePool, len(ids))}
	for i, id := range ids {
		rt.pools[id] = built[i]
	}
	return rt, nil
}

// Spin 以 GameId 路由；GameId 為 0 時改用 GameName 查找
func (rt *SlotRuntime) Spin(ctx context.Context, req *dto.SpinRequest) (dto.RoundResult, []uint64, error) {
	if err := ctx.Err(); err != nil {
		return dto.RoundResult{}, nil, errs.NewWarn("spin canceled/timeout: " + err.Error())
	}
	if rt.Closed() {
		return dto.RoundResult{}, nil, errs.NewFatal("slot runtime closed: " + rt.ClosedReason())
	}
	if req == nil {
		return dto.RoundResult{}, nil, errs.NewWarn("nil spin request")
	}
	mp, err := rt.route(req)
	if err != nil {
		return dto.RoundResult{}, nil, err
	}
	return mp.Spin(ctx, req)
}

func (rt *SlotRuntime) route(req *dto.SpinRequest) (*MachinePool, error) {
	gid := req.GameId
	if gid == 0 && req.GameName != "" {
		ent, ok := rt.vw.EntryByName(req.GameName)
		if !ok {
			return nil, errs.Warnf("game name %q not found", req.GameName)
		}
		gid = ent.GID
	}
	if mp, ok := rt.pools[gid]; ok {
		return mp, nil
	}
	return nil, errs.Warnf("game id %d not found", gid)
}

// Replay 不經過機台池，回放用一次性的腳本亂數流
func (rt *SlotRuntime) Replay(req *dto.ReplayRequest) (dto.RoundResult, error) {
	return rt.vw.Replay(req)
}

// Pools 依 id 順序列出機台池
func (rt *SlotRuntime) Pools() []*MachinePool {
	out := make([]*MachinePool, len(rt.ids))
	for i, id := range rt.ids {
		out[i] = rt.pools[id]
	}
	return out
}

func (rt *SlotRuntime) Vaultways() *Vaultways { return rt.vw }

// Close 可重複呼叫，所有機台池一併關閉
func (rt *SlotRuntime) Close() { rt.closeWithReason("closed") }

func (rt *SlotRuntime) closeWithReason(reason string) {
	rt.once.Do(func() {
		rt.reason.Store(&reason)
		for _, mp := range rt.pools {
			mp.closeWithReason(reason)
		}
	})
}

func (rt *SlotRuntime) Closed() bool { return rt.reason.Load() != nil }

func (rt *SlotRuntime) ClosedReason() string {
	if r := rt.reason.Load(); r != nil {
		return *r
	}
	return ""
}
