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

// Package perf 為模擬 CLI 包上 pprof：cpu 全程取樣，heap/allocs 在結束後寫快照。
//
// 產出的 cpu.pprof 也可直接拿來做 PGO：
//
//	go run ./cmd/run -p cpu && cp build/profiling/cpu.pprof default.pgo
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/vaultways/errs"
)

// DefaultDir pprof 輸出目錄
const DefaultDir = "build/profiling"

// Run 依 mode 執行 exe：""|cpu|heap|allocs。未知的 mode 視為不取樣。
func Run(dir, mode string, exe func() error) error {
	if mode == "" {
		return exe()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create pprof dir")
	}
	switch mode {
	case "cpu":
		return cpu(filepath.Join(dir, "cpu.pprof"), exe)
	case "heap", "allocs":
		if err := exe(); err != nil {
			return err
		}
		return snapshot(filepath.Join(dir, mode+".pprof"), mode)
	default:
		return exe()
	}
}

func cpu(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create cpu profile")
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot heap 快照前先 GC，讓 in-use 視圖貼近存活物件；allocs 為累積配置
func snapshot(path, name string) error {
	if name == "heap" {
		runtime.GC()
	}
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+name+" profile")
	}
	defer f.Close()
	prof := pprof.Lookup(name)
	if prof == nil {
		return errs.Warnf("unknown profile %q", name)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+name+" profile")
	}
	return nil
}
