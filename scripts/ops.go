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

// ops 本機維運工作：go run ./scripts <task>
//
//	test       go test ./... -cover -count=1，只留 ok / FAIL 行
//	test-race  同上並開 -race
//	rtp        以固定 seed 對每個內建設定跑一次大量模擬
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const (
	green  = "\033[1;32m"
	red    = "\033[1;31m"
	yellow = "\033[1;33m"
	reset  = "\033[0m"
)

// rtp 任務的目標：遊戲 id 與押注模式
var rtpTargets = [][2]string{
	{"1001", "normal"},
	{"1002", "normal"},
	{"1002", "bonus_buy"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts [test|test-race|rtp]")
		os.Exit(1)
	}
	var err error
	switch task := os.Args[1]; task {
	case "test":
		err = goTest()
	case "test-race":
		err = goTest("-race")
	case "rtp":
		err = rtp()
	default:
		color(yellow, "unknown task: "+task)
		os.Exit(1)
	}
	if err != nil {
		color(red, err.Error())
		os.Exit(1)
	}
}

func color(c, msg string) {
	fmt.Println(c + msg + reset)
}

// goTest 清掉測試快取後執行，逐行過濾輸出
func goTest(extra ...string) error {
	color(green, "running tests")
	_ = exec.Command("go", "clean", "-testcache").Run()

	args := append([]string{"test", "./...", "-cover", "-count=1"}, extra...)
	cmd := exec.Command("go", args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "ok"):
			color(green, line)
		case strings.HasPrefix(line, "FAIL"), strings.HasPrefix(line, "---"):
			color(red, line)
		}
	}
	return cmd.Wait()
}

func rtp() error {
	for _, t := range rtpTargets {
		color(green, fmt.Sprintf("game %s mode %s", t[0], t[1]))
		cmd := exec.Command("go", "run", "./cmd/run", "-game", t[0], "-mode", t[1], "-spins", "500000", "-worker", "8", "-seed", "20251018")
		cmd.Stdout, cmd.Stderr = os.Stdout, os.Stderr
		if err := cmd.Run(); err != nil {
			return err
		}
	}
	return nil
}
