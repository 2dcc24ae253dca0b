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

package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	for in, want := range map[string]LogMode{"": ModeDev, "PROD": ModeProd, "silent": ModeSilence} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %v err %v", in, got, err)
		}
	}
	if _, err := ParseMode("loud"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAsyncWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "svr.log")
	log, ah := NewAsyncWithFile(16, ModeProd, FileSink{Path: path, MaxSizeMB: 1})
	log.Info("round settled", "round_id", "r-1")
	ah.Close()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), `"round_id":"r-1"`) {
		t.Fatalf("missing record: %s", raw)
	}
	log.Info("after close")
	if ah.Dropped() != 1 {
		t.Fatalf("dropped = %d", ah.Dropped())
	}
}
