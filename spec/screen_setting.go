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

package spec

import "github.com/zintix-labs/vaultways/errs"

// ScreenSetting 描述盤面樣式的設定。
//
// 盤面以 row-major 攤平：index = row*Columns + col。
type ScreenSetting struct {
	Columns    int `yaml:"columns"   json:"columns"`
	Rows       int `yaml:"rows"      json:"rows"`
	ScreenSize int `yaml:"-"         json:"-"`
}

func (ss *ScreenSetting) init() error {
	if ss.Columns < 3 || ss.Rows <= 0 {
		return errs.Configurationf("invalid screen dimensions: cols=%d rows=%d", ss.Columns, ss.Rows)
	}
	ss.ScreenSize = ss.Rows * ss.Columns
	return nil
}

// Ways 滿盤可能的 ways 數（rows^cols）
func (ss *ScreenSetting) Ways() int {
	w := 1
	for i := 0; i < ss.Columns; i++ {
		w *= ss.Rows
	}
	return w
}
