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

import (
	"github.com/zintix-labs/vaultways/errs"
)

// SymbolKind 圖標類別
type SymbolKind int

const (
	KindNone SymbolKind = iota
	KindPremium
	KindLow
	KindWild
	KindScatter
	KindCollector
)

var symbolKindMap = map[string]SymbolKind{
	"premium":   KindPremium,
	"low":       KindLow,
	"wild":      KindWild,
	"scatter":   KindScatter,
	"collector": KindCollector,
}

func (k SymbolKind) String() string {
	for s, v := range symbolKindMap {
		if v == k {
			return s
		}
	}
	return "none"
}

// Paying 只有高分與低分圖標會以自身名義派彩
func (k SymbolKind) Paying() bool {
	return k == KindPremium || k == KindLow
}

// SymbolDef 設定檔中的單一圖標。
//
// Pays 以「連線軸數 - 1」為索引，單位為 bet_unit（100 = 1 倍押注）。
type SymbolDef struct {
	Name    string     `yaml:"name"  json:"name"`
	KindStr string     `yaml:"kind"  json:"kind"`
	Pays    []int      `yaml:"pays"  json:"pays"`
	Kind    SymbolKind `yaml:"-"     json:"-"`
}

// SymbolTable 由 symbols 清單展開的查詢表；圖標 id 即清單中的位置。
type SymbolTable struct {
	Defs      []SymbolDef
	Kinds     []SymbolKind
	PayFlat   []int // id*cols + (count-1)
	Cols      int
	Wild      int16
	Scatter   int16
	Collector int16
	Top       int16
	Paying    []int16 // 依 id 遞增
	byName    map[string]int16
}

// ID 依名稱查 id
func (st *SymbolTable) ID(name string) (int16, bool) {
	id, ok := st.byName[name]
	return id, ok
}

// Name 依 id 查名稱，越界回傳 "?"
func (st *SymbolTable) Name(id int16) string {
	if id < 0 || int(id) >= len(st.Defs) {
		return "?"
	}
	return st.Defs[id].Name
}

// Pay 回傳 id 在 count 軸連線時的賠率；count 不在 1..cols 範圍回傳 0
func (st *SymbolTable) Pay(id int16, count int) int {
	if count < 1 || count > st.Cols {
		return 0
	}
	return st.PayFlat[int(id)*st.Cols+count-1]
}

// Len 圖標數量
func (st *SymbolTable) Len() int {
	return len(st.Defs)
}

// NewSymbolTable 由 symbols 清單建立查詢表並檢查圖標規則
func NewSymbolTable(defs []SymbolDef, cols int, top string) (*SymbolTable, error) {
	if len(defs) == 0 {
		return nil, errs.Configuration("symbols is empty")
	}
	st := &SymbolTable{
		Defs:      defs,
		Kinds:     make([]SymbolKind, len(defs)),
		PayFlat:   make([]int, len(defs)*cols),
		Cols:      cols,
		Wild:      -1,
		Scatter:   -1,
		Collector: -1,
		Top:       -1,
		byName:    make(map[string]int16, len(defs)),
	}
	for i := range defs {
		d := &defs[i]
		id := int16(i)
		if d.Name == "" {
			return nil, errs.Configurationf("symbol #%d has empty name", i)
		}
		if _, dup := st.byName[d.Name]; dup {
			return nil, errs.Configurationf("duplicate symbol %s", d.Name)
		}
		st.byName[d.Name] = id
		k, ok := symbolKindMap[d.KindStr]
		if !ok {
			return nil, errs.Configurationf("symbol %s has unknown kind %q", d.Name, d.KindStr)
		}
		d.Kind = k
		st.Kinds[i] = k

		switch k {
		case KindWild:
			if st.Wild >= 0 {
				return nil, errs.Configuration("more than one wild symbol")
			}
			st.Wild = id
		case KindScatter:
			if st.Scatter >= 0 {
				return nil, errs.Configuration("more than one scatter symbol")
			}
			st.Scatter = id
		case KindCollector:
			if st.Collector >= 0 {
				return nil, errs.Configuration("more than one collector symbol")
			}
			st.Collector = id
		default:
			st.Paying = append(st.Paying, id)
		}

		if k.Paying() {
			if len(d.Pays) != cols {
				return nil, errs.Configurationf("symbol %s: pays length %d, want %d", d.Name, len(d.Pays), cols)
			}
		} else if len(d.Pays) != 0 {
			return nil, errs.Configurationf("symbol %s (%s) must not carry pays", d.Name, k)
		}
		for c, v := range d.Pays {
			if v < 0 {
				return nil, errs.Configurationf("symbol %s: negative pay at count %d", d.Name, c+1)
			}
			if c < 2 && v != 0 {
				return nil, errs.Configurationf("symbol %s: count %d must not pay", d.Name, c+1)
			}
			st.PayFlat[i*cols+c] = v
		}
	}
	if st.Wild < 0 || st.Scatter < 0 || st.Collector < 0 {
		return nil, errs.Configuration("wild, scatter and collector symbols are all required")
	}
	if len(st.Paying) == 0 {
		return nil, errs.Configuration("no paying symbol")
	}

	tid, ok := st.byName[top]
	if !ok {
		return nil, errs.Configurationf("top_symbol %q unknown", top)
	}
	if st.Kinds[tid] != KindPremium {
		return nil, errs.Configurationf("top_symbol %s must be premium", top)
	}
	for _, id := range st.Paying {
		if id != tid && st.Pay(id, cols) >= st.Pay(tid, cols) {
			return nil, errs.Configurationf("top_symbol %s must out-pay %s", top, st.Name(id))
		}
	}
	st.Top = tid
	return st, nil
}
