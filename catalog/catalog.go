// Package catalog 管理設定組目錄：game_id / game_name 對應到哪一個設定檔。
//
// 設定來源一律是平坦（無子目錄）的 fs.FS；同一份目錄內 id、名稱與檔名都必須唯一。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/vaultways/errs"
	"github.com/zintix-labs/vaultways/spec"
)

var (
	ErrDupID   = errs.NewFatal("duplicate game id")
	ErrDupName = errs.NewFatal("duplicate game name")
)

type Entry struct {
	GID        spec.GID
	Name       string
	ConfigName string
}

// Summary 對外列舉用的設定組摘要
type Summary struct {
	GID        spec.GID       `json:"gid"`
	Name       string         `json:"name"`
	Profile    spec.Profile   `json:"profile"`
	MaxWinMult int            `json:"max_win_mult"`
	BetUnit    int            `json:"bet_unit"`
	BetModes   []spec.BetMode `json:"bet_modes"`
}

// NewSummary 由已檢查過的設定組產生摘要
func NewSummary(gs *spec.GameSetting) Summary {
	return Summary{
		GID:        gs.GameID,
		Name:       gs.GameName,
		Profile:    gs.Profile,
		MaxWinMult: gs.MaxWinMult,
		BetUnit:    gs.BetUnit,
		BetModes:   append([]spec.BetMode(nil), gs.BetModes...),
	}
}

type Catalog struct {
	byID   map[spec.GID]Entry
	byName map[string]Entry
	ids    []spec.GID
	files  map[string]struct{} // 已註冊的檔名
	src    *Sources
	frozen bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	src, err := NewSources(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:   map[spec.GID]Entry{},
		byName: map[string]Entry{},
		ids:    make([]spec.GID, 0, 16),
		files:  map[string]struct{}{},
		src:    src,
	}, nil
}

// Register 批次註冊：任何一筆不合法就整批不寫入
func (c *Catalog) Register(ents ...Entry) error {
	if c.frozen {
		return errs.NewWarn("can not register when catalog already frozen")
	}
	batchID := map[spec.GID]struct{}{}
	batchName := map[string]struct{}{}
	batchFile := map[string]struct{}{}
	for i := range ents {
		e := &ents[i]
		e.Name = normName(e.Name)
		if e.Name == "" {
			return errs.NewFatal("game name required")
		}
		if err := validFileName(e.ConfigName); err != nil {
			return err
		}
		if _, ok := c.src.index[e.ConfigName]; !ok {
			return errs.Fatalf("config file not found: %s", e.ConfigName)
		}
		if _, ok := c.byID[e.GID]; ok {
			return ErrDupID
		}
		if _, ok := batchID[e.GID]; ok {
			return ErrDupID
		}
		if _, ok := c.byName[e.Name]; ok {
			return ErrDupName
		}
		if _, ok := batchName[e.Name]; ok {
			return ErrDupName
		}
		_, used := c.files[e.ConfigName]
		_, dup := batchFile[e.ConfigName]
		if used || dup {
			return errs.Fatalf("duplicate config name: %s", e.ConfigName)
		}
		batchID[e.GID] = struct{}{}
		batchName[e.Name] = struct{}{}
		batchFile[e.ConfigName] = struct{}{}
	}
	for _, e := range ents {
		c.files[e.ConfigName] = struct{}{}
		c.byID[e.GID] = e
		c.byName[e.Name] = e
		c.ids = append(c.ids, e.GID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

func (c *Catalog) GetByID(id spec.GID) (Entry, bool) {
	e, ok := c.byID[id]
	return e, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	e, ok := c.byName[normName(name)]
	return e, ok
}

func (c *Catalog) IDs() []spec.GID {
	if len(c.ids) == 0 {
		return nil
	}
	return append([]spec.GID(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Catalog) Sources() *Sources {
	return c.src
}

func (c *Catalog) Freeze() {
	c.frozen = true
}

func (c *Catalog) IsFrozen() bool {
	return c.frozen
}

// GameSettingById 讀取並完整檢查設定；每次呼叫都回傳新的 GameSetting
func (c *Catalog) GameSettingById(id spec.GID) (*spec.GameSetting, error) {
	e, ok := c.GetByID(id)
	if !ok {
		return nil, errs.Warnf("game id %d does not exist in catalog", id)
	}
	return c.load(e)
}

func (c *Catalog) GameSettingByName(name string) (*spec.GameSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.Warnf("game name %q does not exist in catalog", name)
	}
	return c.load(e)
}

func (c *Catalog) load(e Entry) (*spec.GameSetting, error) {
	src, ok := c.src.FS(e.ConfigName)
	if !ok {
		return nil, errs.NewWarn("file name does not exist in catalog")
	}
	raw, err := fs.ReadFile(src, e.ConfigName)
	if err != nil {
		return nil, errs.WrapKind(err, errs.KindConfiguration, "catalog read file error")
	}
	gs, err := ParseGameSetting(e.ConfigName, raw)
	if err != nil {
		return nil, err
	}
	if gs.GameID != e.GID || normName(gs.GameName) != e.Name {
		return nil, errs.Configurationf("%s declares %d/%s, registered as %d/%s", e.ConfigName, gs.GameID, gs.GameName, e.GID, e.Name)
	}
	return gs, nil
}

// ParseGameSetting 依副檔名選擇 YAML 或 JSON 解析
func ParseGameSetting(filename string, raw []byte) (*spec.GameSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return spec.GetGameSettingByYAML(raw)
	case ".json":
		return spec.GetGameSettingByJSON(raw)
	default:
		return nil, errs.Configurationf("unsupported config format: %q", filename)
	}
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isConfigFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".json")
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewFatal("empty config filename")
	}
	// 只接受 basename
	if strings.ContainsAny(file, `/\:`) {
		return errs.Fatalf("invalid config filename: %q (must be a basename)", file)
	}
	if !isConfigFile(file) {
		return errs.Fatalf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Fatalf("invalid config filename: %q (cannot start with '.')", file)
	}
	return nil
}

// Sources 多個設定來源合併後的檔名索引
type Sources struct {
	src   []fs.FS
	index map[string]int // 檔名 -> src 位置
}

// NewSources 立即建立索引：有子目錄或跨來源重複檔名直接失敗
func NewSources(src ...fs.FS) (*Sources, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	s := &Sources{src: src, index: make(map[string]int, 16)}
	for i, f := range src {
		if f == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
		err := fs.WalkDir(f, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}
			if !isConfigFile(path) || strings.HasPrefix(path, ".") {
				return nil
			}
			if prev, ok := s.index[path]; ok {
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			s.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sources) FS(name string) (fs.FS, bool) {
	if i, ok := s.index[name]; ok {
		return s.src[i], true
	}
	return nil, false
}

// Names 依字母排序的設定檔名
func (s *Sources) Names() []string {
	out := make([]string, 0, len(s.index))
	for n := range s.index {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (s *Sources) Len() int {
	return len(s.index)
}

// String 除錯用
func (e Entry) String() string {
	return fmt.Sprintf("%d:%s(%s)", e.GID, e.Name, e.ConfigName)
}
