package catalog_test

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/vaultways/catalog"
	"github.com/zintix-labs/vaultways/configs"
	"github.com/zintix-labs/vaultways/errs"
)

func TestRegisterAndLoad(t *testing.T) {
	c, err := catalog.New(configs.FS)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Sources().Names(); len(got) != 2 || got[0] != "vault_extreme.yaml" {
		t.Fatalf("names = %v", got)
	}
	err = c.Register(
		catalog.Entry{GID: 1001, Name: " Vault_Standard ", ConfigName: "vault_standard.yaml"},
		catalog.Entry{GID: 1002, Name: "vault_extreme", ConfigName: "vault_extreme.yaml"},
	)
	if err != nil {
		t.Fatal(err)
	}
	if ids := c.IDs(); len(ids) != 2 || ids[0] != 1001 {
		t.Fatalf("ids = %v", ids)
	}
	gs, err := c.GameSettingByName("VAULT_STANDARD")
	if err != nil {
		t.Fatal(err)
	}
	if gs.MaxWinMult != 10000 {
		t.Fatalf("max win = %d", gs.MaxWinMult)
	}
	s := catalog.NewSummary(gs)
	if s.GID != 1001 || s.Profile.TriggerFrequency != 8 || len(s.BetModes) != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if _, err := c.GameSettingById(9); err == nil {
		t.Fatal("unknown id should fail")
	}
	c.Freeze()
	if err := c.Register(catalog.Entry{GID: 3, Name: "x", ConfigName: "vault_standard.yaml"}); err == nil {
		t.Fatal("frozen catalog accepted a register")
	}
}

func TestRegisterRejects(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("game_name: a")},
		"b.json": {Data: []byte("{}")},
	}
	cases := []struct {
		name string
		ents []catalog.Entry
	}{
		{"missing file", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "c.yaml"}}},
		{"path in name", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "x/a.yaml"}}},
		{"bad ext", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "a.txt"}}},
		{"dup id", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "a.yaml"}, {GID: 1, Name: "b", ConfigName: "b.json"}}},
		{"dup name", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "a.yaml"}, {GID: 2, Name: " A", ConfigName: "b.json"}}},
		{"dup file", []catalog.Entry{{GID: 1, Name: "a", ConfigName: "a.yaml"}, {GID: 2, Name: "b", ConfigName: "a.yaml"}}},
		{"empty name", []catalog.Entry{{GID: 1, Name: " ", ConfigName: "a.yaml"}}},
	}
	for _, cs := range cases {
		t.Run(cs.name, func(t *testing.T) {
			c, err := catalog.New(fsys)
			if err != nil {
				t.Fatal(err)
			}
			if err := c.Register(cs.ents...); err == nil {
				t.Fatal("want error")
			}
			if len(c.IDs()) != 0 {
				t.Fatal("failed batch must not register anything")
			}
		})
	}
}

func TestSourcesRejectNested(t *testing.T) {
	fsys := fstest.MapFS{"sub/a.yaml": {Data: []byte("x")}}
	if _, err := catalog.NewSources(fsys); err == nil {
		t.Fatal("nested config dir should fail")
	}
	a := fstest.MapFS{"a.yaml": {Data: []byte("x")}}
	if _, err := catalog.NewSources(a, a); err == nil {
		t.Fatal("duplicate file across sources should fail")
	}
}

func TestMismatchedDeclaration(t *testing.T) {
	c, err := catalog.New(configs.FS)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Register(catalog.Entry{GID: 5, Name: "vault_standard", ConfigName: "vault_standard.yaml"}); err != nil {
		t.Fatal(err)
	}
	_, err = c.GameSettingById(5)
	if errs.KindOf(err) != errs.KindConfiguration {
		t.Fatalf("want configuration error, got %v", err)
	}
}
