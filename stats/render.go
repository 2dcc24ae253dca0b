package stats

import (
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/zintix-labs/vaultways/errs"
	"gopkg.in/yaml.v3"
)

// 報表輸出格式
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Render 把 StatReport / EstimatorPlayers 以 json 或 yaml 寫出
func Render(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return writeYAML(w, v)
	default:
		return errs.Warnf("unknown report format %q", format)
	}
}

// writeYAML 最內層的一維陣列改用 flow style（[a, b, c]），外層維度維持展開
func writeYAML(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	flowInnerSeqs(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func flowInnerSeqs(n *yaml.Node) {
	if n == nil {
		return
	}
	inner := n.Kind == yaml.SequenceNode
	for _, c := range n.Content {
		if c != nil && c.Kind == yaml.SequenceNode {
			inner = false
		}
		flowInnerSeqs(c)
	}
	if inner {
		n.Style = yaml.FlowStyle
	}
}
