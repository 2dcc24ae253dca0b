package stats

import (
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/vaultways/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 遊戲統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Feature *FeatureReport `json:"Feature,omitzero"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

// SummaryReport 基本統計。
//
// BetUnit 為 1 倍押注的整數單位（bet_unit * bet_mult）；Cost 為每局實際付出的押注倍數（購買為 100）。
type SummaryReport struct {
	GameName    string   `json:"GameName"`
	GameId      spec.GID `json:"GameId"`
	Profile     string   `json:"Profile"`
	BetMode     string   `json:"BetMode"`
	BetUnit     int      `json:"BetUnit"`
	BetMult     int      `json:"BetMult"`
	Cost        int      `json:"Cost"`
	TotalBet    int      `json:"TotalBet"`
	TotalWin    int      `json:"TotalWin"`
	BaseWin     int      `json:"BaseWin"`
	FreeWin     int      `json:"FreeWin"`
	RTP         float64  `json:"RTP"`
	RtpCI       CI       `json:"RtpCI"`
	Std         float64  `json:"Std"`
	Cv          float64  `json:"Cv"`
	Trigger     int      `json:"Trigger"`
	TriggerRate float64  `json:"TriggerRate"`
	NoWinRounds int      `json:"NoWinRounds"`
	HitRate     float64  `json:"HitRate"`
	CapHits     int      `json:"CapHits"`
	Voids       int      `json:"Voids"`
	MaxWin      int      `json:"MaxWin"`
	MaxWinMult  float64  `json:"MaxWinMult"`
	Rounds      int      `json:"Rounds"`
}

// MultReport 贏倍統計（以每局實際押注為 1）
//
// 紀錄時不紀錄，避免轉型成本。紀錄完成後Done()會將結果整理填入
type MultReport struct {
	TotalWinMult      float64 `json:"TotalWinMult"`
	BaseWinMult       float64 `json:"BaseWinMult"`
	FreeWinMult       float64 `json:"FreeWinMult"`
	TotalWinMultSqSum float64 `json:"TotalWinMultSqSum"` // 平方和
	BaseWinMultSqSum  float64 `json:"BaseWinMultSqSum"`  // 平方和
	FreeWinMultSqSum  float64 `json:"FreeWinMultSqSum"`  // 平方和
}

// DistReport 分數區間落點統計
type DistReport struct {
	WinBucket       []string  `json:"WinBucket"`
	TotalWinCollect []int     `json:"TotalWinCollect"`
	BaseWinCollect  []int     `json:"BaseWinCollect"`
	FreeWinCollect  []int     `json:"FreeWinCollect"`
	TotalWinDist    []float64 `json:"TotalWinDist"`
	BaseWinDist     []float64 `json:"BaseWinDist"`
	FreeWinDist     []float64 `json:"FreeWinDist"`
}

// FeatureReport 免費遊戲統計
type FeatureReport struct {
	Sessions       int            `json:"Sessions"`
	FreeSpins      int            `json:"FreeSpins"`
	Retriggers     int            `json:"Retriggers"`
	AvgFreeSpins   float64        `json:"AvgFreeSpins"`
	AvgSessionMult float64        `json:"AvgSessionMult"` // 每場免費遊戲平均贏倍（1 倍押注）
	ThresholdHits  map[string]int `json:"ThresholdHits"`  // 轉換目標 -> 達成場數
}

// PlayerReport 玩家統計
//
// 需使用PlayerRecord 才會統計
type PlayerReport struct {
	InitBalance int  `json:"InitBalance"`
	Balance     int  `json:"Balance"`
	MaxBalance  int  `json:"MaxBalance"`
	MinBalance  int  `json:"MinBalance"`
	Bust        bool `json:"Bust"`
	Cashout     bool `json:"Cashout"`
	Alive       bool `json:"Alive"`
}

// Done 把累積的整數計數換算成比例與統計量；重複呼叫無作用。
//
// 紀錄過程只累加 int，所有浮點運算集中在這裡做一次
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	sm := s.Summary
	sm.RTP, sm.Std = s.Rtp(), s.Std()
	sm.Cv, sm.RtpCI = s.Cv(), s.Ci()
	sm.TriggerRate = ratio(sm.Trigger, sm.Rounds)
	if sm.Rounds > 0 {
		sm.HitRate = 1 - ratio(sm.NoWinRounds, sm.Rounds)
	}
	sm.MaxWinMult = ratio(sm.MaxWin, sm.BetUnit)
	if f := s.Feature; f != nil && f.Sessions > 0 {
		f.AvgFreeSpins = ratio(f.FreeSpins, f.Sessions)
		f.AvgSessionMult = ratio(sm.FreeWin, sm.BetUnit) / float64(f.Sessions)
	}
	if pl := s.Player; pl != nil {
		pl.Alive = !pl.Bust && !pl.Cashout
	}
	s.isDone = true
}

// Rtp 總贏分 / 總押注
func (s *StatReport) Rtp() float64 {
	return ratio(s.Summary.TotalWin, s.Summary.TotalBet)
}

// Std 單局贏倍的樣本標準差
func (s *StatReport) Std() float64 {
	n := float64(s.Summary.Rounds)
	if n < 2 || s.Summary.BetUnit == 0 {
		return 0
	}
	sum := s.Mult.TotalWinMult
	return math.Sqrt(max(0, (s.Mult.TotalWinMultSqSum-sum*sum/n)/(n-1)))
}

// Cv 變異係數
func (s *StatReport) Cv() float64 {
	if rtp := s.Rtp(); rtp > 0 {
		return s.Std() / rtp
	}
	return 0
}

// Ci RTP 的 95% 常態近似信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	if s.Summary.Rounds < 2 {
		return CI{Lo: rtp, Hi: rtp}
	}
	half := 1.96 * s.Std() / math.Sqrt(float64(s.Summary.Rounds))
	return CI{Lo: max(rtp-half, 0), Hi: rtp + half}
}

// WriteAs 以 json 或 yaml 輸出完整報表
func (s *StatReport) WriteAs(w io.Writer, format string) error {
	s.Done()
	return Render(w, format, s)
}

// StdOut 以表格印出摘要與免費遊戲統計
func (s *StatReport) StdOut(used time.Duration) {
	s.WriteTable(os.Stdout, used)
}

func (s *StatReport) WriteTable(w io.Writer, used time.Duration) {
	s.Done()
	p := message.NewPrinter(lang)
	fmt.Fprintln(w, throughput(used, s.Summary.Rounds))
	fmt.Fprintln(w, table(s.Summary.GameName, s.summaryRows(p)))
	if s.Feature != nil && s.Feature.Sessions > 0 {
		fmt.Fprintln(w, table("Free Spins", s.featureRows(p)))
	}
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

func throughput(d time.Duration, spins int) string {
	d = d.Abs()
	sps := int(float64(spins) / max(d.Seconds(), 1e-9))
	return message.NewPrinter(lang).Sprintf("used: %s\nsps : %d spins/sec", d.Round(10*time.Millisecond), sps)
}

type tableRow struct{ k, v string }

func (s *StatReport) summaryRows(p *message.Printer) []tableRow {
	sm := s.Summary
	trig := "-"
	if sm.Trigger > 0 {
		trig = p.Sprintf("1 / %.1f", float64(sm.Rounds)/float64(sm.Trigger))
	}
	return []tableRow{
		{"Game Name", sm.GameName},
		{"Game ID", fmt.Sprint(sm.GameId)},
		{"Profile", sm.Profile},
		{"Bet Mode", p.Sprintf("%s (cost %dx)", sm.BetMode, sm.Cost)},
		{"Total Rounds", p.Sprintf("%d", sm.Rounds)},
		{"Total RTP", p.Sprintf("%.2f %%", 100*sm.RTP)},
		{"RTP 95% CI", p.Sprintf("[%.2f%%,%.2f%%]", 100*sm.RtpCI.Lo, 100*sm.RtpCI.Hi)},
		{"Total Bet", p.Sprintf("%d", sm.TotalBet)},
		{"Total Win", p.Sprintf("%d", sm.TotalWin)},
		{"Base Win", p.Sprintf("%d", sm.BaseWin)},
		{"Free Win", p.Sprintf("%d", sm.FreeWin)},
		{"NoWin Rounds", p.Sprintf("%d", sm.NoWinRounds)},
		{"Trigger", p.Sprintf("%d", sm.Trigger)},
		{"Trigger Freq", trig},
		{"Max Win", p.Sprintf("%.2fx", sm.MaxWinMult)},
		{"Cap Hits", p.Sprintf("%d", sm.CapHits)},
		{"Void Rounds", p.Sprintf("%d", sm.Voids)},
		{"STD", p.Sprintf("%.3f", sm.Std)},
		{"CV", p.Sprintf("%.3f", sm.Cv)},
	}
}

func (s *StatReport) featureRows(p *message.Printer) []tableRow {
	f := s.Feature
	rows := []tableRow{
		{"Sessions", p.Sprintf("%d", f.Sessions)},
		{"Free Spins", p.Sprintf("%d", f.FreeSpins)},
		{"Avg Spins", p.Sprintf("%.2f", f.AvgFreeSpins)},
		{"Retriggers", p.Sprintf("%d", f.Retriggers)},
		{"Avg Session Mult", p.Sprintf("%.2fx", f.AvgSessionMult)},
	}
	for _, n := range slices.Sorted(maps.Keys(f.ThresholdHits)) {
		hits := f.ThresholdHits[n]
		rows = append(rows, tableRow{"Upgrade " + n, p.Sprintf("%d (%.2f%%)", hits, 100*ratio(hits, f.Sessions))})
	}
	return rows
}

// table 兩欄框線表，寬度以 runewidth 計算以容納全形字
func table(title string, rows []tableRow) string {
	kw, vw := 0, 0
	for _, r := range rows {
		kw = max(kw, runewidth.StringWidth(r.k))
		vw = max(vw, runewidth.StringWidth(r.v))
	}
	inner := kw + vw + 5
	var b strings.Builder
	line := func(sep string) {
		b.WriteString("+" + strings.Repeat("-", kw+2) + sep + strings.Repeat("-", vw+2) + "+\n")
	}
	b.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	pad := max(inner-runewidth.StringWidth(title), 0)
	b.WriteString("|" + strings.Repeat(" ", pad/2) + title + strings.Repeat(" ", pad-pad/2) + "|\n")
	line("+")
	for _, r := range rows {
		b.WriteString("| " + runewidth.FillRight(r.k, kw) + " | " + runewidth.FillRight(r.v, vw) + " |\n")
	}
	line("+")
	return b.String()
}
