package layout

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Jumbo125/Searchlist-Converter/table"
)

// stubMetrics 是测试用的确定性测量器：每个字符 10px 宽，行高固定 20px，
// 与字号无关。避免在布局测试里引入真实字体。
type stubMetrics struct{}

func (stubMetrics) Measure(text string, _ FontSpec) (int, int) {
	return 10 * utf8.RuneCountInString(text), 20
}

// scaledMetrics 让宽度随字号缩放，用于表头收缩测试。
type scaledMetrics struct{}

func (scaledMetrics) Measure(text string, font FontSpec) (int, int) {
	return font.SizePt * utf8.RuneCountInString(text), font.SizePt
}

// stubHyphen 返回预置的断点表。
type stubHyphen map[string][]int

func (h stubHyphen) BreakPoints(word, _ string) []int { return h[word] }

func mustGrid(t *testing.T, rows [][]string) *table.Grid {
	t.Helper()
	g, err := table.New(rows)
	if err != nil {
		t.Fatalf("构建表格失败: %v", err)
	}
	return g
}

func mustBuild(t *testing.T, g *table.Grid, cfg Config, m Metrics) *Plan {
	t.Helper()
	plan, err := Build(g, cfg, BuildOptions{Metrics: m})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return plan
}

func TestBuildRejectsMissingInput(t *testing.T) {
	if _, err := Build(nil, Config{}, BuildOptions{Metrics: stubMetrics{}}); err == nil {
		t.Fatal("空表格应当报错")
	}
	g := mustGrid(t, [][]string{{"A", "B"}, {"1", "2"}})
	if _, err := Build(g, Config{}, BuildOptions{}); err == nil {
		t.Fatal("缺少测量器应当报错")
	}
}

// TestBuildDeterministic 同一输入两次布局必须产出完全相同的 Plan。
func TestBuildDeterministic(t *testing.T) {
	rows := [][]string{{"ID", "Search", "Hits"}}
	for i := 1; i <= 40; i++ {
		rows = append(rows, []string{fmt.Sprintf("#%d", i), `("cancer" OR "tumor") AND screening`, "123"})
	}
	g := mustGrid(t, rows)
	a := mustBuild(t, g, DefaultConfig(), stubMetrics{})
	b := mustBuild(t, g, DefaultConfig(), stubMetrics{})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("两次布局结果不一致")
	}
}

// TestColumnWidthsFillPlacement 宽度规划：列宽总和等于可用宽度，
// 且每列不低于下限。
func TestColumnWidthsFillPlacement(t *testing.T) {
	rows := [][]string{
		{"ID", "Search", "Hits"},
		{"#1", `("cancer" OR "tumor") AND screening`, "100"},
		{"#2", `(ab OR cd) AND ("x" OR "y") NOT z`, "52"},
	}
	g := mustGrid(t, rows)
	plan := mustBuild(t, g, DefaultConfig(), stubMetrics{})

	placeW := plan.PageWidthPx - 2*plan.MarginPx
	sum := 0
	for _, w := range plan.ColumnWidths {
		sum += w
	}
	if sum != placeW {
		t.Fatalf("列宽总和 %d != 可用宽度 %d", sum, placeW)
	}
	floor := 3*10 + 2*plan.PadX
	for j, w := range plan.ColumnWidths {
		if w < floor {
			t.Fatalf("第 %d 列宽度 %d 低于下限 %d", j, w, floor)
		}
	}
	if !plan.QueryColumns[1] {
		t.Fatal("Search 列应被识别为检索式列")
	}
	if plan.QueryColumns[0] || plan.QueryColumns[2] {
		t.Fatalf("ID/Hits 列不应是检索式列: %v", plan.QueryColumns)
	}
}

// TestPaginationInvariants 分页：每页内容高度不超过版心，
// 所有行恰好覆盖一次且顺序不变，斑马条纹按行号奇偶。
func TestPaginationInvariants(t *testing.T) {
	rows := [][]string{{"ID", "Search", "Hits"}}
	for i := 1; i <= 120; i++ {
		rows = append(rows, []string{fmt.Sprintf("#%d", i), "short query", "9"})
	}
	g := mustGrid(t, rows)
	plan := mustBuild(t, g, DefaultConfig(), stubMetrics{})

	if len(plan.Pages) < 2 {
		t.Fatalf("120 行应当分页，实际 %d 页", len(plan.Pages))
	}
	placeH := plan.PageHeightPx - 2*plan.MarginPx
	budget := placeH - plan.BandHeightPx - plan.Header.HeightPx

	var seen []int
	for _, page := range plan.Pages {
		used := 0
		for _, sl := range page.Slices {
			used += sl.HeightPx
			if sl.Part != 0 {
				t.Fatalf("单行高度未超页，不应出现切片 Part=%d", sl.Part)
			}
			if sl.Zebra != (sl.Row%2 == 0) {
				t.Fatalf("第 %d 行斑马条纹奇偶错误", sl.Row)
			}
			seen = append(seen, sl.Row)
		}
		if used > budget {
			t.Fatalf("第 %d 页内容高度 %d 超过版心 %d", page.Index, used, budget)
		}
	}
	if len(seen) != len(g.Rows) {
		t.Fatalf("期望覆盖 %d 行，实际 %d", len(g.Rows), len(seen))
	}
	for i, r := range seen {
		if r != i {
			t.Fatalf("行顺序错乱: 位置 %d 出现行 %d", i, r)
		}
	}
}

// TestRowSlicing 单行高度超过一页时按行窗口切片续页，
// 切片拼起来等于整行的折行结果。
func TestRowSlicing(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("wort ", 6000))
	g := mustGrid(t, [][]string{{"ID", "Search"}, {"#1", long}})
	plan := mustBuild(t, g, DefaultConfig(), stubMetrics{})

	var parts []RowSlice
	for _, page := range plan.Pages {
		for _, sl := range page.Slices {
			if sl.Row == 0 {
				parts = append(parts, sl)
			}
		}
	}
	if len(parts) < 2 {
		t.Fatalf("超高行应当被切片，实际 %d 片", len(parts))
	}
	for i, sl := range parts {
		if sl.Part != i {
			t.Fatalf("切片序号应连续: 第 %d 片 Part=%d", i, sl.Part)
		}
		if sl.Zebra != parts[0].Zebra {
			t.Fatal("同一行的所有切片斑马条纹必须一致")
		}
	}

	inner := plan.ColumnWidths[1] - 2*plan.PadX
	want := wrapText(stubMetrics{}, plan.BodyFont, long, inner, DefaultConfig().BodyChunk, nil, "")
	var got []string
	for _, sl := range parts {
		got = append(got, sl.Lines[1]...)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("切片行拼接结果与整行折行不一致: %d vs %d 行", len(got), len(want))
	}
}

// TestHeaderShrink 表头碎片放不下时逐步缩小表头字号，直到放下或到达下限。
func TestHeaderShrink(t *testing.T) {
	rows := make([][]string, 2)
	rows[0] = make([]string, 14)
	rows[1] = make([]string, 14)
	for j := range rows[0] {
		rows[0][j] = "AAAAA"
		rows[1][j] = "x"
	}
	g := mustGrid(t, rows)
	plan := mustBuild(t, g, DefaultConfig(), scaledMetrics{})

	if plan.HeaderFont.SizePt >= DefaultConfig().BodySizePt+DefaultConfig().HeaderOffsetPt {
		t.Fatalf("表头字号应当缩小，实际 %dpt", plan.HeaderFont.SizePt)
	}
	if plan.HeaderFont.SizePt < DefaultConfig().MinHeaderPt {
		t.Fatalf("表头字号 %dpt 低于下限", plan.HeaderFont.SizePt)
	}
	if plan.Overflow {
		t.Fatal("缩小后放得下，不应标记溢出")
	}
}

// TestOverflowFlag 下限宽度之和超过版心时置位 Overflow 而不是报错。
func TestOverflowFlag(t *testing.T) {
	rows := make([][]string, 2)
	rows[0] = make([]string, 30)
	rows[1] = make([]string, 30)
	for j := range rows[0] {
		rows[0][j] = "AAAAA"
		rows[1][j] = "x"
	}
	g := mustGrid(t, rows)
	plan := mustBuild(t, g, DefaultConfig(), scaledMetrics{})
	if !plan.Overflow {
		t.Fatal("30 列下限宽度必然超过 A4 版心，应当标记 Overflow")
	}
}

// TestFixedHeaderSize 显式表头字号不参与收缩。
func TestFixedHeaderSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HeaderSizePt = 30
	g := mustGrid(t, [][]string{{"A", "B"}, {"1", "2"}})
	plan := mustBuild(t, g, cfg, stubMetrics{})
	if plan.HeaderFont.SizePt != 30 {
		t.Fatalf("固定表头字号期望 30pt，实际 %dpt", plan.HeaderFont.SizePt)
	}
}

// TestHyphenLangAuto 自动模式只看表头：表头含德语变音符号选德语，否则英语，
// 正文内容不参与判断。
func TestHyphenLangAuto(t *testing.T) {
	de := mustGrid(t, [][]string{{"Suchwörter"}, {"cancer AND screening"}})
	if got := hyphenLang("auto", de); got != "de" {
		t.Fatalf("期望 de，实际 %q", got)
	}
	en := mustGrid(t, [][]string{{"Search"}, {"Ernährung AND Prävention"}})
	if got := hyphenLang("auto", en); got != "en" {
		t.Fatalf("德语正文不应影响判断，期望 en，实际 %q", got)
	}
	if got := hyphenLang("off", en); got != "" {
		t.Fatalf("off 模式应返回空语言，实际 %q", got)
	}
	if got := hyphenLang("de", en); got != "de" {
		t.Fatalf("显式语言代码应原样返回，实际 %q", got)
	}
}
