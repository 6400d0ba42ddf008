package table

import (
	"reflect"
	"strings"
	"testing"
)

// TestNormalize 验证清洗逻辑：空行被丢弃、短行补齐、首单元格 BOM 被去掉。
func TestNormalize(t *testing.T) {
	rows := [][]string{
		{"\uFEFFID", "Search", "Hits"},
		{"", "  ", ""},
		{"#1", "cancer"},
		nil,
		{"#2", "therapy", "42"},
	}
	got := Normalize(rows)
	want := [][]string{
		{"ID", "Search", "Hits"},
		{"#1", "cancer", ""},
		{"#2", "therapy", "42"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize 结果不符：got %v want %v", got, want)
	}
}

func TestNormalizeAllBlank(t *testing.T) {
	got := Normalize([][]string{{"", ""}, {"  "}})
	if got != nil {
		t.Fatalf("全空输入应返回 nil，实际 %v", got)
	}
}

func TestNewRejectsEmpty(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("空输入应报错")
	}
	if _, err := New([][]string{{" ", ""}}); err == nil {
		t.Fatal("只有空白行的输入应报错")
	}
}

func TestNewBuildsGrid(t *testing.T) {
	g, err := New([][]string{
		{"A", "B"},
		{"1", "2"},
		{"3", "4"},
	})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if g.ColumnCount() != 2 {
		t.Fatalf("列数应为 2，实际 %d", g.ColumnCount())
	}
	if len(g.Rows) != 2 {
		t.Fatalf("正文应有 2 行，实际 %d", len(g.Rows))
	}
	if g.Meta == nil {
		t.Fatal("Meta 应被初始化为空 map")
	}
}

func TestValidateRaggedRows(t *testing.T) {
	g := &Grid{
		Header: []string{"A", "B"},
		Rows:   [][]string{{"1", "2"}, {"3"}},
	}
	err := g.Validate()
	if err == nil {
		t.Fatal("列数不一致应报错")
	}
	if !strings.Contains(err.Error(), "第 2 行") {
		t.Fatalf("错误信息应指出行号，实际: %v", err)
	}
}

func TestColumn(t *testing.T) {
	g, err := New([][]string{
		{"A", "B"},
		{"1", "x"},
		{"2", "y"},
	})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	got := g.Column(1)
	if !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("Column(1) 结果不符: %v", got)
	}
}

// TestDropEmptyColumns 验证正文全空白的列被删除，表头内容不参与判断。
func TestDropEmptyColumns(t *testing.T) {
	g, err := New([][]string{
		{"ID", "Leer", "Hits"},
		{"#1", "", "10"},
		{"#2", "  ", "20"},
	})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if err := g.DropEmptyColumns(); err != nil {
		t.Fatalf("DropEmptyColumns 失败: %v", err)
	}
	if !reflect.DeepEqual(g.Header, []string{"ID", "Hits"}) {
		t.Fatalf("表头不符: %v", g.Header)
	}
	if !reflect.DeepEqual(g.Rows[0], []string{"#1", "10"}) {
		t.Fatalf("首行不符: %v", g.Rows[0])
	}
}

func TestDropEmptyColumnsAllEmpty(t *testing.T) {
	g := &Grid{
		Header: []string{"A", "B"},
		Rows:   [][]string{{"", " "}, {"", ""}},
	}
	if err := g.DropEmptyColumns(); err == nil {
		t.Fatal("所有列均为空时应报错")
	}
}

func TestDropColumns(t *testing.T) {
	g, err := New([][]string{
		{"A", "B", "C"},
		{"1", "2", "3"},
	})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if err := g.DropColumns([]int{2}); err != nil {
		t.Fatalf("DropColumns 失败: %v", err)
	}
	if !reflect.DeepEqual(g.Header, []string{"A", "C"}) {
		t.Fatalf("表头不符: %v", g.Header)
	}
	if !reflect.DeepEqual(g.Rows[0], []string{"1", "3"}) {
		t.Fatalf("正文不符: %v", g.Rows[0])
	}
}

func TestDropColumnsInvalid(t *testing.T) {
	g, err := New([][]string{{"A", "B"}, {"1", "2"}})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	err = g.DropColumns([]int{0, 3})
	if err == nil {
		t.Fatal("越界列号应报错")
	}
	if !strings.Contains(err.Error(), "[0 3]") {
		t.Fatalf("错误信息应列出非法列号，实际: %v", err)
	}
}

func TestDropColumnsAll(t *testing.T) {
	g, err := New([][]string{{"A", "B"}, {"1", "2"}})
	if err != nil {
		t.Fatalf("New 失败: %v", err)
	}
	if err := g.DropColumns([]int{1, 2}); err == nil {
		t.Fatal("删除全部列应报错")
	}
}
