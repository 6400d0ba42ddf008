package table

import (
	"fmt"
	"strings"
)

// Grid 是一次转换任务的输入表格：Header 为表头行，Rows 为正文行。
// 布局引擎假定所有行的列数一致（由 Validate 保证），且在一次布局运行中不可变。
type Grid struct {
	Header []string
	Rows   [][]string
	// Meta 保存解析器附带的元信息（例如 Cochrane 导出的 Search Name / Date Run / Comment），
	// 供页眉带与 XLSX 输出使用。
	Meta map[string]string
}

// New 从原始行构建 Grid：第 0 行为表头，其余为正文。
// 输入会先经过 Normalize（去空行、补齐列数、去 BOM）。
func New(rows [][]string) (*Grid, error) {
	rows = Normalize(rows)
	if len(rows) == 0 {
		return nil, fmt.Errorf("表格中没有可用数据")
	}
	g := &Grid{
		Header: rows[0],
		Rows:   rows[1:],
		Meta:   map[string]string{},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Normalize 清洗原始行：丢弃整行为空白的行、把所有行补齐到最大列数、
// 去掉首单元格可能携带的 UTF-8 BOM。
func Normalize(rows [][]string) [][]string {
	cleaned := make([][]string, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}
		cleaned = append(cleaned, append([]string(nil), row...))
	}
	if len(cleaned) == 0 {
		return nil
	}
	if len(cleaned[0]) > 0 {
		cleaned[0][0] = strings.TrimPrefix(cleaned[0][0], "\uFEFF")
	}
	maxCols := 0
	for _, row := range cleaned {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	for i, row := range cleaned {
		if len(row) < maxCols {
			padded := make([]string, maxCols)
			copy(padded, row)
			cleaned[i] = padded
		}
	}
	return cleaned
}

// Validate 检查所有行的列数与表头一致。
// 列数不一致说明上游解析器没有履行约定，属于结构性错误，直接终止布局。
func (g *Grid) Validate() error {
	n := len(g.Header)
	if n == 0 {
		return fmt.Errorf("表头为空")
	}
	for i, row := range g.Rows {
		if len(row) != n {
			return fmt.Errorf("第 %d 行有 %d 列，与表头的 %d 列不一致", i+1, len(row), n)
		}
	}
	return nil
}

// ColumnCount 返回列数。
func (g *Grid) ColumnCount() int { return len(g.Header) }

// Column 返回第 j 列的正文单元格（不含表头）。
func (g *Grid) Column(j int) []string {
	out := make([]string, 0, len(g.Rows))
	for _, row := range g.Rows {
		if j < len(row) {
			out = append(out, row[j])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// DropEmptyColumns 删除正文完全为空白的列（表头是否有内容不影响判断）。
// 所有列都为空时报错，避免产出空表。
func (g *Grid) DropEmptyColumns() error {
	keep := make([]int, 0, len(g.Header))
	for j := range g.Header {
		for _, row := range g.Rows {
			if strings.TrimSpace(row[j]) != "" {
				keep = append(keep, j)
				break
			}
		}
	}
	if len(keep) == 0 {
		return fmt.Errorf("正文所有列均为空，删除后不剩任何列")
	}
	g.project(keep)
	return nil
}

// DropColumns 按 1 起始的列号删除列；列号越界时报错并列出非法值。
func (g *Grid) DropColumns(oneBased []int) error {
	n := len(g.Header)
	var invalid []int
	remove := map[int]bool{}
	for _, num := range oneBased {
		if num < 1 || num > n {
			invalid = append(invalid, num)
			continue
		}
		remove[num-1] = true
	}
	if len(invalid) > 0 {
		return fmt.Errorf("非法的列号 %v：表格只有 %d 列", invalid, n)
	}
	if len(remove) == 0 {
		return nil
	}
	keep := make([]int, 0, n)
	for j := 0; j < n; j++ {
		if !remove[j] {
			keep = append(keep, j)
		}
	}
	if len(keep) == 0 {
		return fmt.Errorf("所有列都被选中删除，不剩任何列")
	}
	g.project(keep)
	return nil
}

func (g *Grid) project(keep []int) {
	pick := func(row []string) []string {
		out := make([]string, len(keep))
		for i, j := range keep {
			out[i] = row[j]
		}
		return out
	}
	g.Header = pick(g.Header)
	for i, row := range g.Rows {
		g.Rows[i] = pick(row)
	}
}
