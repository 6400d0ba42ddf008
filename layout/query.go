package layout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Jumbo125/Searchlist-Converter/table"
)

// defaultQueryPattern 匹配检索式里常见的布尔/邻近算子与字段限定符。
// 命中任意一个整词即视为"查询迹象"。
const defaultQueryPattern = `(?i)\b(AND|OR|NOT|NEAR/?\d*|ADJ\d*|N\d+|W\d+|TI:|AB:|MH:|MeSH|".+?"|\[tiab\])\b`

// querySampleRows 限制对正文的采样行数，避免超大表格拖慢探测。
const querySampleRows = 30

// compileQueryPattern 编译配置的查询算子正则（空则用内置模式）。
func compileQueryPattern(pattern string) (*regexp.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = defaultQueryPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("查询算子正则 %q 非法: %w", pattern, err)
	}
	return re, nil
}

// detectQueryColumns 对每一列判断是否"像检索式列"。
// 评分规则：表头命中 +1，采样正文单元格命中 +2，括号与引号每个 +1；
// 采样中累计 ≥4 提前判真，否则最终 ≥3 判真。
// 每次布局运行只计算一次，运行期间不再变化。
func detectQueryColumns(g *table.Grid, re *regexp.Regexp) []bool {
	n := g.ColumnCount()
	out := make([]bool, n)
	for j := 0; j < n; j++ {
		out[j] = looksLikeQueryColumn(g.Header[j], g.Column(j), re)
	}
	return out
}

func looksLikeQueryColumn(header string, colTexts []string, re *regexp.Regexp) bool {
	score := 0
	if re.MatchString(header) {
		score++
	}
	sample := colTexts
	if len(sample) > querySampleRows {
		sample = sample[:querySampleRows]
	}
	for _, text := range sample {
		if re.MatchString(text) {
			score += 2
		}
		score += strings.Count(text, "(") + strings.Count(text, ")") + strings.Count(text, `"`)
		if score >= 4 {
			return true
		}
	}
	return score >= 3
}
