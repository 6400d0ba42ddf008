package layout

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/Jumbo125/Searchlist-Converter/table"
)

var wordRe = regexp.MustCompile(`\S+`)

// minFloorChars 是列宽下限的参照：正文字体下 3 个宽字符。
const minFloorChars = 3

// measureColumns 为每列求两个量（均含左右内边距）：
// headerPiece：表头按硬切分规则拆出的最宽不可再分碎片；
// natural：整列未折行时最宽的单元格内容。
func measureColumns(g *table.Grid, m Metrics, headerFont, bodyFont FontSpec, padX, headerChunk int) (headerPiece, natural []int) {
	n := g.ColumnCount()
	headerPiece = make([]int, n)
	natural = make([]int, n)

	for j := 0; j < n; j++ {
		headerText := g.Header[j]
		if w, _ := m.Measure(headerText, headerFont); w+2*padX > natural[j] {
			natural[j] = w + 2*padX
		}
		for _, token := range wordRe.FindAllString(headerText, -1) {
			runes := []rune(token)
			if headerChunk > 0 && len(runes) > headerChunk {
				for i := 0; i < len(runes); i += headerChunk {
					end := i + headerChunk
					if end > len(runes) {
						end = len(runes)
					}
					if w, _ := m.Measure(string(runes[i:end]), headerFont); w+2*padX > headerPiece[j] {
						headerPiece[j] = w + 2*padX
					}
				}
			} else if w, _ := m.Measure(token, headerFont); w+2*padX > headerPiece[j] {
				headerPiece[j] = w + 2*padX
			}
		}
	}

	for _, row := range g.Rows {
		for j := 0; j < n && j < len(row); j++ {
			if w, _ := m.Measure(row[j], bodyFont); w+2*padX > natural[j] {
				natural[j] = w + 2*padX
			}
		}
	}
	return headerPiece, natural
}

// minFloorWidth 返回所有列共用的固定下限宽度。
func minFloorWidth(m Metrics, bodyFont FontSpec, padX int) int {
	w, _ := m.Measure(strings.Repeat("W", minFloorChars), bodyFont)
	return w + 2*padX
}

// floorWidths 返回每列的下限宽度 = max(固定下限, 最宽表头碎片)。
func floorWidths(g *table.Grid, m Metrics, headerFont, bodyFont FontSpec, padX, headerChunk int) []int {
	headerPiece, _ := measureColumns(g, m, headerFont, bodyFont, padX, headerChunk)
	floor := minFloorWidth(m, bodyFont, padX)
	minw := make([]int, len(headerPiece))
	for j := range minw {
		minw[j] = floor
		if headerPiece[j] > floor {
			minw[j] = headerPiece[j]
		}
	}
	return minw
}

// wrapScore 估算一列在给定列宽下被迫折行产生的额外高度（px）。
// 额外行越多的列，分到缓冲宽度的收益越大。
func wrapScore(m Metrics, texts []string, font FontSpec, colWidth, padX, hardChunk int) int {
	inner := colWidth - 2*padX
	if inner < 1 {
		inner = 1
	}
	_, lineH := m.Measure("Ag", font)
	score := 0
	for _, text := range texts {
		lines := wrapText(m, font, text, inner, hardChunk, nil, "")
		if extra := len(lines) - 1; extra > 0 {
			score += extra * lineH
		}
	}
	return score
}

// flexFit 在宽度不够分的情况下按自然宽度比例压缩到 target，
// 任何列都不得低于其下限；凑整误差轮转修正。
func flexFit(base, minw []int, target int) []int {
	n := len(base)
	if n == 0 {
		return nil
	}
	total := sumInts(base)
	if total == 0 {
		total = 1
	}
	widths := make([]int, n)
	for i := range widths {
		w := int(math.Round(float64(base[i]) * float64(target) / float64(total)))
		if w < minw[i] {
			w = minw[i]
		}
		widths[i] = w
	}

	diff := target - sumInts(widths)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return base[order[a]] > base[order[b]] })

	for guard := 0; diff != 0 && guard < 10000; guard++ {
		changed := false
		for _, idx := range order {
			if diff > 0 {
				widths[idx]++
				diff--
				changed = true
				if diff == 0 {
					break
				}
			} else if widths[idx] > minw[idx] {
				widths[idx]--
				diff++
				changed = true
				if diff == 0 {
					break
				}
			}
		}
		if !changed {
			break
		}
	}
	if leftover := target - sumInts(widths); leftover != 0 {
		w := widths[n-1] + leftover
		if w < minw[n-1] {
			w = minw[n-1]
		}
		widths[n-1] = w
	}
	return widths
}

// planWidths 计算最终列宽。
// 基线：每列 max(下限, min(自然宽度, 平均宽度))；不够分时整体 flexFit 压缩。
// 有剩余时：存在查询列则先把查询列拉到等宽（不超过查询列上限），
// 否则按 wrapScore 比例把缓冲分给折行最严重的列。
func planWidths(g *table.Grid, m Metrics, cfg Config, bodyFont, headerFont FontSpec, placeW int, queryCols []bool) []int {
	n := g.ColumnCount()
	if n == 0 {
		return nil
	}
	headerPiece, natural := measureColumns(g, m, headerFont, bodyFont, cfg.PadX, cfg.HeaderChunk)
	floor := minFloorWidth(m, bodyFont, cfg.PadX)

	minw := make([]int, n)
	for j := range minw {
		minw[j] = floor
		if headerPiece[j] > floor {
			minw[j] = headerPiece[j]
		}
	}

	equal := placeW / n
	if equal < 1 {
		equal = 1
	}
	widths := make([]int, n)
	for j := range widths {
		w := natural[j]
		if equal < w {
			w = equal
		}
		if w < minw[j] {
			w = minw[j]
		}
		widths[j] = w
	}

	if sumInts(widths) > placeW || sumInts(minw) > placeW {
		return flexFit(natural, minw, placeW)
	}

	buffer := placeW - sumInts(widths)
	if buffer <= 0 {
		return widths
	}

	caps := make([]int, n)
	for j := range caps {
		share := cfg.ColShare
		if queryCols[j] {
			share = cfg.QueryColShare
		}
		caps[j] = int(float64(placeW) * share)
	}

	var qIdx []int
	for j, q := range queryCols {
		if q {
			qIdx = append(qIdx, j)
		}
	}

	if len(qIdx) == 0 {
		distributeByWrapScore(g, m, cfg, bodyFont, headerFont, widths, minw, caps, buffer, placeW)
		return widths
	}

	// 查询列等宽：先把所有查询列抬到同一目标宽度，再把余量均分给未到上限的查询列。
	currentMax := 0
	for _, j := range qIdx {
		if widths[j] > currentMax {
			currentMax = widths[j]
		}
	}
	capQ := caps[qIdx[0]]
	for _, j := range qIdx {
		if caps[j] < capQ {
			capQ = caps[j]
		}
	}
	tentative := currentMax + buffer/len(qIdx)
	if tentative > capQ {
		tentative = capQ
	}
	for tentative > currentMax {
		if neededLift(widths, qIdx, tentative) <= buffer {
			break
		}
		tentative--
	}
	buffer -= neededLift(widths, qIdx, tentative)
	for _, j := range qIdx {
		if widths[j] < tentative {
			widths[j] = tentative
		}
	}

	for buffer > 0 {
		var candidates []int
		for _, j := range qIdx {
			if widths[j] < caps[j] {
				candidates = append(candidates, j)
			}
		}
		if len(candidates) == 0 {
			break
		}
		headroom := caps[candidates[0]] - widths[candidates[0]]
		for _, j := range candidates {
			if caps[j]-widths[j] < headroom {
				headroom = caps[j] - widths[j]
			}
		}
		addEach := buffer / len(candidates)
		if headroom < addEach {
			addEach = headroom
		}
		if addEach <= 0 {
			for _, j := range candidates {
				if buffer <= 0 {
					break
				}
				if widths[j] < caps[j] {
					widths[j]++
					buffer--
				}
			}
			break
		}
		for _, j := range candidates {
			widths[j] += addEach
		}
		buffer -= addEach * len(candidates)
	}

	if diff := placeW - sumInts(widths); diff != 0 {
		order := append([]int{}, qIdx...)
		for j := 0; j < n; j++ {
			if !queryCols[j] {
				order = append(order, j)
			}
		}
		correctDiff(widths, minw, caps, order, diff)
	}
	return widths
}

// distributeByWrapScore 把缓冲宽度按各列折行代价比例分配（无查询列时）。
func distributeByWrapScore(g *table.Grid, m Metrics, cfg Config, bodyFont, headerFont FontSpec, widths, minw, caps []int, buffer, placeW int) {
	n := len(widths)
	scores := make([]int, n)
	total := 0
	for j := 0; j < n; j++ {
		w := widths[j]
		if w < 1 {
			w = 1
		}
		s := wrapScore(m, []string{g.Header[j]}, headerFont, w, cfg.PadX, cfg.HeaderChunk)
		s += wrapScore(m, g.Column(j), bodyFont, w, cfg.PadX, cfg.BodyChunk)
		if s < 1 {
			s = 1
		}
		scores[j] = s
		total += s
	}
	for j := 0; j < n; j++ {
		add := int(math.Round(float64(buffer) * float64(scores[j]) / float64(total)))
		w := widths[j] + add
		if w > caps[j] {
			w = caps[j]
		}
		widths[j] = w
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	correctDiff(widths, minw, caps, order, placeW-sumInts(widths))
}

// correctDiff 按给定优先级轮转 ±1 修正凑整误差，直到总宽等于目标或无法再动。
func correctDiff(widths, minw, caps []int, order []int, diff int) {
	for guard := 0; diff != 0 && guard < 10000; guard++ {
		moved := false
		for _, j := range order {
			if diff == 0 {
				break
			}
			if diff > 0 && widths[j] < caps[j] {
				widths[j]++
				diff--
				moved = true
			} else if diff < 0 && widths[j] > minw[j] {
				widths[j]--
				diff++
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}

func neededLift(widths []int, idx []int, target int) int {
	need := 0
	for _, j := range idx {
		if target > widths[j] {
			need += target - widths[j]
		}
	}
	return need
}

func sumInts(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}
