package layout

import "strings"

// softHyphen 标记硬切分/连字产生的断口，渲染器可据此决定是否绘制连字符。
const softHyphen = "­"

// wrapText 把一个单元格的文本折成若干行：
// 先按空格贪心装行；放不下的"长词"优先询问连字点（传入 hy 时），
// 否则按 hardChunk 个字符为上限做硬切分，切口处以二分查找逼近可用宽度。
// 对非空输入至少产出一行；当宽度小于单个字符时产出的行可能超宽，
// 这是受限的退化输入，循环有界，不会重试。
func wrapText(m Metrics, font FontSpec, text string, maxWidthPx, hardChunk int, hy Hyphenator, lang string) []string {
	if text == "" {
		return []string{""}
	}
	inner := maxWidthPx
	if inner < 1 {
		inner = 1
	}
	useHyphen := hardChunk > 0 && hy != nil && lang != ""

	width := func(s string) int {
		w, _ := m.Measure(s, font)
		return w
	}

	// hyphenSplitOnce 尝试在 token 内找一个连字断口：
	// 贪心吞并音节，直到 "前缀-" 放不下为止。
	hyphenSplitOnce := func(token string) (string, string, bool) {
		if !useHyphen || token == "" {
			return "", token, false
		}
		runes := []rune(token)
		var cuts []int
		for _, p := range hy.BreakPoints(token, lang) {
			if p > 0 && p < len(runes) {
				cuts = append(cuts, p)
			}
		}
		if len(cuts) == 0 {
			return "", token, false
		}
		syllables := make([]string, 0, len(cuts)+1)
		prev := 0
		for _, c := range cuts {
			syllables = append(syllables, string(runes[prev:c]))
			prev = c
		}
		syllables = append(syllables, string(runes[prev:]))

		prefix := ""
		consumed := 0
		for i := 0; i < len(syllables)-1; i++ {
			candidate := prefix + syllables[i]
			if width(candidate+"-") <= inner {
				prefix = candidate
				consumed = i + 1
			} else {
				break
			}
		}
		if consumed == 0 {
			return "", token, false
		}
		return prefix + softHyphen, strings.Join(syllables[consumed:], ""), true
	}

	// splitToken 把放不下的 token 拆成若干碎片，除最后一片外均以软连字符结尾。
	splitToken := func(token string) []string {
		var parts []string
		remaining := token
		for remaining != "" {
			if width(remaining) <= inner {
				parts = append(parts, remaining)
				break
			}
			if prefix, rest, ok := hyphenSplitOnce(remaining); ok {
				parts = append(parts, prefix)
				remaining = rest
				continue
			}
			runes := []rune(remaining)
			limit := len(runes)
			if hardChunk > 0 && hardChunk < limit {
				limit = hardChunk
			}
			lo, hi, fit := 1, limit, 0
			for lo <= hi {
				mid := (lo + hi) / 2
				if width(string(runes[:mid])+"-") <= inner {
					fit = mid
					lo = mid + 1
				} else {
					hi = mid - 1
				}
			}
			if fit == 0 {
				fit = 1 // 单字符都放不下：照样切一个字符，保证推进
			}
			parts = append(parts, string(runes[:fit])+softHyphen)
			remaining = string(runes[fit:])
		}
		return parts
	}

	var lines []string
	current := ""
	for _, token := range strings.Split(text, " ") {
		trial := token
		if current != "" {
			trial = current + " " + token
		}
		if current != "" && width(trial) <= inner {
			current = trial
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		for _, piece := range splitToken(token) {
			trial := current + piece
			if current != "" && width(trial) > inner {
				lines = append(lines, current)
				current = piece
			} else {
				current = trial
			}
			if strings.HasSuffix(piece, softHyphen) {
				lines = append(lines, current)
				current = ""
			}
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// RenderLine 把行尾的软连字符替换为可见连字符，供渲染器绘制使用。
func RenderLine(s string) string {
	if strings.HasSuffix(s, softHyphen) {
		return strings.TrimSuffix(s, softHyphen) + "-"
	}
	return s
}

// Ellipsize 把放不下的文本截断并追加省略号（二分查找最大可用前缀），
// 供渲染器绘制页眉带时使用。
func Ellipsize(m Metrics, font FontSpec, text string, maxWidthPx int) string {
	if text == "" {
		return ""
	}
	if w, _ := m.Measure(text, font); w <= maxWidthPx {
		return text
	}
	const ellipsis = "…"
	runes := []rune(text)
	lo, hi := 0, len(runes)
	for lo < hi {
		mid := (lo + hi) / 2
		if w, _ := m.Measure(string(runes[:mid])+ellipsis, font); w <= maxWidthPx {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return ellipsis
	}
	return string(runes[:lo-1]) + ellipsis
}
