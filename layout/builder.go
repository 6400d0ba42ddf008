package layout

import (
	"fmt"
	"strings"

	"github.com/Jumbo125/Searchlist-Converter/table"
)

// Build 把规整后的表格排成整数像素的分页布局。
// 所有量纲都以 cfg.DPI 下的像素计，渲染端仅在输出边界换算回物理单位。
func Build(grid *table.Grid, cfg Config, opts BuildOptions) (*Plan, error) {
	if grid == nil {
		return nil, fmt.Errorf("布局失败: 表格为空")
	}
	if opts.Metrics == nil {
		return nil, fmt.Errorf("布局失败: 缺少字体测量器")
	}
	if grid.ColumnCount() == 0 {
		return nil, fmt.Errorf("布局失败: 表格没有任何列")
	}
	cfg = cfg.withDefaults()
	m := opts.Metrics

	pageW, pageH, err := PagePixels(cfg.PageSize, cfg.Orientation, cfg.DPI)
	if err != nil {
		return nil, fmt.Errorf("布局失败: %w", err)
	}
	margin := MmToPx(cfg.MarginMM, cfg.DPI)
	placeW := pageW - 2*margin
	placeH := pageH - 2*margin
	if placeW < 1 || placeH < 1 {
		return nil, fmt.Errorf("布局失败: 页边距 %gmm 超出页面尺寸", cfg.MarginMM)
	}

	bodyFont := FontSpec{Family: cfg.FontFamily, SizePt: cfg.BodySizePt}

	// 表头字号：未显式指定时从正文字号上浮，再在下限之内逐步缩小，
	// 直到每列最宽的表头碎片都放得下为止。
	headerPt := cfg.HeaderSizePt
	fixedHeader := headerPt > 0
	if !fixedHeader {
		headerPt = cfg.BodySizePt + cfg.HeaderOffsetPt
		if headerPt < cfg.MinHeaderPt {
			headerPt = cfg.MinHeaderPt
		}
	}
	headerFont := FontSpec{Family: cfg.FontFamily, SizePt: headerPt, Bold: true}
	for !fixedHeader {
		minw := floorWidths(grid, m, headerFont, bodyFont, cfg.PadX, cfg.HeaderChunk)
		if sumInts(minw) <= placeW || headerFont.SizePt <= cfg.MinHeaderPt {
			break
		}
		headerFont.SizePt -= cfg.ShrinkStepPt
		if headerFont.SizePt < cfg.MinHeaderPt {
			headerFont.SizePt = cfg.MinHeaderPt
		}
	}
	overflow := sumInts(floorWidths(grid, m, headerFont, bodyFont, cfg.PadX, cfg.HeaderChunk)) > placeW

	queryRe, err := compileQueryPattern(cfg.QueryPattern)
	if err != nil {
		return nil, fmt.Errorf("布局失败: %w", err)
	}
	queryCols := detectQueryColumns(grid, queryRe)

	widths := planWidths(grid, m, cfg, bodyFont, headerFont, placeW, queryCols)

	lang := hyphenLang(cfg.Hyphenation, grid)
	hy := opts.Hyphenator
	if lang == "" {
		hy = nil
	}

	_, bodyLineH := m.Measure("Ag", bodyFont)
	_, headerLineH := m.Measure("Ag", headerFont)
	bandH := 2*cfg.PadY + bodyLineH

	n := grid.ColumnCount()
	innerWidths := make([]int, n)
	for j, w := range widths {
		innerWidths[j] = w - 2*cfg.PadX
		if innerWidths[j] < 1 {
			innerWidths[j] = 1
		}
	}

	headerLines := make([][]string, n)
	headerMax := 1
	for j := 0; j < n; j++ {
		lines := wrapText(m, headerFont, grid.Header[j], innerWidths[j], cfg.HeaderChunk, hy, lang)
		headerLines[j] = lines
		if len(lines) > headerMax {
			headerMax = len(lines)
		}
	}
	headerH := headerMax*headerLineH + 2*cfg.PadY + (headerMax-1)*cfg.LineGap

	plan := &Plan{
		PageWidthPx:  pageW,
		PageHeightPx: pageH,
		MarginPx:     margin,
		DPI:          cfg.DPI,
		ColumnWidths: widths,
		QueryColumns: queryCols,
		PadX:         cfg.PadX,
		PadY:         cfg.PadY,
		LineGap:      cfg.LineGap,
		BodyFont:     bodyFont,
		HeaderFont:   headerFont,
		Header:       RowBlock{Lines: headerLines, HeightPx: headerH},
		BandHeightPx: bandH,
		Note:         opts.Note,
		Band:         Band{Center: cfg.BandCenter, Right: cfg.BandRight},
		Style: Style{
			HeaderFill: hexOrDefault(cfg.HeaderHex, defaultHeaderFill),
			ZebraFill:  hexOrDefault(cfg.ZebraHex, defaultZebraFill),
			GridLine:   Color{R: 200, G: 200, B: 200},
			Text:       Color{},
		},
		Overflow: overflow,
	}

	// 分页：行顶满则整行下移，单行超过一页高度时按行内文本行切片续页。
	minBlock := 2*cfg.PadY + bodyLineH
	tableTop := margin + bandH + headerH
	pages := []Page{{Index: 1}}
	y := tableTop
	newPage := func() {
		pages = append(pages, Page{Index: len(pages) + 1})
		y = tableTop
	}

	for rIdx, row := range grid.Rows {
		linesPerCol := make([][]string, n)
		for j := 0; j < n; j++ {
			text := ""
			if j < len(row) {
				text = row[j]
			}
			linesPerCol[j] = wrapText(m, bodyFont, text, innerWidths[j], cfg.BodyChunk, hy, lang)
		}

		offs := make([]int, n)
		zebra := rIdx%2 == 0
		part := 0
		for {
			avail := margin + placeH - y
			if avail < minBlock {
				newPage()
				avail = margin + placeH - y
			}
			kFit := (avail - 2*cfg.PadY + cfg.LineGap) / (bodyLineH + cfg.LineGap)
			if kFit < 1 {
				kFit = 1
			}

			take := make([]int, n)
			kUsed := 0
			for j := 0; j < n; j++ {
				rest := len(linesPerCol[j]) - offs[j]
				if rest < 0 {
					rest = 0
				}
				if rest > kFit {
					rest = kFit
				}
				take[j] = rest
				if rest > kUsed {
					kUsed = rest
				}
			}
			if kUsed <= 0 {
				break
			}

			sliceH := 2*cfg.PadY + kUsed*bodyLineH + (kUsed-1)*cfg.LineGap
			sliceLines := make([][]string, n)
			for j := 0; j < n; j++ {
				sliceLines[j] = linesPerCol[j][offs[j] : offs[j]+take[j]]
				offs[j] += take[j]
			}
			last := len(pages) - 1
			pages[last].Slices = append(pages[last].Slices, RowSlice{
				Row:      rIdx,
				Part:     part,
				Lines:    sliceLines,
				HeightPx: sliceH,
				Zebra:    zebra,
			})
			part++
			y += sliceH

			done := true
			for j := 0; j < n; j++ {
				if offs[j] < len(linesPerCol[j]) {
					done = false
					break
				}
			}
			if done {
				break
			}
			if y > margin+placeH-minBlock {
				newPage()
			}
		}
	}

	plan.Pages = pages
	return plan, nil
}

// hyphenLang 把断词配置解析为语言代码，"auto" 仅按表头文本猜测。
func hyphenLang(mode string, g *table.Grid) string {
	switch mode {
	case "", "off":
		return ""
	case "auto":
		if hasGermanMarks(g.Header) {
			return "de"
		}
		return "en"
	default:
		return mode
	}
}

func hasGermanMarks(texts []string) bool {
	for _, s := range texts {
		if strings.ContainsAny(s, "äöüÄÖÜß") {
			return true
		}
	}
	return false
}
