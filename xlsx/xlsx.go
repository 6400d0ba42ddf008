// Package xlsx 把表格写成可直接打印的工作簿：
// 合并的元信息行、加粗底色表头、细边框、列宽估算、冻结表头与页面设置。
// 与位图/PDF 输出不同，这里写入的是未折行的原始单元格，折行交给电子表格程序。
package xlsx

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/unidoc/unioffice"
	"github.com/unidoc/unioffice/color"
	"github.com/unidoc/unioffice/schema/soo/sml"
	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/Jumbo125/Searchlist-Converter/layout"
	"github.com/Jumbo125/Searchlist-Converter/renderer"
	"github.com/Jumbo125/Searchlist-Converter/table"
)

const sheetName = "Tabelle"

// 列宽（Excel 字符单位）边界与放大系数。
const (
	minColChars   = 10
	maxColChars   = 80
	colCharFactor = 1.2
)

// Writer 实现 renderer.Renderer。布局 Plan 对工作簿无意义，Render 忽略它。
type Writer struct {
	Orientation string // portrait / landscape
	FitWidth    bool   // 打印时横向缩放到一页宽
	MetaNote    string // 首行合并显示的元信息（斜体），空则省略该行
	RightHeader string // 打印页眉右侧文本
	HeaderHex   string // 表头底色，空用 #F5F5F5
}

var _ renderer.Renderer = (*Writer)(nil)

// Render 生成工作簿字节流。
func (w *Writer) Render(grid *table.Grid, _ *layout.Plan) ([]byte, error) {
	if grid == nil || grid.ColumnCount() == 0 {
		return nil, fmt.Errorf("写入 XLSX 失败: 表格为空")
	}
	n := grid.ColumnCount()

	ss := spreadsheet.New()
	sheet := ss.AddSheet()
	sheet.SetName(sheetName)

	headerRowIdx := 1
	if strings.TrimSpace(w.MetaNote) != "" {
		noteFont := ss.StyleSheet.AddFont()
		noteFont.SetItalic(true)
		noteStyle := ss.StyleSheet.AddCellStyle()
		noteStyle.SetFont(noteFont)
		noteStyle.SetWrapped(true)
		noteStyle.SetVerticalAlignment(sml.ST_VerticalAlignmentCenter)

		row := sheet.AddRow()
		cell := row.AddCell()
		cell.SetString(w.MetaNote)
		cell.SetStyle(noteStyle)
		sheet.AddMergedCells("A1", fmt.Sprintf("%s1", reference.IndexToColumn(uint32(n-1))))
		headerRowIdx = 2
	}

	headerColor := parseFill(w.HeaderHex)
	headerFill := ss.StyleSheet.Fills().AddFill()
	headerFill.SetPatternFill().SetFgColor(headerColor)

	gray := color.RGB(0xCC, 0xCC, 0xCC)
	edge := ss.StyleSheet.AddBorder()
	edge.SetLeft(sml.ST_BorderStyleThin, gray)
	edge.SetRight(sml.ST_BorderStyleThin, gray)
	edge.SetTop(sml.ST_BorderStyleThin, gray)
	edge.SetBottom(sml.ST_BorderStyleThin, gray)

	headerFont := ss.StyleSheet.AddFont()
	headerFont.SetBold(true)
	headerStyle := ss.StyleSheet.AddCellStyle()
	headerStyle.SetFont(headerFont)
	headerStyle.SetFill(headerFill)
	headerStyle.SetBorder(edge)
	headerStyle.SetWrapped(true)
	headerStyle.SetVerticalAlignment(sml.ST_VerticalAlignmentTop)

	bodyStyle := ss.StyleSheet.AddCellStyle()
	bodyStyle.SetBorder(edge)
	bodyStyle.SetWrapped(true)
	bodyStyle.SetVerticalAlignment(sml.ST_VerticalAlignmentTop)

	hr := sheet.AddRow()
	for _, h := range grid.Header {
		cell := hr.AddCell()
		cell.SetString(h)
		cell.SetStyle(headerStyle)
	}
	for _, row := range grid.Rows {
		r := sheet.AddRow()
		for j := 0; j < n; j++ {
			cell := r.AddCell()
			if j < len(row) && row[j] != "" {
				cell.SetString(row[j])
			}
			cell.SetStyle(bodyStyle)
		}
	}

	// 列宽按最长单元格的字符数估算，带上下限。
	for j := 0; j < n; j++ {
		maxLen := utf8.RuneCountInString(grid.Header[j])
		for _, row := range grid.Rows {
			if j < len(row) && utf8.RuneCountInString(row[j]) > maxLen {
				maxLen = utf8.RuneCountInString(row[j])
			}
		}
		chars := float64(maxLen) * colCharFactor
		if chars < minColChars {
			chars = minColChars
		}
		if chars > maxColChars {
			chars = maxColChars
		}
		col := sheet.Column(uint32(j + 1))
		col.X().WidthAttr = unioffice.Float64(chars)
		col.X().CustomWidthAttr = unioffice.Bool(true)
	}

	w.applyPrintSetup(ss, sheet, headerRowIdx)
	freezeAbove(sheet, headerRowIdx+1)

	var buf bytes.Buffer
	if err := ss.Save(&buf); err != nil {
		return nil, fmt.Errorf("写入 XLSX 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *Writer) applyPrintSetup(ss *spreadsheet.Workbook, sheet spreadsheet.Sheet, headerRowIdx int) {
	ws := sheet.X()

	ws.SheetPr = sml.NewCT_SheetPr()
	ws.SheetPr.PageSetUpPr = sml.NewCT_PageSetUpPr()
	ws.SheetPr.PageSetUpPr.FitToPageAttr = unioffice.Bool(w.FitWidth)

	ws.PageSetup = sml.NewCT_PageSetup()
	ws.PageSetup.PaperSizeAttr = unioffice.Uint32(9) // A4
	if strings.EqualFold(w.Orientation, "landscape") {
		ws.PageSetup.OrientationAttr = sml.ST_OrientationLandscape
	} else {
		ws.PageSetup.OrientationAttr = sml.ST_OrientationPortrait
	}
	if w.FitWidth {
		ws.PageSetup.FitToWidthAttr = unioffice.Uint32(1)
		ws.PageSetup.FitToHeightAttr = unioffice.Uint32(0)
	}

	ws.PageMargins = sml.NewCT_PageMargins()
	ws.PageMargins.LeftAttr = 0.39
	ws.PageMargins.RightAttr = 0.39
	ws.PageMargins.TopAttr = 0.59
	ws.PageMargins.BottomAttr = 0.59
	ws.PageMargins.HeaderAttr = 0.3
	ws.PageMargins.FooterAttr = 0.3

	header := "&CSeite &P/&N"
	if strings.TrimSpace(w.RightHeader) != "" {
		header += "&R" + w.RightHeader
	}
	ws.HeaderFooter = sml.NewCT_HeaderFooter()
	ws.HeaderFooter.OddHeader = unioffice.String(header)

	// 每页重复表头行。
	ss.AddDefinedName("_xlnm.Print_Titles", fmt.Sprintf("'%s'!$%d:$%d", sheetName, headerRowIdx, headerRowIdx))
}

// freezeAbove 冻结 topRow 之上的所有行（表头随滚动固定）。
func freezeAbove(sheet spreadsheet.Sheet, topRow int) {
	ws := sheet.X()
	if ws.SheetViews == nil || len(ws.SheetViews.SheetView) == 0 {
		ws.SheetViews = sml.NewCT_SheetViews()
		ws.SheetViews.SheetView = append(ws.SheetViews.SheetView, sml.NewCT_SheetView())
	}
	view := ws.SheetViews.SheetView[0]
	view.Pane = sml.NewCT_Pane()
	view.Pane.YSplitAttr = unioffice.Float64(float64(topRow - 1))
	view.Pane.TopLeftCellAttr = unioffice.String(fmt.Sprintf("A%d", topRow))
	view.Pane.StateAttr = sml.ST_PaneStateFrozen
	view.Pane.ActivePaneAttr = sml.ST_PaneBottomLeft
}

func parseFill(hex string) color.Color {
	c, err := layout.ParseHexColor(hex)
	if err != nil {
		c = layout.Color{R: 0xF5, G: 0xF5, B: 0xF5}
	}
	return color.RGB(uint8(c.R), uint8(c.G), uint8(c.B))
}
