package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// 该文件定义布局结果（Layout Plan），供渲染器与调试 JSON 共用。
// Plan 中的长度一律为整数像素（Config.DPI 下）。

// Plan 是布局引擎的最终产物：页面几何、列宽、字号与逐页的折行内容。
// 渲染器不再做任何折行或测宽，只负责按 Plan 绘制。
type Plan struct {
	PageWidthPx  int `json:"pageWidthPx"`
	PageHeightPx int `json:"pageHeightPx"`
	MarginPx     int `json:"marginPx"`
	DPI          int `json:"dpi"`

	ColumnWidths []int  `json:"columnWidths"`
	QueryColumns []bool `json:"queryColumns"`

	PadX    int `json:"padX"`
	PadY    int `json:"padY"`
	LineGap int `json:"lineGap"`

	BodyFont   FontSpec `json:"bodyFont"`
	HeaderFont FontSpec `json:"headerFont"`

	// Header 是在每一页顶部重复绘制的表头块（按最终列宽折行）。
	Header RowBlock `json:"header"`
	// BandHeightPx 是表头带（页码/元信息行）的高度。
	BandHeightPx int `json:"bandHeightPx"`

	Pages []Page `json:"pages"`

	Note  string `json:"note,omitempty"` // 页眉带左侧单行元信息
	Band  Band   `json:"band"`
	Style Style  `json:"style"`

	// Overflow 表示在表头字号收缩到下限后，列的下限宽度之和仍超过可用宽度。
	// 此时 Plan 仍然可用（列取下限宽度，内容可能溢出），由调用方决定如何提示。
	Overflow bool `json:"overflow,omitempty"`
}

// Band 保存页眉带模板，渲染时按页展开 ${page}/${pages}/${meta.*}。
type Band struct {
	Center string `json:"center,omitempty"`
	Right  string `json:"right,omitempty"`
}

// RowBlock 是一行在最终列宽下的折行结果：每列一组行文本。
type RowBlock struct {
	Lines    [][]string `json:"lines"`
	HeightPx int        `json:"heightPx"`
}

// Page 按顺序保存一页要绘制的行切片。
type Page struct {
	Index  int        `json:"index"`
	Slices []RowSlice `json:"slices"`
}

// RowSlice 是某个正文行在一页内呈现的部分。
// 行高不超过页面时 Part 恒为 0 且切片覆盖整行；
// 超高行会被按行窗口切开，跨到后续页面继续（Part 递增）。
type RowSlice struct {
	Row      int        `json:"row"`  // 正文行号（0 起）
	Part     int        `json:"part"` // 行内切片序号（0 起）
	Lines    [][]string `json:"lines"`
	HeightPx int        `json:"heightPx"`
	Zebra    bool       `json:"zebra,omitempty"`
}

// Style 保存渲染用到的颜色。
type Style struct {
	HeaderFill Color `json:"headerFill"`
	ZebraFill  Color `json:"zebraFill"`
	GridLine   Color `json:"gridLine"`
	Text       Color `json:"text"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// ParseHexColor 解析 #RGB / #RRGGBB / #RRGGBBAA 形式的颜色。
func ParseHexColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	var parts [3]string
	switch len(value) {
	case 3:
		for i := 0; i < 3; i++ {
			parts[i] = strings.Repeat(string(value[i]), 2)
		}
	case 6, 8:
		for i := 0; i < 3; i++ {
			parts[i] = value[2*i : 2*i+2]
		}
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var channels [3]int
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		channels[i] = int(v)
	}
	return Color{R: channels[0], G: channels[1], B: channels[2]}, nil
}

var (
	defaultHeaderFill = Color{R: 0xF5, G: 0xF5, B: 0xF5}
	defaultZebraFill  = Color{R: 0xFC, G: 0xFC, B: 0xFC}
)

// hexOrDefault 在解析失败时退回给定默认色（配置里写错颜色不应让整个任务失败）。
func hexOrDefault(value string, fallback Color) Color {
	if c, err := ParseHexColor(value); err == nil {
		return c
	}
	return fallback
}
