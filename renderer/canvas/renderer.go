package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/Jumbo125/Searchlist-Converter/binding"
	"github.com/Jumbo125/Searchlist-Converter/fonts"
	"github.com/Jumbo125/Searchlist-Converter/layout"
	"github.com/Jumbo125/Searchlist-Converter/renderer"
	"github.com/Jumbo125/Searchlist-Converter/table"
)

// 表格线宽（mm）。
const gridLineWidth = 0.2

// Renderer 基于 github.com/tdewolff/canvas 绘制分页表格，
// 同时作为布局阶段的字体测量器（layout.Metrics）。
// 测量与绘制共用同一组 FontFace，保证排版结果与最终绘制一致。
type Renderer struct {
	dpi    int
	family *canvas.FontFamily

	mu    sync.Mutex
	faces map[faceKey]*canvas.FontFace
}

var _ layout.Metrics = (*Renderer)(nil)

type faceKey struct {
	sizePt int
	bold   bool
	col    layout.Color
}

// New 以一组字体文件和目标 DPI 构造渲染器。
func New(pair fonts.Pair, dpi int) (*Renderer, error) {
	if dpi <= 0 {
		dpi = 300
	}
	family := canvas.NewFontFamily(pair.Name)
	regular, err := os.ReadFile(pair.Regular)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", pair.Regular, err)
	}
	if err := family.LoadFont(regular, 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("装载字体 %s 失败: %w", pair.Regular, err)
	}
	bold := regular
	if pair.Bold != pair.Regular {
		bold, err = os.ReadFile(pair.Bold)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", pair.Bold, err)
		}
	}
	if err := family.LoadFont(bold, 0, canvas.FontBold); err != nil {
		return nil, fmt.Errorf("装载字体 %s 失败: %w", pair.Bold, err)
	}
	return &Renderer{
		dpi:    dpi,
		family: family,
		faces:  map[faceKey]*canvas.FontFace{},
	}, nil
}

// Measure 实现 layout.Metrics。
// canvas 的字体面以 pt 建面、以 mm 计量，这里在边界换算成目标 DPI 下的像素：
// 宽度向上取整（保证"量得下就画得下"），行高四舍五入。
func (r *Renderer) Measure(text string, font layout.FontSpec) (int, int) {
	face := r.face(font, layout.Color{})
	widthMm := face.TextWidth(text)
	lineMm := face.Metrics().LineHeight
	widthPx := int(math.Ceil(widthMm / 25.4 * float64(r.dpi)))
	linePx := int(math.Round(lineMm / 25.4 * float64(r.dpi)))
	if linePx < 1 {
		linePx = 1
	}
	return widthPx, linePx
}

func (r *Renderer) face(spec layout.FontSpec, col layout.Color) *canvas.FontFace {
	key := faceKey{sizePt: spec.SizePt, bold: spec.Bold, col: col}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f
	}
	style := canvas.FontRegular
	if spec.Bold {
		style = canvas.FontBold
	}
	f := r.family.Face(float64(spec.SizePt), rgba(col), style, canvas.FontNormal)
	r.faces[key] = f
	return f
}

// PDF 返回单文件 PDF 后端。
func (r *Renderer) PDF() renderer.Renderer { return pdfBackend{r} }

// Raster 返回按页产出位图的后端，format 取 "png" 或 "jpg"。
func (r *Renderer) Raster(format string, jpegQuality int) renderer.PageRenderer {
	if jpegQuality <= 0 {
		jpegQuality = 90
	}
	return rasterBackend{r: r, format: format, quality: jpegQuality}
}

type pdfBackend struct{ r *Renderer }

var _ renderer.Renderer = pdfBackend{}

func (b pdfBackend) Render(grid *table.Grid, plan *layout.Plan) ([]byte, error) {
	if plan == nil || len(plan.Pages) == 0 {
		return nil, fmt.Errorf("渲染失败: 缺少可渲染的页面")
	}
	pageW := layout.PxToMm(plan.PageWidthPx, plan.DPI)
	pageH := layout.PxToMm(plan.PageHeightPx, plan.DPI)

	var buf bytes.Buffer
	writer := pdf.New(&buf, pageW, pageH, nil)
	for i, page := range plan.Pages {
		if i > 0 {
			writer.NewPage(pageW, pageH)
		}
		c := canvas.New(pageW, pageH)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
		b.r.drawPage(ctx, grid, plan, page)
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

type rasterBackend struct {
	r       *Renderer
	format  string
	quality int
}

var _ renderer.PageRenderer = rasterBackend{}

func (b rasterBackend) RenderPages(grid *table.Grid, plan *layout.Plan) ([][]byte, error) {
	if plan == nil || len(plan.Pages) == 0 {
		return nil, fmt.Errorf("渲染失败: 缺少可渲染的页面")
	}
	pageW := layout.PxToMm(plan.PageWidthPx, plan.DPI)
	pageH := layout.PxToMm(plan.PageHeightPx, plan.DPI)

	out := make([][]byte, 0, len(plan.Pages))
	for _, page := range plan.Pages {
		c := canvas.New(pageW, pageH)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV)
		fillRect(ctx, 0, 0, pageW, pageH, canvas.White)
		b.r.drawPage(ctx, grid, plan, page)

		img := rasterizer.Draw(c, canvas.DPI(float64(plan.DPI)), canvas.DefaultColorSpace)
		var buf bytes.Buffer
		switch strings.ToLower(b.format) {
		case "jpg", "jpeg":
			if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: b.quality}); err != nil {
				return nil, fmt.Errorf("编码 JPG 失败: %w", err)
			}
		default:
			if err := png.Encode(&buf, img); err != nil {
				return nil, fmt.Errorf("编码 PNG 失败: %w", err)
			}
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}

// drawPage 按 Plan 画一页：页眉带、表头块、本页的行切片与表格线。
// Plan 中全部是整数像素，这里仅在调用 canvas 的边界换算成 mm。
func (r *Renderer) drawPage(ctx *canvas.Context, grid *table.Grid, plan *layout.Plan, page layout.Page) {
	mm := func(px int) float64 { return layout.PxToMm(px, plan.DPI) }
	margin := plan.MarginPx
	placeW := plan.PageWidthPx - 2*margin
	placeH := plan.PageHeightPx - 2*margin

	gridCol := rgba(plan.Style.GridLine)
	textCol := plan.Style.Text
	bodyFace := r.face(plan.BodyFont, textCol)
	headerFace := r.face(plan.HeaderFont, textCol)
	_, bodyLineH := r.Measure("Ag", plan.BodyFont)
	_, headerLineH := r.Measure("Ag", plan.HeaderFont)

	var meta map[string]string
	if grid != nil {
		meta = grid.Meta
	}
	data := binding.BandData(page.Index, len(plan.Pages), meta)

	// 页眉带：左侧元信息、中间与右侧模板文本，下缘一条分隔线。
	strokeLine(ctx, mm(margin), mm(margin+plan.BandHeightPx), mm(margin+placeW), mm(margin+plan.BandHeightPx), gridCol)
	innerW := placeW - 2*plan.PadX
	if innerW < 1 {
		innerW = 1
	}
	bandBase := mm(margin+plan.PadY) + bodyFace.Metrics().Ascent
	if strings.TrimSpace(plan.Note) != "" {
		left := layout.Ellipsize(r, plan.BodyFont, plan.Note, innerW/3)
		ctx.DrawText(mm(margin+plan.PadX), bandBase, canvas.NewTextLine(bodyFace, left, canvas.Left))
	}
	if center := binding.Interpolate(plan.Band.Center, data); strings.TrimSpace(center) != "" {
		cw, _ := r.Measure(center, plan.BodyFont)
		ctx.DrawText(mm(margin+placeW/2-cw/2), bandBase, canvas.NewTextLine(bodyFace, center, canvas.Left))
	}
	if right := binding.Interpolate(plan.Band.Right, data); strings.TrimSpace(right) != "" {
		right = layout.Ellipsize(r, plan.BodyFont, right, innerW/3)
		rw, _ := r.Measure(right, plan.BodyFont)
		ctx.DrawText(mm(margin+placeW-plan.PadX-rw), bandBase, canvas.NewTextLine(bodyFace, right, canvas.Left))
	}

	// 表头块：底色、竖向表格线与垂直居中的表头文本。
	y1 := margin + plan.BandHeightPx
	fillRect(ctx, mm(margin), mm(y1), mm(placeW), mm(plan.Header.HeightPx), rgba(plan.Style.HeaderFill))
	x := margin
	for j, colW := range plan.ColumnWidths {
		strokeLine(ctx, mm(x), mm(y1), mm(x), mm(y1+placeH-plan.BandHeightPx), gridCol)
		lines := plan.Header.Lines[j]
		totalH := len(lines)*headerLineH + (len(lines)-1)*plan.LineGap
		yText := y1 + (plan.Header.HeightPx-totalH)/2
		for _, ln := range lines {
			base := mm(yText) + headerFace.Metrics().Ascent
			ctx.DrawText(mm(x+plan.PadX), base, canvas.NewTextLine(headerFace, layout.RenderLine(ln), canvas.Left))
			yText += headerLineH + plan.LineGap
		}
		x += colW
	}
	strokeLine(ctx, mm(margin+placeW), mm(y1), mm(margin+placeW), mm(y1+placeH-plan.BandHeightPx), gridCol)
	strokeLine(ctx, mm(margin), mm(y1+plan.Header.HeightPx), mm(margin+placeW), mm(y1+plan.Header.HeightPx), gridCol)

	// 正文：本页的行切片依次向下排，斑马底色先画，文本与单元格边框随后。
	y := y1 + plan.Header.HeightPx
	for _, slice := range page.Slices {
		if slice.Zebra {
			fillRect(ctx, mm(margin), mm(y), mm(placeW), mm(slice.HeightPx), rgba(plan.Style.ZebraFill))
		}
		x := margin
		for j, colW := range plan.ColumnWidths {
			yText := y + plan.PadY
			for _, ln := range slice.Lines[j] {
				base := mm(yText) + bodyFace.Metrics().Ascent
				ctx.DrawText(mm(x+plan.PadX), base, canvas.NewTextLine(bodyFace, layout.RenderLine(ln), canvas.Left))
				yText += bodyLineH + plan.LineGap
			}
			strokeRect(ctx, mm(x), mm(y), mm(colW), mm(slice.HeightPx), gridCol)
			x += colW
		}
		y += slice.HeightPx
	}
}

func fillRect(ctx *canvas.Context, x, y, w, h float64, col color.Color) {
	ctx.SetFillColor(col)
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func strokeRect(ctx *canvas.Context, x, y, w, h float64, col color.Color) {
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(gridLineWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(w, h))
}

func strokeLine(ctx *canvas.Context, x1, y1, x2, y2 float64, col color.Color) {
	ctx.SetStrokeColor(col)
	ctx.SetStrokeWidth(gridLineWidth)
	p := &canvas.Path{}
	p.MoveTo(0, 0)
	p.LineTo(x2-x1, y2-y1)
	ctx.DrawPath(x1, y1, p)
}

func rgba(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
