package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Jumbo125/Searchlist-Converter/fonts"
	"github.com/Jumbo125/Searchlist-Converter/hyphen"
	"github.com/Jumbo125/Searchlist-Converter/layout"
	canvasrenderer "github.com/Jumbo125/Searchlist-Converter/renderer/canvas"
	"github.com/Jumbo125/Searchlist-Converter/table"
	"github.com/Jumbo125/Searchlist-Converter/xlsx"
)

// colorPresets 是界面沿用的配色名，值为十六进制颜色。
var colorPresets = map[string]string{
	"hellgrau":   "#F5F5F5",
	"wolkenweiß": "#FFFFFF",
	"blassblau":  "#EEF4FB",
	"eisblau":    "#F7FBFF",
	"mint":       "#ECF7F2",
	"salbei":     "#F1F7F2",
	"lavendel":   "#F3F0FA",
	"altrosa":    "#FDF0F3",
	"sand":       "#F6F1EB",
}

func main() {
	input := flag.String("in", "", "输入文件路径（CSV 或 Cochrane 导出 TXT）")
	output := flag.String("out", "", "输出路径，默认与输入同名、按格式换扩展名")
	format := flag.String("format", "pdf", "输出格式：pdf / png / jpg / xlsx")
	kind := flag.String("kind", "auto", "输入类型：auto / csv / cochrane（auto 按扩展名判断，.txt 视为 Cochrane 导出）")
	sep := flag.String("sep", ",", "CSV 分隔符")
	cp1252 := flag.Bool("cp1252", false, "CSV 按 Windows-1252 读取（默认 UTF-8）")
	orientation := flag.String("orientation", "landscape", "页面方向：landscape / portrait")
	dpi := flag.Int("dpi", 0, "渲染分辨率，默认 300")
	fontSize := flag.Int("font-size", 0, "正文字号（pt），默认 24")
	fontFamily := flag.String("font", "", "字体名或 .ttf 路径，默认按平台探测")
	headerColor := flag.String("header-color", "", "表头底色：预设名或 #RRGGBB，默认 Hellgrau")
	zebraColor := flag.String("zebra-color", "", "斑马条纹色：预设名或 #RRGGBB")
	headRight := flag.String("head-right", "", "页眉带右侧文本")
	hyphenMode := flag.String("hyphen", "auto", "断词：auto / de / en / off")
	hyphenDir := flag.String("hyphen-dir", "patterns", "断词模式文件目录")
	keepEmpty := flag.Bool("keep-empty-cols", false, "保留内容全空的列")
	dropCols := flag.String("drop-cols", "", "要删除的列号（1 起），分号分隔，如 2;5;7")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	jpegQuality := flag.Int("jpeg-quality", 95, "JPG 质量")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		log.Fatal("缺少输入文件（-in）")
	}
	outPath := *output
	if outPath == "" {
		outPath = replaceExt(*input, "."+normalizeFormat(*format))
	}

	grid, note, err := readInput(*input, *kind, *sep, !*cp1252)
	if err != nil {
		log.Fatalf("读取输入失败: %v", err)
	}
	if !*keepEmpty {
		if err := grid.DropEmptyColumns(); err != nil {
			log.Fatalf("删除空列失败: %v", err)
		}
	}
	if *dropCols != "" {
		cols, err := parseColumnList(*dropCols)
		if err != nil {
			log.Fatalf("解析列号失败: %v", err)
		}
		if err := grid.DropColumns(cols); err != nil {
			log.Fatalf("删除列失败: %v", err)
		}
	}

	cfg := layout.DefaultConfig()
	cfg.Orientation = *orientation
	if *dpi > 0 {
		cfg.DPI = *dpi
	}
	if *fontSize > 0 {
		cfg.BodySizePt = *fontSize
	}
	cfg.FontFamily = *fontFamily
	cfg.HeaderHex = resolveColor(*headerColor, cfg.HeaderHex)
	cfg.ZebraHex = resolveColor(*zebraColor, cfg.ZebraHex)
	cfg.Hyphenation = *hyphenMode
	cfg.BandRight = *headRight

	if err := run(grid, note, cfg, normalizeFormat(*format), outPath, *debug, *hyphenDir, *jpegQuality); err != nil {
		log.Fatalf("生成失败: %v", err)
	}
	fmt.Printf("已生成：%s\n", outPath)
}

// run 串联布局与渲染，并把结果写入目标文件。
func run(grid *table.Grid, note string, cfg layout.Config, format, outPath, debugPath, hyphenDir string, jpegQuality int) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}

	if format == "xlsx" {
		w := &xlsx.Writer{
			Orientation: cfg.Orientation,
			FitWidth:    true,
			MetaNote:    note,
			RightHeader: cfg.BandRight,
			HeaderHex:   cfg.HeaderHex,
		}
		data, err := w.Render(grid, nil)
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, data, 0o644)
	}

	pair, err := fonts.Find(cfg.FontFamily)
	if err != nil {
		return err
	}
	r, err := canvasrenderer.New(pair, cfg.DPI)
	if err != nil {
		return err
	}

	var hy layout.Hyphenator
	if cfg.Hyphenation != "off" {
		if p := hyphen.Load(hyphenDir, "de", "en"); p != nil {
			hy = p
		} else {
			log.Printf("未找到断词模式文件（目录 %s），长词将按字符硬切分", hyphenDir)
		}
	}

	plan, err := layout.Build(grid, cfg, layout.BuildOptions{
		Metrics:    r,
		Hyphenator: hy,
		Note:       note,
	})
	if err != nil {
		return err
	}
	if plan.Overflow {
		log.Print("列下限宽度超过可用页宽，部分内容可能溢出单元格")
	}
	if debugPath != "" {
		if err := layout.WriteDebugJSON(plan, debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	switch format {
	case "pdf":
		data, err := r.PDF().Render(grid, plan)
		if err != nil {
			return err
		}
		return os.WriteFile(outPath, data, 0o644)
	case "png", "jpg":
		pages, err := r.Raster(format, jpegQuality).RenderPages(grid, plan)
		if err != nil {
			return err
		}
		if len(pages) == 1 {
			return os.WriteFile(outPath, pages[0], 0o644)
		}
		// 多页位图按 name_01.ext、name_02.ext 编号保存。
		ext := filepath.Ext(outPath)
		base := strings.TrimSuffix(outPath, ext)
		for i, data := range pages {
			name := fmt.Sprintf("%s_%02d%s", base, i+1, ext)
			if err := os.WriteFile(name, data, 0o644); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("不支持的输出格式：%s", format)
	}
}

func readInput(path, kind, sep string, utf8Enc bool) (*table.Grid, string, error) {
	if kind == "auto" {
		if strings.EqualFold(filepath.Ext(path), ".txt") {
			kind = "cochrane"
		} else {
			kind = "csv"
		}
	}
	switch kind {
	case "cochrane":
		grid, err := table.ReadCochrane(path)
		if err != nil {
			return nil, "", err
		}
		note := ""
		if v := grid.Meta["Date Run"]; v != "" {
			note = "Date Run: " + v
		}
		return grid, note, nil
	case "csv":
		delim := ','
		if sep != "" {
			delim = []rune(sep)[0]
		}
		grid, err := table.ReadCSVGrid(path, delim, utf8Enc)
		if err != nil {
			return nil, "", err
		}
		return grid, "", nil
	default:
		return nil, "", fmt.Errorf("不支持的输入类型：%s", kind)
	}
}

// resolveColor 把预设名解析成十六进制颜色；已是 #RRGGBB 或未知名字时原样返回。
func resolveColor(value, fallback string) string {
	if value == "" {
		return fallback
	}
	if strings.HasPrefix(value, "#") {
		return value
	}
	if hex, ok := colorPresets[strings.ToLower(value)]; ok {
		return hex
	}
	return value
}

func parseColumnList(s string) ([]int, error) {
	var cols []int
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("无效的列号：%s", part)
		}
		cols = append(cols, n)
	}
	return cols, nil
}

func normalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "jpeg" {
		f = "jpg"
	}
	return f
}

func replaceExt(path, newExt string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + newExt
}
