package layout

// FontSpec 描述测量与绘制所需的字体：族名、字号（pt）、是否加粗。
// 族名为空时由 Metrics 实现选择默认字体。
type FontSpec struct {
	Family string `json:"family"`
	SizePt int    `json:"sizePt"`
	Bold   bool   `json:"bold"`
}

// Metrics 提供文本测量能力：返回给定字体下字符串的渲染宽度与单行行高（像素）。
// 对同一输入必须返回相同结果，布局的可复现性依赖于此。
type Metrics interface {
	Measure(text string, font FontSpec) (widthPx, lineHeightPx int)
}

// Hyphenator 为单词提供合法断点（rune 偏移，升序）。可选能力：
// 不存在时折行引擎静默退化为硬切分。
type Hyphenator interface {
	BreakPoints(word string, lang string) []int
}

// BuildOptions 配置布局阶段所需的依赖与输入附件。
type BuildOptions struct {
	Metrics    Metrics
	Hyphenator Hyphenator // 可为 nil
	// Note 是渲染在页眉带左侧的单行元信息（例如解析出的 Date Run）。
	Note string
}

// Config 是一次布局运行的全部可配置项，作为不可变值传入 Build。
// 引擎自身不持有任何全局状态。
type Config struct {
	PageSize    string  // A4 / A5 / Letter
	Orientation string  // portrait / landscape
	DPI         int     // 默认 300
	MarginMM    float64 // 四边等宽页边距，默认 12mm

	FontFamily     string // 空表示由测量后端选择默认字体
	BodySizePt     int    // 0 = 默认 24pt
	HeaderSizePt   int    // 0 = BodySizePt + HeaderOffsetPt，且允许收缩；>0 视为固定
	HeaderOffsetPt int    // 默认 +4pt
	MinHeaderPt    int    // 表头收缩下限，默认 16pt
	ShrinkStepPt   int    // 收缩步长，默认 2pt

	HeaderChunk int // 表头硬切分字符数，默认 5
	BodyChunk   int // 正文硬切分字符数，默认 18

	ColShare      float64 // 普通列宽上限占可用宽度比例，默认 0.45
	QueryColShare float64 // 查询列宽上限比例，默认 0.60
	QueryPattern  string  // 查询算子匹配正则，空用内置模式

	// Hyphenation 取值 "auto"（按表头变音符号猜测语言）、"off" 或语言代码（如 "de"）。
	Hyphenation string

	PadX    int // 单元格水平内边距（px），默认 16
	PadY    int // 单元格垂直内边距（px），默认 12
	LineGap int // 行间距（px），默认 6

	HeaderHex string // 表头行填充色，默认 #F5F5F5
	ZebraHex  string // 斑马条纹填充色，默认 #FCFCFC

	// 页眉带模板：中间与右侧文本经 binding.Interpolate 展开，
	// 可引用 ${page}、${pages} 与 ${meta.*}。
	BandCenter string // 默认 "Seite ${page}/${pages}"
	BandRight  string
}

// DefaultConfig 返回与原始转换器一致的默认配置。
func DefaultConfig() Config {
	return Config{
		PageSize:       "A4",
		Orientation:    "portrait",
		DPI:            300,
		MarginMM:       12,
		BodySizePt:     24,
		HeaderOffsetPt: 4,
		MinHeaderPt:    16,
		ShrinkStepPt:   2,
		HeaderChunk:    5,
		BodyChunk:      18,
		ColShare:       0.45,
		QueryColShare:  0.60,
		Hyphenation:    "auto",
		PadX:           16,
		PadY:           12,
		LineGap:        6,
		HeaderHex:      "#F5F5F5",
		ZebraHex:       "#FCFCFC",
		BandCenter:     "Seite ${page}/${pages}",
	}
}

// withDefaults 把零值字段补齐为默认值，保证 Build 内部不再判空。
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PageSize == "" {
		c.PageSize = def.PageSize
	}
	if c.Orientation == "" {
		c.Orientation = def.Orientation
	}
	if c.DPI <= 0 {
		c.DPI = def.DPI
	}
	if c.MarginMM <= 0 {
		c.MarginMM = def.MarginMM
	}
	if c.BodySizePt <= 0 {
		c.BodySizePt = def.BodySizePt
	}
	if c.HeaderOffsetPt <= 0 {
		c.HeaderOffsetPt = def.HeaderOffsetPt
	}
	if c.MinHeaderPt <= 0 {
		c.MinHeaderPt = def.MinHeaderPt
	}
	if c.ShrinkStepPt <= 0 {
		c.ShrinkStepPt = def.ShrinkStepPt
	}
	if c.HeaderChunk <= 0 {
		c.HeaderChunk = def.HeaderChunk
	}
	if c.BodyChunk <= 0 {
		c.BodyChunk = def.BodyChunk
	}
	if c.ColShare <= 0 {
		c.ColShare = def.ColShare
	}
	if c.QueryColShare <= 0 {
		c.QueryColShare = def.QueryColShare
	}
	if c.Hyphenation == "" {
		c.Hyphenation = def.Hyphenation
	}
	if c.PadX <= 0 {
		c.PadX = def.PadX
	}
	if c.PadY <= 0 {
		c.PadY = def.PadY
	}
	if c.LineGap <= 0 {
		c.LineGap = def.LineGap
	}
	if c.HeaderHex == "" {
		c.HeaderHex = def.HeaderHex
	}
	if c.ZebraHex == "" {
		c.ZebraHex = def.ZebraHex
	}
	if c.BandCenter == "" {
		c.BandCenter = def.BandCenter
	}
	return c
}
