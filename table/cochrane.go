package table

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Cochrane Search Manager 的文本导出是按行组织的：
// 若干 "Key:\tValue" 元信息行、一个 "ID\tSearch\tHits" 表头行、
// 之后是检索行，长检索式会跨多行，行尾的 \t<数字> 表示命中数。
// 词法阶段用 participle 把每一行归类为 MetaLine/HeaderLine/Line，
// 语法阶段只负责"元信息在表头前、数据在表头后"的结构，
// 多行检索式的拼接在 Go 侧完成（与 dsl 解析一样，离不开后处理）。

var (
	cochraneLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "MetaLine", Pattern: `(?:Search Name|Date Run|Comment):\t[^\n]*\n`},
		{Name: "HeaderLine", Pattern: `ID[ \t]*\t[ \t]*Search[ \t]*\t[ \t]*Hits[ \t]*\n`},
		{Name: "Line", Pattern: `[^\n]*\n`},
	})

	cochraneParser = participle.MustBuild[cochraneExport](
		participle.Lexer(cochraneLexer),
	)

	cochraneIDRe   = regexp.MustCompile(`^#?(\d+)\t(.*)$`)
	cochraneHitsRe = regexp.MustCompile(`\t(\d+)[ \t]*$`)
	blankRe        = regexp.MustCompile(`\s+`)
)

// cochraneExport 是导出文件的语法结构：元信息与任意前导行、表头行、数据区。
type cochraneExport struct {
	Preamble []string `parser:"( @MetaLine | Line )*"`
	Header   string   `parser:"@HeaderLine"`
	Body     []string `parser:"( @Line | @MetaLine )*"`
}

// ReadCochrane 读取并解析 Cochrane Search Manager 导出文件。
func ReadCochrane(path string) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取导出文件 %s: %w", path, err)
	}
	return ParseCochrane(decodeExportText(raw))
}

// ParseCochrane 解析导出文本并组装为 Grid（表头固定为 ID/Search/Hits）。
func ParseCochrane(text string) (*Grid, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	doc, err := cochraneParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("找不到表头 'ID\\tSearch\\tHits'：%w", err)
	}

	meta := map[string]string{}
	for _, line := range doc.Preamble {
		key, value, ok := strings.Cut(strings.TrimSuffix(line, "\n"), ":\t")
		if ok {
			meta[key] = strings.TrimSpace(value)
		}
	}

	rows := assembleCochraneRows(doc.Body)
	g := &Grid{
		Header: []string{"ID", "Search", "Hits"},
		Rows:   rows,
		Meta:   meta,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// assembleCochraneRows 按原始导出语义拼接数据行：
// 以 ID 行开始一条记录，持续吸收后续行，直到某行以 \t<命中数> 结尾。
func assembleCochraneRows(lines []string) [][]string {
	var rows [][]string
	var buffer []string
	currentID := ""

	flush := func(finalChunk string, hits string) {
		parts := make([]string, 0, len(buffer)+1)
		for _, p := range buffer {
			parts = append(parts, strings.TrimSpace(strings.ReplaceAll(p, "\t", " ")))
		}
		if finalChunk != "" || len(parts) == 0 {
			parts = append(parts, strings.TrimSpace(strings.ReplaceAll(finalChunk, "\t", " ")))
		}
		search := strings.TrimSpace(blankRe.ReplaceAllString(strings.Join(parts, " "), " "))
		dispID := currentID
		if dispID != "" && !strings.HasPrefix(dispID, "#") {
			dispID = "#" + dispID
		}
		rows = append(rows, []string{dispID, search, strings.TrimSpace(hits)})
		buffer = nil
		currentID = ""
	}

	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := cochraneIDRe.FindStringSubmatch(line); m != nil && currentID == "" {
			currentID = m[1]
			rest := m[2]
			if hm := cochraneHitsRe.FindStringSubmatchIndex(rest); hm != nil {
				flush(rest[:hm[0]], rest[hm[2]:hm[3]])
			} else {
				buffer = []string{rest}
			}
			continue
		}
		if currentID != "" {
			if hm := cochraneHitsRe.FindStringSubmatchIndex(line); hm != nil {
				flush(line[:hm[0]], line[hm[2]:hm[3]])
			} else {
				buffer = append(buffer, line)
			}
		}
	}
	if currentID != "" && len(buffer) > 0 {
		flush("", "")
	}
	return rows
}

// decodeExportText 尽力把导出文件解码为 UTF-8 文本：
// 依次尝试 UTF-8、带 BOM 的 UTF-16、Windows-1252。
func decodeExportText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) || looksUTF16(raw) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		if bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
			dec = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		}
		if out, err := dec.Bytes(raw); err == nil && utf8.Valid(out) {
			return string(out)
		}
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(out)
	}
	return string(raw)
}

// looksUTF16 通过 NUL 字节占比猜测无 BOM 的 UTF-16。
func looksUTF16(raw []byte) bool {
	if len(raw) < 4 {
		return false
	}
	zeros := 0
	for _, b := range raw {
		if b == 0 {
			zeros++
		}
	}
	return zeros*3 > len(raw)
}
