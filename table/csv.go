package table

import (
	"encoding/csv"
	"fmt"
	"os"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadCSV 读取 CSV 文件并返回原始行。
// utf8Enc 为 true 时按 UTF-8（容忍 BOM）解码，否则按 Windows-1252 解码，
// 对应旧版 Excel 导出的两种常见编码。
func ReadCSV(path string, delimiter rune, utf8Enc bool) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开 CSV 文件 %s: %w", path, err)
	}
	defer file.Close()

	var enc encoding.Encoding
	if utf8Enc {
		enc = unicode.UTF8BOM
	} else {
		enc = charmap.Windows1252
	}

	reader := csv.NewReader(transform.NewReader(file, enc.NewDecoder()))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 CSV 文件 %s 失败: %w", path, err)
	}
	return rows, nil
}

// ReadCSVGrid 是 ReadCSV + New 的便捷组合。
func ReadCSVGrid(path string, delimiter rune, utf8Enc bool) (*Grid, error) {
	rows, err := ReadCSV(path, delimiter, utf8Enc)
	if err != nil {
		return nil, err
	}
	return New(rows)
}
