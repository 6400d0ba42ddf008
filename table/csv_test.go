package table

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("写入测试文件失败: %v", err)
	}
	return path
}

// TestReadCSVGridUTF8 验证 UTF-8 CSV（含 BOM）按分号分隔被正确读入。
func TestReadCSVGridUTF8(t *testing.T) {
	content := "\uFEFFID;Search;Hits\n#1;cancer;10\n#2;\"a;b\";20\n"
	path := writeFile(t, "in.csv", []byte(content))

	g, err := ReadCSVGrid(path, ';', true)
	if err != nil {
		t.Fatalf("ReadCSVGrid 失败: %v", err)
	}
	if !reflect.DeepEqual(g.Header, []string{"ID", "Search", "Hits"}) {
		t.Fatalf("表头不符: %v", g.Header)
	}
	if !reflect.DeepEqual(g.Rows[1], []string{"#2", "a;b", "20"}) {
		t.Fatalf("带引号的字段解析不符: %v", g.Rows[1])
	}
}

// TestReadCSVGridCP1252 验证 Windows-1252 编码的德语变音字符被正确解码。
func TestReadCSVGridCP1252(t *testing.T) {
	// "Name,Wert\nMüller,1\n"，其中 ü 为 CP1252 的 0xFC。
	raw := []byte("Name,Wert\nM\xfcller,1\n")
	path := writeFile(t, "legacy.csv", raw)

	g, err := ReadCSVGrid(path, ',', false)
	if err != nil {
		t.Fatalf("ReadCSVGrid 失败: %v", err)
	}
	if g.Rows[0][0] != "Müller" {
		t.Fatalf("CP1252 解码不符: %q", g.Rows[0][0])
	}
}

func TestReadCSVRaggedRows(t *testing.T) {
	content := "A,B,C\n1,2\n3,4,5,6\n"
	path := writeFile(t, "ragged.csv", []byte(content))

	rows, err := ReadCSV(path, ',', true)
	if err != nil {
		t.Fatalf("ReadCSV 应容忍列数不一致: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("应读到 3 行，实际 %d", len(rows))
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	if _, err := ReadCSV(filepath.Join(t.TempDir(), "nope.csv"), ',', true); err == nil {
		t.Fatal("不存在的文件应报错")
	}
}
