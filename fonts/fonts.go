// Package fonts 定位渲染使用的系统字体文件。
// 不随程序内嵌字体，按平台常见安装路径逐组探测。
package fonts

import (
	"fmt"
	"os"
	"strings"
)

// Pair 是一组常规/粗体字体文件路径。
type Pair struct {
	Name    string
	Regular string
	Bold    string
}

var candidates = []Pair{
	{Name: "Segoe UI", Regular: `C:\Windows\Fonts\segoeui.ttf`, Bold: `C:\Windows\Fonts\segoeuib.ttf`},
	{Name: "Arial", Regular: `C:\Windows\Fonts\arial.ttf`, Bold: `C:\Windows\Fonts\arialbd.ttf`},
	{Name: "Calibri", Regular: `C:\Windows\Fonts\calibri.ttf`, Bold: `C:\Windows\Fonts\calibrib.ttf`},
	{
		Name:    "DejaVu Sans",
		Regular: "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		Bold:    "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	},
	{
		Name:    "Arial",
		Regular: "/System/Library/Fonts/Supplemental/Arial.ttf",
		Bold:    "/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	},
	{Name: "Helvetica", Regular: "/System/Library/Fonts/Helvetica.ttc", Bold: "/System/Library/Fonts/Helvetica.ttc"},
}

// Find 返回第一组常规与粗体文件都存在的字体。
// family 非空时优先精确匹配字体名，匹配不到则回落到默认探测顺序。
func Find(family string) (Pair, error) {
	if family != "" {
		for _, c := range candidates {
			if strings.EqualFold(c.Name, family) && c.available() {
				return c, nil
			}
		}
		// family 也可以直接给一个 .ttf 路径（常规与粗体共用）。
		if _, err := os.Stat(family); err == nil {
			return Pair{Name: family, Regular: family, Bold: family}, nil
		}
	}
	for _, c := range candidates {
		if c.available() {
			return c, nil
		}
	}
	return Pair{}, fmt.Errorf("未找到可用的系统字体，请通过 -font 指定字体文件")
}

func (p Pair) available() bool {
	if _, err := os.Stat(p.Regular); err != nil {
		return false
	}
	_, err := os.Stat(p.Bold)
	return err == nil
}
