// Package renderer 定义输出后端的公共接口。
package renderer

import (
	"github.com/Jumbo125/Searchlist-Converter/layout"
	"github.com/Jumbo125/Searchlist-Converter/table"
)

// Renderer 把布局结果连同原始表格渲染为单个文件的字节流（PDF、XLSX）。
// grid 提供未折行的原始单元格与元信息，plan 提供分页后的几何与折行内容。
type Renderer interface {
	Render(grid *table.Grid, plan *layout.Plan) ([]byte, error)
}

// PageRenderer 面向按页产出位图的格式（PNG、JPG），每页一个字节流。
type PageRenderer interface {
	RenderPages(grid *table.Grid, plan *layout.Plan) ([][]byte, error)
}
