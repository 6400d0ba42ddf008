// Package hyphen 在折行引擎之外提供可选的按音节断词能力。
// 模式文件（TeX hyphenation patterns）从磁盘目录装载；
// 目录缺失或没有任何可用语言时 Load 返回 nil，折行引擎随即退化为硬切分。
package hyphen

import (
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/speedata/hyphenation"
)

// 语言代码到模式文件名的映射。文件可从 CTAN 的 hyph-utf8 获得。
var patternFiles = map[string]string{
	"de": "hyph-de-1996.pat.txt",
	"en": "hyph-en-us.pat.txt",
}

// Provider 持有已装载的断词语言，装载后只读，可被多个渲染协程共用。
type Provider struct {
	langs map[string]*hyphenation.Lang
}

// Load 在 dir 下按语言代码查找模式文件并装载。
// 任何单个语言装载失败都只是跳过；一个都没装上则返回 nil。
func Load(dir string, codes ...string) *Provider {
	p := &Provider{langs: map[string]*hyphenation.Lang{}}
	for _, code := range codes {
		name, ok := patternFiles[code]
		if !ok {
			continue
		}
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		lang, err := hyphenation.New(f)
		f.Close()
		if err != nil {
			continue
		}
		p.langs[code] = lang
	}
	if len(p.langs) == 0 {
		return nil
	}
	return p
}

// Languages 返回已装载的语言代码，仅用于日志输出。
func (p *Provider) Languages() []string {
	if p == nil {
		return nil
	}
	out := make([]string, 0, len(p.langs))
	for code := range p.langs {
		out = append(out, code)
	}
	return out
}

// BreakPoints 返回 word 中允许断开的位置（rune 下标，升序）。
// 语言未装载或词太短时返回 nil。
func (p *Provider) BreakPoints(word, lang string) []int {
	if p == nil {
		return nil
	}
	l := p.langs[lang]
	if l == nil || utf8.RuneCountInString(word) < 4 {
		return nil
	}
	return l.Hyphenate(word)
}
