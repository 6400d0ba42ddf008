package layout

import (
	"math"
	"testing"
)

// TestMmPxRoundTrip 验证 mm↔px 换算在整像素栅格上的往返误差不超过半个像素。
func TestMmPxRoundTrip(t *testing.T) {
	for _, mm := range []float64{0, 1, 12, 25.4, 210, 297} {
		px := MmToPx(mm, 300)
		back := PxToMm(px, 300)
		if diff := math.Abs(back - mm); diff > 25.4/300.0/2+1e-9 {
			t.Fatalf("mm→px→mm 误差过大: in=%gmm px=%d back=%g", mm, px, back)
		}
	}
}

func TestPagePixelsA4(t *testing.T) {
	w, h, err := PagePixels("A4", "portrait", 300)
	if err != nil {
		t.Fatalf("A4 布局失败: %v", err)
	}
	if w != 2480 || h != 3508 {
		t.Fatalf("A4@300dpi 期望 2480x3508，实际 %dx%d", w, h)
	}
	lw, lh, err := PagePixels("a4", "landscape", 300)
	if err != nil {
		t.Fatalf("横向 A4 失败: %v", err)
	}
	if lw != h || lh != w {
		t.Fatalf("横向应交换宽高，实际 %dx%d", lw, lh)
	}
	if _, _, err := PagePixels("B5", "portrait", 300); err == nil {
		t.Fatal("未知纸张应当报错")
	}
}

func TestParseLength(t *testing.T) {
	cases := map[string]float64{
		"12":     12,
		"12mm":   12,
		"1in":    25.4,
		"2.54cm": 25.4,
		"72pt":   72 * PtToMm,
	}
	for in, want := range cases {
		if got := ParseLength(in); math.Abs(got-want) > 1e-6 {
			t.Fatalf("ParseLength(%q) 期望 %g，实际 %g", in, want, got)
		}
	}
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#F5F5F5")
	if err != nil || c != (Color{R: 0xF5, G: 0xF5, B: 0xF5}) {
		t.Fatalf("#F5F5F5 解析错误: %v %v", c, err)
	}
	c, err = ParseHexColor("abc")
	if err != nil || c != (Color{R: 0xAA, G: 0xBB, B: 0xCC}) {
		t.Fatalf("缩写形式解析错误: %v %v", c, err)
	}
	if _, err := ParseHexColor("zzz-12"); err == nil {
		t.Fatal("非法颜色应当报错")
	}
	if got := hexOrDefault("kaputt", defaultHeaderFill); got != defaultHeaderFill {
		t.Fatalf("解析失败应回退默认色，实际 %v", got)
	}
}
