package render

import (
	"reflect"
	"testing"
)

func TestWrapText_WordWrap(t *testing.T) {
	got := WrapText("alpha beta gamma", 11)
	want := []string{"alpha beta", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapText = %v, want %v", got, want)
	}
}

func TestWrapText_PreservesBlankLines(t *testing.T) {
	got := WrapText("a\n\nb", 10)
	want := []string{"a", "", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapText = %v, want %v", got, want)
	}
}

func TestWrapText_BreaksLongWord(t *testing.T) {
	got := WrapText("abcdefghij", 4)
	want := []string{"abcd", "efgh", "ij"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapText = %v, want %v", got, want)
	}
}

func TestWrapText_WideRunesCountTwoColumns(t *testing.T) {
	// 每个汉字占两列，宽度 4 时一行最多两个。
	got := WrapText("你好世界", 4)
	want := []string{"你好", "世界"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapText = %v, want %v", got, want)
	}
}

func TestWrapText_ZeroWidthPassthrough(t *testing.T) {
	got := WrapText("anything at all", 0)
	if len(got) != 1 || got[0] != "anything at all" {
		t.Fatalf("WrapText = %v", got)
	}
}
