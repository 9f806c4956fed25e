package service

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"Intro to   Go", "intro-to-go"},
		{"Tabs\tand\nnewlines", "tabs-and-newlines"},
		{"snake_case stays", "snake_case-stays"},
		{"Already-hyphenated Title", "already-hyphenated-title"},
		{"C++ & Data Structures (Part 1)", "c--data-structures-part-1"},
		{"Café Notes", "caf-notes"},
		{"!!!", ""},
	}

	for _, tc := range cases {
		if got := Slugify(tc.title); got != tc.want {
			t.Errorf("Slugify(%q) = %q，期望 %q", tc.title, got, tc.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	existing := map[string]bool{"intro": true, "intro-2": true}
	taken := func(s string) bool { return existing[s] }

	got, ok := uniqueSlug("intro", taken)
	if !ok || got != "intro-3" {
		t.Errorf("期望 intro-3，实际=%q ok=%v", got, ok)
	}

	got, ok = uniqueSlug("fresh", taken)
	if !ok || got != "fresh" {
		t.Errorf("期望 fresh，实际=%q ok=%v", got, ok)
	}

	_, ok = uniqueSlug("x", func(string) bool { return true })
	if ok {
		t.Error("全部冲突时应返回 ok=false")
	}
}

func TestPreviewContent(t *testing.T) {
	if got := previewContent("one two three four five", previewWords); got != "one two three four five..." {
		t.Errorf("5 个词的摘要不符: %q", got)
	}

	words := make([]string, 31)
	for i := range words {
		words[i] = "w"
	}
	words[29] = "last"
	words[30] = "dropped"
	got := previewContent(strings.Join(words, "  \n "), previewWords)
	want := strings.Join(words[:30], " ") + "..."
	if got != want {
		t.Errorf("31 个词应只保留前 30 个:\n got=%q\nwant=%q", got, want)
	}

	if got := previewContent("  padded   text  ", previewWords); got != "padded text..." {
		t.Errorf("首尾空白应被忽略: %q", got)
	}
}
