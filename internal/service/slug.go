package service

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reSlugStrip  = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// previewWords 文章列表中摘要保留的词数
const previewWords = 30

// maxSlugSuffix 同一科目内 slug 冲突时尝试的最大后缀
const maxSlugSuffix = 100

// Slugify 由标题生成 slug：转小写，空白串替换为 "-"，去掉 [A-Za-z0-9_-] 之外的字符。
// 例："Hello, World!" → "hello-world"
func Slugify(title string) string {
	s := strings.ToLower(title)
	s = reWhitespace.ReplaceAllString(s, "-")
	return reSlugStrip.ReplaceAllString(s, "")
}

// uniqueSlug 在科目已有 slug 集合中为 base 选择一个不冲突的值，依次尝试 base、base-2、base-3 …
func uniqueSlug(base string, taken func(string) bool) (string, bool) {
	if !taken(base) {
		return base, true
	}
	for i := 2; i <= maxSlugSuffix; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// previewContent 取正文前 n 个词（按空白串切分，以单个空格连接），并总是追加 "..."
func previewContent(content string, n int) string {
	words := strings.Fields(content)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ") + "..."
}
