package oas

import (
	"strings"
)

// SummaryMaxLength summary最大长度
const SummaryMaxLength = 120

// NormalizeIndent 去除文档注释的公共缩进
// 第一行不参与公共缩进的计算 空行忽略
func NormalizeIndent(doc string) string {
	lines := strings.Split(doc, "\n")
	first, rest := lines[0], lines[1:]

	var common string
	found := false
	for _, line := range rest {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if !found {
			common, found = indent, true
			continue
		}
		for !strings.HasPrefix(indent, common) {
			common = common[:len(common)-1]
		}
	}

	out := make([]string, 0, len(lines))
	out = append(out, first)
	for _, line := range rest {
		if len(line) >= len(common) {
			line = line[len(common):]
		} else {
			line = strings.TrimLeft(line, " \t")
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Summarize 取文档的第一行作为summary
func Summarize(doc string) string {
	s := strings.TrimSpace(doc)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > SummaryMaxLength {
		r = r[:SummaryMaxLength]
	}
	return strings.TrimSpace(string(r))
}
