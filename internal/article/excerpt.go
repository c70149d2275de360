package article

import (
	"strings"

	"golang.org/x/net/html"
)

// DefaultExcerptRunes は一覧表示用の抜粋の既定文字数。
const DefaultExcerptRunes = 120

// Excerpt はHTML本文からタグを除いたプレーンテキストの抜粋を生成する。
// maxRunes文字を超える場合は切り詰めて省略記号を付ける。
// パースに失敗した場合は入力をそのまま切り詰めて返す。
func Excerpt(htmlBody string, maxRunes int) string {
	text := extractText(htmlBody)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes]) + "…"
}

// extractText はHTMLからテキストノードのみを連結して取り出す。
// script/style内のテキストは含めない。
func extractText(htmlBody string) string {
	doc, err := html.Parse(strings.NewReader(htmlBody))
	if err != nil {
		return strings.TrimSpace(htmlBody)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
