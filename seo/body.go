package seo

import "auto_seo_article_generator/article"

// Body 剥离元信息块后解析正文。开头的一级标题作为文章标题单独返回，不计入正文块；
// 与标题同块的正文作为第一个正文段落。
func Body(text string) (title string, hasTitle bool, blocks []article.Block) {
	a := article.Parse(Extract(text))
	if len(a.Blocks) > 0 && a.Blocks[0].Kind == article.KindHeading && a.Blocks[0].Level == 1 {
		head := a.Blocks[0]
		if head.Body == "" {
			return head.Text, true, a.Blocks[1:]
		}
		// 标题下紧跟的正文留在原位置
		a.Blocks[0] = article.Block{Kind: article.KindParagraph, Text: head.Body, Raw: head.Body}
		return head.Text, true, a.Blocks
	}
	return "", false, a.Blocks
}
