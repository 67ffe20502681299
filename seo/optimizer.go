package seo

// Optimize 去掉已有的元信息块后，依次执行关键词密度调整、结构规范化和元信息写入。
func Optimize(text string) string {
	return Embed(Normalize(Balance(Extract(text))))
}
