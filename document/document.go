// Package document 把规范化后的文章和配图组装成图文混排的文档结构。
package document

import "auto_seo_article_generator/seo"

// MaxHeadingLevel 是正文标题在输出文档中的最深层级；0 级保留给文档标题。
const MaxHeadingLevel = 3

// BlockKind 区分文档块类型。
type BlockKind string

const (
	Heading   BlockKind = "heading"
	Paragraph BlockKind = "paragraph"
	Image     BlockKind = "image"
)

// Block 是文档中的一个块。
type Block struct {
	Kind     BlockKind `json:"kind"`
	Level    int       `json:"level,omitempty"`
	Text     string    `json:"text,omitempty"`
	Path     string    `json:"path,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Centered bool      `json:"centered,omitempty"`
}

// Document 是待渲染的最终文档，组装后不再修改。
type Document struct {
	Title    string       `json:"title,omitempty"`
	Metadata seo.Metadata `json:"metadata"`
	Blocks   []Block      `json:"blocks"`
}

// Images 返回所有图片块。
func (d Document) Images() []Block {
	var out []Block
	for _, b := range d.Blocks {
		if b.Kind == Image {
			out = append(out, b)
		}
	}
	return out
}

// Empty 报告文档是否既无标题也无正文。
func (d Document) Empty() bool {
	return d.Title == "" && len(d.Blocks) == 0
}
