package publisher

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"time"

	"auto_seo_article_generator/document"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

// OOXML 命名空间与关系类型。
const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"

	relStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// 图片宽 6 英寸（EMU）。
const imageWidthEMU = 6 * 914400

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Default Extension="jpeg" ContentType="image/jpeg"/>
  <Default Extension="gif" ContentType="image/gif"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
  <Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

const appXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>auto_seo_article_generator</Application></Properties>`

// 样式：正文 微软雅黑 12pt；标题 1~3 级 18/16/14pt 加粗黑色；图注 10pt 斜体灰色。
const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:docDefaults>
    <w:rPrDefault><w:rPr><w:rFonts w:ascii="微软雅黑" w:hAnsi="微软雅黑" w:eastAsia="微软雅黑" w:cs="微软雅黑"/><w:sz w:val="24"/></w:rPr></w:rPrDefault>
    <w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault>
  </w:docDefaults>
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>
  <w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
    <w:pPr><w:jc w:val="center"/><w:spacing w:after="240"/></w:pPr><w:rPr><w:b/><w:color w:val="000000"/><w:sz w:val="44"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="240"/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:color w:val="000000"/><w:sz w:val="36"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:color w:val="000000"/><w:sz w:val="32"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
    <w:pPr><w:keepNext/><w:spacing w:before="200"/><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:color w:val="000000"/><w:sz w:val="28"/></w:rPr></w:style>
  <w:style w:type="paragraph" w:styleId="Caption"><w:name w:val="caption"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>
    <w:pPr><w:jc w:val="center"/></w:pPr><w:rPr><w:i/><w:color w:val="595959"/><w:sz w:val="20"/></w:rPr></w:style>
</w:styles>`

// 以下结构只用于写出 word/document.xml。
type wDocument struct {
	XMLName  xml.Name `xml:"w:document"`
	XmlnsW   string   `xml:"xmlns:w,attr"`
	XmlnsR   string   `xml:"xmlns:r,attr"`
	XmlnsWP  string   `xml:"xmlns:wp,attr"`
	XmlnsA   string   `xml:"xmlns:a,attr"`
	XmlnsPic string   `xml:"xmlns:pic,attr"`
	Body     wBody    `xml:"w:body"`
}

type wBody struct {
	Paragraphs []wParagraph `xml:"w:p"`
}

type wParagraph struct {
	Props *wParagraphProps `xml:"w:pPr"`
	Runs  []wRun           `xml:"w:r"`
}

type wParagraphProps struct {
	Style         *wVal `xml:"w:pStyle"`
	Justification *wVal `xml:"w:jc"`
}

type wVal struct {
	Val string `xml:"w:val,attr"`
}

type wRun struct {
	Props   *wRunProps `xml:"w:rPr"`
	Text    *wText     `xml:"w:t"`
	Drawing *wDrawing  `xml:"w:drawing"`
}

type wRunProps struct {
	Italic *struct{} `xml:"w:i"`
}

type wText struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type wDrawing struct {
	Inline string `xml:",innerxml"`
}

type coreProperties struct {
	XMLName     xml.Name `xml:"cp:coreProperties"`
	XmlnsCP     string   `xml:"xmlns:cp,attr"`
	XmlnsDC     string   `xml:"xmlns:dc,attr"`
	XmlnsDCT    string   `xml:"xmlns:dcterms,attr"`
	XmlnsXSI    string   `xml:"xmlns:xsi,attr"`
	Title       string   `xml:"dc:title"`
	Description string   `xml:"dc:description"`
	Keywords    string   `xml:"cp:keywords"`
	Creator     string   `xml:"dc:creator"`
	Created     w3cDate  `xml:"dcterms:created"`
}

type w3cDate struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type relationships struct {
	XMLName xml.Name       `xml:"Relationships"`
	Xmlns   string         `xml:"xmlns,attr"`
	Items   []relationship `xml:"Relationship"`
}

type relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type media struct {
	name string
	data []byte
}

// docxBuilder 逐块构造文档正文与图片关系。
type docxBuilder struct {
	logger *zap.Logger
	body   wBody
	rels   []relationship
	media  []media
}

func newDocxBuilder(logger *zap.Logger) *docxBuilder {
	return &docxBuilder{
		logger: logger,
		rels:   []relationship{{ID: "rId1", Type: relStyles, Target: "styles.xml"}},
	}
}

func (b *docxBuilder) paragraph(style, jc, text string, italic bool) {
	p := wParagraph{}
	if style != "" || jc != "" {
		p.Props = &wParagraphProps{}
		if style != "" {
			p.Props.Style = &wVal{Val: style}
		}
		if jc != "" {
			p.Props.Justification = &wVal{Val: jc}
		}
	}
	if text != "" {
		r := wRun{Text: &wText{Space: "preserve", Value: text}}
		if italic {
			r.Props = &wRunProps{Italic: &struct{}{}}
		}
		p.Runs = append(p.Runs, r)
	}
	b.body.Paragraphs = append(b.body.Paragraphs, p)
}

// image 嵌入一张图片及其图注；图片无法读取或解码时跳过并记录警告。
func (b *docxBuilder) image(blk document.Block) {
	data, err := os.ReadFile(blk.Path)
	if err != nil {
		b.logger.Warn("image unreadable, skipped", zap.String("path", blk.Path), zap.Error(err))
		return
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 {
		b.logger.Warn("image undecodable, skipped", zap.String("path", blk.Path), zap.Error(err))
		return
	}
	ext := format
	switch format {
	case "png", "jpeg", "gif":
	default:
		// Word 不支持的格式统一转成 PNG
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			b.logger.Warn("image conversion failed, skipped", zap.String("path", blk.Path), zap.Error(err))
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			b.logger.Warn("image conversion failed, skipped", zap.String("path", blk.Path), zap.Error(err))
			return
		}
		data, ext = buf.Bytes(), "png"
	}

	n := len(b.media) + 1
	name := fmt.Sprintf("image%d.%s", n, ext)
	relID := fmt.Sprintf("rId%d", len(b.rels)+1)
	b.media = append(b.media, media{name: name, data: data})
	b.rels = append(b.rels, relationship{ID: relID, Type: relImage, Target: "media/" + name})

	cx := imageWidthEMU
	cy := cx * cfg.Height / cfg.Width

	b.paragraph("", "", "", false)
	pic := wParagraph{Runs: []wRun{{Drawing: &wDrawing{Inline: inlineDrawing(n, name, relID, cx, cy)}}}}
	if blk.Centered {
		pic.Props = &wParagraphProps{Justification: &wVal{Val: "center"}}
	}
	b.body.Paragraphs = append(b.body.Paragraphs, pic)
	b.paragraph("Caption", "center", blk.Caption, true)
	b.paragraph("", "", "", false)
}

func inlineDrawing(id int, name, relID string, cx, cy int) string {
	return fmt.Sprintf(`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%[4]d" cy="%[5]d"/>`+
		`<wp:docPr id="%[1]d" name="Picture %[1]d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%[1]d" name="%[2]s"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%[3]s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%[4]d" cy="%[5]d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline>`,
		id, name, relID, cx, cy)
}

// encodeDOCX 把文档写成 .docx（Office Open XML）包。
func encodeDOCX(w io.Writer, doc document.Document, created time.Time, logger *zap.Logger) error {
	b := newDocxBuilder(logger)
	if doc.Title != "" {
		b.paragraph("Title", "center", doc.Title, false)
	}
	for _, blk := range doc.Blocks {
		switch blk.Kind {
		case document.Heading:
			b.paragraph(fmt.Sprintf("Heading%d", min(max(blk.Level, 1), document.MaxHeadingLevel)), "", blk.Text, false)
		case document.Paragraph:
			b.paragraph("Normal", "", blk.Text, false)
		case document.Image:
			b.image(blk)
		}
	}

	zw := zip.NewWriter(w)
	parts := []struct {
		name string
		data func() ([]byte, error)
	}{
		{"[Content_Types].xml", static(contentTypesXML)},
		{"_rels/.rels", static(packageRelsXML)},
		{"docProps/app.xml", static(appXML)},
		{"docProps/core.xml", func() ([]byte, error) { return marshalXML(core(doc, created)) }},
		{"word/styles.xml", static(stylesXML)},
		{"word/document.xml", func() ([]byte, error) {
			return marshalXML(wDocument{
				XmlnsW: nsW, XmlnsR: nsR, XmlnsWP: nsWP, XmlnsA: nsA, XmlnsPic: nsPic,
				Body: b.body,
			})
		}},
		{"word/_rels/document.xml.rels", func() ([]byte, error) {
			return marshalXML(relationships{Xmlns: "http://schemas.openxmlformats.org/package/2006/relationships", Items: b.rels})
		}},
	}
	for _, m := range b.media {
		data := m.data
		parts = append(parts, struct {
			name string
			data func() ([]byte, error)
		}{"word/media/" + m.name, func() ([]byte, error) { return data, nil }})
	}

	for _, part := range parts {
		data, err := part.data()
		if err != nil {
			return fmt.Errorf("docx: encode %s: %w", part.name, err)
		}
		f, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("docx: create %s: %w", part.name, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("docx: write %s: %w", part.name, err)
		}
	}
	return zw.Close()
}

func core(doc document.Document, created time.Time) coreProperties {
	title := doc.Metadata.Title
	if title == "" {
		title = doc.Title
	}
	keywords := ""
	for i, kw := range doc.Metadata.Keywords {
		if i > 0 {
			keywords += ", "
		}
		keywords += kw
	}
	return coreProperties{
		XmlnsCP:     "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XmlnsDC:     "http://purl.org/dc/elements/1.1/",
		XmlnsDCT:    "http://purl.org/dc/terms/",
		XmlnsXSI:    "http://www.w3.org/2001/XMLSchema-instance",
		Title:       title,
		Description: doc.Metadata.Description,
		Keywords:    keywords,
		Creator:     "auto_seo_article_generator",
		Created:     w3cDate{Type: "dcterms:W3CDTF", Value: created.UTC().Format(time.RFC3339)},
	}
}

func static(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

func marshalXML(v any) ([]byte, error) {
	data, err := xml.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}
