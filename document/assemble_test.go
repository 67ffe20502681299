package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"auto_seo_article_generator/seo"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImages(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for i := 0; i < n; i++ {
		p := filepath.Join(dir, "img"+string(rune('a'+i))+".png")
		require.NoError(t, os.WriteFile(p, []byte("png"), 0o644))
		paths = append(paths, p)
	}
	return paths
}

func para(text string) Block { return Block{Kind: Paragraph, Text: text} }

func img(path string, n int) Block {
	return Block{Kind: Image, Path: path, Caption: Caption(n), Centered: true}
}

func TestAssembleSevenBlocksThreeImages(t *testing.T) {
	images := writeImages(t, 3)
	text := "# 标题\n\np1\n\np2\n\np3\n\np4\n\np5\n\np6\n\np7"
	doc := NewAssembler(nil).Assemble(text, images)

	want := Document{
		Title: "标题",
		Blocks: []Block{
			para("p1"), para("p2"), para("p3"), img(images[0], 1),
			para("p4"), para("p5"), para("p6"), img(images[1], 2),
			para("p7"), img(images[2], 3),
		},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
}

// 第一张图插在第三个正文块之后。按剩余图片追加到文末的规则，第二张图也会出现，
// 这与"只插入一张图、不多出图片块"的说法相矛盾；这里按追加规则断言两个图片块。
func TestAssembleScenario(t *testing.T) {
	images := writeImages(t, 2)
	a := strings.Repeat("A", 101)
	b := strings.Repeat("B", 150)
	doc := NewAssembler(nil).Assemble("# T\n\n"+a+"\n\nshort\n\n"+b, images)

	assert.Equal(t, "T", doc.Title)
	require.Len(t, doc.Blocks, 5)
	assert.Equal(t, img(images[0], 1), doc.Blocks[3])
	assert.Equal(t, img(images[1], 2), doc.Blocks[4])
	assert.Len(t, doc.Images(), len(images))
}

func TestAssembleHeadingBlockWithBodyIsOnePosition(t *testing.T) {
	images := writeImages(t, 1)
	doc := NewAssembler(nil).Assemble("## H\nbody\n\np2\n\np3\n\np4", images)

	want := Document{Blocks: []Block{
		{Kind: Heading, Level: 2, Text: "H"}, para("body"),
		para("p2"), para("p3"), img(images[0], 1),
		para("p4"),
	}}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("Assemble mismatch (-want +got):\n%s", diff)
	}
}

func TestAssembleTitleBlockWithBody(t *testing.T) {
	doc := NewAssembler(nil).Assemble("# T\n导语\n\np2", nil)
	assert.Equal(t, "T", doc.Title)
	assert.Equal(t, []Block{para("导语"), para("p2")}, doc.Blocks)
}

func TestAssembleMissingImageKeepsNumbering(t *testing.T) {
	images := writeImages(t, 3)
	require.NoError(t, os.Remove(images[1]))
	text := strings.Join([]string{"p1", "p2", "p3", "p4", "p5", "p6", "p7"}, "\n\n")
	doc := NewAssembler(nil).Assemble(text, images)

	got := doc.Images()
	require.Len(t, got, 2)
	assert.Equal(t, "图1", got[0].Caption)
	assert.Equal(t, "图3", got[1].Caption)
	// 第二张缺失：第 6 块后不插图，第三张仍在文末
	assert.Equal(t, para("p7"), doc.Blocks[len(doc.Blocks)-2])
}

func TestAssembleEmptyText(t *testing.T) {
	images := writeImages(t, 2)
	for _, text := range []string{"", "   \n\n  ", seo.Embed("")} {
		doc := NewAssembler(nil).Assemble(text, images)
		assert.True(t, doc.Empty(), "text %q", text)
		assert.Empty(t, doc.Images())
	}
}

func TestAssembleHeadingsAndMetadata(t *testing.T) {
	text := seo.Embed("# 主标题\n\n## 二级\n\n#### 四级\n\n正文  ")
	doc := NewAssembler(nil).Assemble(text, nil)
	assert.Equal(t, "主标题", doc.Title)
	assert.Equal(t, []Block{
		{Kind: Heading, Level: 2, Text: "二级"},
		{Kind: Heading, Level: 3, Text: "四级"},
		para("正文"),
	}, doc.Blocks)
}

func TestAssembleWithoutTitle(t *testing.T) {
	doc := NewAssembler(nil).Assemble("## 小节\n\n内容", nil)
	assert.Empty(t, doc.Title)
	assert.Equal(t, []Block{{Kind: Heading, Level: 2, Text: "小节"}, para("内容")}, doc.Blocks)
}

func TestAssembleTitleOnlyAppendsImages(t *testing.T) {
	images := writeImages(t, 1)
	doc := NewAssembler(nil).Assemble("# 只有标题", images)
	assert.Equal(t, "只有标题", doc.Title)
	assert.Equal(t, []Block{img(images[0], 1)}, doc.Blocks)
}
