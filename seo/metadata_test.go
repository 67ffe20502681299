package seo

import (
	"strings"
	"testing"

	"auto_seo_article_generator/article"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedFormat(t *testing.T) {
	text := "# 标题\n\n第一段内容\n\n## 小节\n\n第二段"
	want := BeginMarker + "\n" +
		"<title>标题</title>\n" +
		`<meta name="description" content="第一段内容">` + "\n" +
		`<meta name="keywords" content="标题, 第一段内容, 小节, 第二段">` + "\n" +
		EndMarker + "\n\n" + text
	assert.Equal(t, want, Embed(text))
}

func TestEmbedDefaults(t *testing.T) {
	m := Derive("## 二级标题")
	assert.Equal(t, DefaultTitle, m.Title)
	assert.Equal(t, DefaultTitle, m.Description)

	long := strings.Repeat("长", 300)
	m = Derive("# T\n\n" + long)
	assert.Equal(t, 200, article.Len(m.Description))
}

func TestExtractEmbedRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"# 标题\n\n段落一。\n\n## 小节\n\n段落二。",
		"\n\nleading blank\n\n\n\ntrailing\n",
		"<b>html & \"quotes\"</b>",
		Embed("# A\n\nbody"),
		"intro\n\n" + BeginMarker + "\nquoted\n" + EndMarker + "\n\nmore",
	}
	for _, in := range inputs {
		out := Extract(Embed(in))
		assert.Equal(t, in, out)
		if diff := cmp.Diff(article.Parse(in), article.Parse(out)); diff != "" {
			t.Errorf("block sequence changed (-want +got):\n%s", diff)
		}
	}
}

func TestExtractMalformed(t *testing.T) {
	missingEnd := BeginMarker + "\n<title>x</title>\n\nbody"
	assert.Equal(t, missingEnd, Extract(missingEnd))

	missingBegin := "<title>x</title>\n" + EndMarker + "\n\nbody"
	assert.Equal(t, missingBegin, Extract(missingBegin))

	reversed := EndMarker + "\nbody\n" + BeginMarker
	assert.Equal(t, reversed, Extract(reversed))
}

func TestExtractFirstBeginFirstEndAfter(t *testing.T) {
	text := "intro\n" + EndMarker + "\n" + BeginMarker + "\nmeta\n" + EndMarker + "\nafter\n" + EndMarker
	assert.Equal(t, "intro\n"+EndMarker+"\nafter\n"+EndMarker, Extract(text))
}

func TestEmbedOnlyPrepends(t *testing.T) {
	once := Embed("# A\n\nbody")
	twice := Embed(once)
	assert.Equal(t, 2, strings.Count(twice, BeginMarker))
	assert.True(t, strings.HasSuffix(twice, once))
	assert.Equal(t, once, Extract(twice))
}

func TestOptimizeKeepsSingleBlock(t *testing.T) {
	once := Optimize("# A\n\nbody")
	twice := Optimize(once)
	assert.Equal(t, 1, strings.Count(twice, BeginMarker))
	assert.Equal(t, once, twice)
}

func TestDecode(t *testing.T) {
	m, ok := Decode(Embed("# 人工智能 <AI>\n\n人工智能 改变 生活\n\n人工智能 改变 工作"))
	require.True(t, ok)
	assert.Equal(t, "人工智能 <AI>", m.Title)
	assert.Equal(t, "人工智能 改变 生活", m.Description)
	assert.Equal(t, []string{"人工智能", "改变", "ai", "生活", "工作"}, m.Keywords)

	_, ok = Decode("no block")
	assert.False(t, ok)
}

func TestOptimizeEmbedsMetadata(t *testing.T) {
	out := Optimize("# 标题\n\n#### 跳级\n\n正文。")
	assert.True(t, strings.HasPrefix(out, BeginMarker))
	body := Extract(out)
	assert.Contains(t, body, "## 跳级")
}
