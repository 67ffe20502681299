package illustrate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu      sync.Mutex
	prompts []string
	fail    map[string]bool
	image   []byte
}

func (f *fakeSource) Synthesize(_ context.Context, prompt string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.fail[prompt] {
		return nil, ErrImageSynthesis
	}
	return f.image, nil
}

func threeSlotText() (string, []string) {
	paras := []string{
		strings.Repeat("甲", 120),
		"短",
		strings.Repeat("乙", 120),
		"短",
		strings.Repeat("丙", 120),
	}
	return strings.Join(paras, "\n\n"), []string{paras[0], paras[2], paras[4]}
}

func TestIllustrateSkipsFailuresAndKeepsOrder(t *testing.T) {
	text, prompts := threeSlotText()
	src := &fakeSource{fail: map[string]bool{prompts[1]: true}, image: solidPNG(t, 64, 48)}
	il, err := NewIllustrator(src, nil, 3, nil)
	require.NoError(t, err)

	got, err := il.Illustrate(context.Background(), text, Watermark{Text: "WM", Position: BottomRight})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageSynthesis)
	assert.Contains(t, err.Error(), "slot 1")

	require.Len(t, got, 2)
	assert.Equal(t, 0, got[0].Slot.Index)
	assert.Equal(t, 4, got[1].Slot.Index)
	for _, ill := range got {
		assert.Equal(t, 64, decode(t, ill.Image).Bounds().Dx())
	}
	assert.ElementsMatch(t, prompts, src.prompts)
}

func TestIllustrateWithoutWatermarkReturnsRawBytes(t *testing.T) {
	text, _ := threeSlotText()
	src := &fakeSource{image: []byte("raw")}
	il, err := NewIllustrator(src, nil, 0, nil)
	require.NoError(t, err)

	got, err := il.Illustrate(context.Background(), text, Watermark{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, ill := range got {
		assert.Equal(t, []byte("raw"), ill.Image)
	}
}

func TestIllustrateAllFailing(t *testing.T) {
	text, prompts := threeSlotText()
	fail := map[string]bool{}
	for _, p := range prompts {
		fail[p] = true
	}
	il, err := NewIllustrator(&fakeSource{fail: fail}, nil, 2, nil)
	require.NoError(t, err)
	got, err := il.Illustrate(context.Background(), text, Watermark{})
	assert.Empty(t, got)
	assert.Len(t, errorsIn(err), 3)
}

func TestIllustrateCanceledContext(t *testing.T) {
	text, _ := threeSlotText()
	src := &fakeSource{image: []byte("raw")}
	il, err := NewIllustrator(src, nil, 1, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	got, err := il.Illustrate(ctx, text, Watermark{})
	assert.Empty(t, got)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, src.prompts)
}

func TestNewIllustratorRequiresSource(t *testing.T) {
	_, err := NewIllustrator(nil, nil, 1, nil)
	assert.Error(t, err)
}

func errorsIn(err error) []error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		return u.Unwrap()
	}
	if err == nil {
		return nil
	}
	return []error{err}
}
