package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewBuilder_Validates(t *testing.T) {
	_, err := NewBuilder(0, 0, nil)
	assert.Error(t, err)

	_, err = NewBuilder(10, 10, nil)
	assert.Error(t, err)

	_, err = NewBuilder(10, -1, nil)
	assert.Error(t, err)

	b, err := NewBuilder(DefaultChunkSize, DefaultChunkOverlap, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultJunkPhrases, b.junkPhrases)
}

func Test_Split(t *testing.T) {
	var cases = []struct {
		input   string
		size    int
		overlap int
		output  []string
	}{
		{input: "abcdefg", size: 3, overlap: 0, output: []string{"abc", "def", "g"}},
		{input: "abcdefg", size: 3, overlap: 1, output: []string{"abc", "cde", "efg"}},
		{input: "abcdefg", size: 9, overlap: 5, output: []string{"abcdefg"}},
		{input: "aaaaaaa\nbbbbbbbbbb", size: 10, overlap: 2, output: []string{"aaaaaaa", "aa\nbbbbbbb", "bbbbb"}},
		{input: "ab\ncdefghijklmn", size: 10, overlap: 0, output: []string{"ab\ncdefghi", "jklmn"}},
		{input: "", size: 9, overlap: 5, output: nil},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			b, err := NewBuilder(c.size, c.overlap, nil)
			require.NoError(t, err)

			var out []string
			for _, w := range b.Split(c.input) {
				out = append(out, w.Text)
			}
			assert.Equal(t, c.output, out)
		})
	}
}

func Test_Split_BacksOffToNewline(t *testing.T) {
	b, err := NewBuilder(10, 2, nil)
	require.NoError(t, err)

	windows := b.Split("aaaaaaa\nbbbbbbbbbb")
	assert.Equal(t, []Window{
		{Start: 0, End: 7, Text: "aaaaaaa"},
		{Start: 5, End: 15, Text: "aa\nbbbbbbb"},
		{Start: 13, End: 18, Text: "bbbbb"},
	}, windows)
}

func Test_Split_ExactChunkSize(t *testing.T) {
	b, err := NewBuilder(DefaultChunkSize, DefaultChunkOverlap, nil)
	require.NoError(t, err)

	text := strings.Repeat("x", DefaultChunkSize)
	windows := b.Split(text)
	require.Len(t, windows, 1)
	assert.Equal(t, 0, windows[0].Start)
	assert.Equal(t, DefaultChunkSize, windows[0].End)
	assert.Equal(t, text, windows[0].Text)
}

func Test_Split_CoversTextAndTerminates(t *testing.T) {
	text := strings.Repeat("lorem\nipsum dolor\nsit amet consectetur\n", 40)
	l := len([]rune(text))

	for size := 4; size <= 120; size += 7 {
		for overlap := 0; overlap < size; overlap += 3 {
			t.Run(fmt.Sprintf("size_%d_overlap_%d", size, overlap), func(t *testing.T) {
				b, err := NewBuilder(size, overlap, nil)
				require.NoError(t, err)

				windows := b.Split(text)
				require.NotEmpty(t, windows)
				assert.Equal(t, 0, windows[0].Start)
				assert.Equal(t, l, windows[len(windows)-1].End)

				for i := 1; i < len(windows); i++ {
					prev, cur := windows[i-1], windows[i]
					assert.Greater(t, cur.Start, prev.Start, "start must advance")
					assert.LessOrEqual(t, cur.Start, prev.End, "windows must not leave gaps")
					assert.LessOrEqual(t, len([]rune(cur.Text)), size)
				}
			})
		}
	}
}

func Test_Split_MergesWhitespaceWindows(t *testing.T) {
	cases := []struct {
		text     string
		size     int
		expected []Window
	}{
		{
			text:     "abcdefghij\n",
			size:     10,
			expected: []Window{{Start: 0, End: 11, Text: "abcdefghij"}},
		},
		{
			text:     "   \nabc",
			size:     4,
			expected: []Window{{Start: 0, End: 7, Text: "abc"}},
		},
		{
			text:     " \n \n ",
			size:     2,
			expected: nil,
		},
	}

	for i, c := range cases {
		t.Run(fmt.Sprintf("case_%d", i), func(t *testing.T) {
			b, err := NewBuilder(c.size, 0, nil)
			require.NoError(t, err)
			assert.Equal(t, c.expected, b.Split(c.text))
		})
	}
}

func Test_Split_CountsRunes(t *testing.T) {
	b, err := NewBuilder(3, 0, nil)
	require.NoError(t, err)

	windows := b.Split("ééééé")
	require.Len(t, windows, 2)
	assert.Equal(t, "ééé", windows[0].Text)
	assert.Equal(t, "éé", windows[1].Text)
	assert.Equal(t, 5, windows[1].End)
}

func Test_BuildPage(t *testing.T) {
	b, err := NewBuilder(DefaultChunkSize, DefaultChunkOverlap, nil)
	require.NoError(t, err)

	chunks := b.BuildPage("charts.pdf", PageContent{
		Number: 12,
		Text:   "Manulife Travel Insurance\nEmergency dental pain relief $300\nBack to home",
		Tables: [][][]string{{{"Feature", "Emergency Medical", "TravelEase"}, {"Dental", "$3,000", ""}}},
	})

	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.Equal(t, "charts.pdf", c.Source)
	assert.Equal(t, 12, c.Page)
	assert.Nil(t, c.Section)
	assert.Equal(t, "Page 12 - charts.pdf\n\nEmergency dental pain relief $300\n\n### DATA TABLE:\n"+
		"| Feature | Emergency Medical | TravelEase |\n| Dental | $3,000 |  |", c.Text)
	assert.Equal(t, 0, c.Metadata[CharStart])
	assert.NotContains(t, c.Text, "Back to home")
	require.NoError(t, c.Validate())
}

func Test_BuildPage_EmptyPage(t *testing.T) {
	b, err := NewBuilder(DefaultChunkSize, DefaultChunkOverlap, nil)
	require.NoError(t, err)

	chunks := b.BuildPage("charts.pdf", PageContent{Number: 3})
	require.Len(t, chunks, 1)
	assert.Equal(t, "Page 3 - charts.pdf\n\n\n\n### DATA TABLE:", chunks[0].Text)
	assert.Equal(t, len([]rune(ComposePage(3, "charts.pdf", "", nil))), chunks[0].Metadata[CharEnd])
}

func Test_BuildPage_LongPageSplits(t *testing.T) {
	b, err := NewBuilder(200, 50, nil)
	require.NoError(t, err)

	text := strings.Repeat("Trip cancellation covers up to the insured amount.\n", 20)
	chunks := b.BuildPage("charts.pdf", PageContent{Number: 1, Text: text})
	require.Greater(t, len(chunks), 1)

	for _, c := range chunks {
		assert.Equal(t, 1, c.Page)
		assert.LessOrEqual(t, len([]rune(c.Text)), 200)
		assert.Less(t, c.Metadata[CharStart].(int), c.Metadata[CharEnd].(int))
	}
}
