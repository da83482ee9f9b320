package mdadapter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testResolver map[int]entity.FileSet

func (r testResolver) Set(cycle int) (entity.FileSet, bool) {
	set, ok := r[cycle]

	return set, ok
}

func newTestAdapter(fs afero.Fs) *noticeAdapter {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	return NewNoticeAdapter(fs, testResolver{
		1: {ID: "A", Name: "Set A.pdf"},
		2: {ID: "B", Name: "Set <B>.pdf"},
	}, log)
}

func TestConvert(t *testing.T) {
	testCases := []struct {
		name        string
		src         string
		title       string
		contains    []string
		notContains []string
	}{
		{
			name:     "Scenario 1: Plain markdown",
			src:      "# Hello\n\nSome **bold** text\n",
			title:    defaultNoticeTitle,
			contains: []string{"<h1>Hello</h1>", "<strong>bold</strong>"},
		},
		{
			name:     "Scenario 2: Frontmatter title",
			src:      "---\ntitle: Read me\n---\nBody\n",
			title:    "Read me",
			contains: []string{"<p>Body</p>"},
		},
		{
			name:        "Scenario 3: Set directives",
			src:         "Take {{ set: 1 }} or {{set:2}} today\n",
			title:       defaultNoticeTitle,
			contains:    []string{`<span class="set set-a">Set A.pdf</span>`, `<span class="set set-b">Set &lt;B&gt;.pdf</span>`, " today"},
			notContains: []string{"{{"},
		},
		{
			name:     "Scenario 4: Unknown set is kept",
			src:      "Take {{ set: 7 }}\n",
			title:    defaultNoticeTitle,
			contains: []string{"{{ set: 7 }}"},
		},
		{
			name:     "Scenario 5: Lone brace",
			src:      "a { b }\n",
			title:    defaultNoticeTitle,
			contains: []string{"a { b }"},
		},
	}

	a := newTestAdapter(afero.NewMemMapFs())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notice, err := a.Convert([]byte(tc.src))
			require.NoError(t, err)
			require.Equal(t, tc.title, notice.Title)

			for _, s := range tc.contains {
				require.Contains(t, string(notice.HTML), s)
			}

			for _, s := range tc.notContains {
				require.NotContains(t, string(notice.HTML), s)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notice.md", []byte("---\ntitle: Custom\n---\nUse {{ set: 1 }}\n"), 0644))

	a := newTestAdapter(fs)

	notice, err := a.Load("/notice.md")
	require.NoError(t, err)
	require.Equal(t, "Custom", notice.Title)
	require.Contains(t, string(notice.HTML), "Set A.pdf")

	notice, err = a.Load("")
	require.NoError(t, err)
	require.Equal(t, "Important Notice", notice.Title)
	require.Contains(t, string(notice.HTML), "Cover Page")

	_, err = a.Load("/missing.md")
	require.Error(t, err)
}
