package mdadapter

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	_ "embed"

	"github.com/spf13/afero"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

const defaultNoticeTitle = "Notice"

//go:embed templates/notice.md
var defaultNoticeContent []byte

type Notice struct {
	Title string
	HTML  template.HTML
}

type Frontmatter struct {
	Title string `yaml:"title"`
}

type noticeAdapter struct {
	fs  afero.Fs
	md  goldmark.Markdown
	log *slog.Logger
}

func NewNoticeAdapter(fs afero.Fs, resolver SetResolver, log *slog.Logger) *noticeAdapter {
	md := goldmark.New(
		goldmark.WithExtensions(
			&frontmatter.Extender{},
			NewSetsExtension(resolver),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	return &noticeAdapter{
		fs:  fs,
		md:  md,
		log: log.With(slog.String("item", "NoticeAdapter")),
	}
}

// Load renders fileName, or the built-in notice when fileName is empty.
func (a *noticeAdapter) Load(fileName string) (*Notice, error) {
	content := defaultNoticeContent

	if fileName != "" {
		data, err := afero.ReadFile(a.fs, fileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read notice file %s: %w", fileName, err)
		}

		content = data
	}

	return a.Convert(content)
}

func (a *noticeAdapter) Convert(src []byte) (*Notice, error) {
	pc := parser.NewContext()

	var buf bytes.Buffer
	if err := a.md.Convert(src, &buf, parser.WithContext(pc)); err != nil {
		return nil, fmt.Errorf("cannot convert markdown: %w", err)
	}

	notice := &Notice{
		Title: defaultNoticeTitle,
		HTML:  template.HTML(buf.String()),
	}

	if data := frontmatter.Get(pc); data != nil {
		var fm Frontmatter
		if err := data.Decode(&fm); err != nil {
			return nil, fmt.Errorf("cannot decode frontmatter: %w", err)
		}

		if fm.Title != "" {
			notice.Title = fm.Title
		}
	}

	return notice, nil
}
