package tpladapter

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"

	_ "embed"

	"github.com/jgivc/assignfetch/internal/entity"
)

const (
	templateNameHome  = "HOME"
	templateNameAdmin = "ADMIN"

	funcNamePercent = "percent"
)

//go:embed templates/pages.html
var defaultTemplate string

type RollOption struct {
	Roll     entity.RollNumber
	Disabled bool
	Selected bool
}

// Page holds what the shared HEAD template reads.
type Page struct {
	Title          string
	RefreshSeconds int
}

type HomePage struct {
	Page
	NoticeTitle string
	NoticeHTML  template.HTML
	Rolls       []RollOption
	LockedRoll  entity.RollNumber
	Error       string
	Message     string
}

func (p *HomePage) Locked() bool {
	return p.LockedRoll != 0
}

type AdminPage struct {
	Page
	Summary *entity.Summary
	Rolls   []RollOption
}

type tplAdapter struct {
	tpl *template.Template
}

// NewTplAdapter parses templateFileName, or the built-in pages when it is empty.
// A custom file must define HOME and ADMIN.
func NewTplAdapter(templateFileName string) (*tplAdapter, error) {
	tpl := template.New("").Funcs(template.FuncMap{
		funcNamePercent: percent,
	})

	src := defaultTemplate
	if templateFileName != "" {
		data, err := os.ReadFile(templateFileName)
		if err != nil {
			return nil, fmt.Errorf("cannot read template: %w", err)
		}

		src = string(data)
	}

	if _, err := tpl.Parse(src); err != nil {
		return nil, fmt.Errorf("cannot parse template: %w", err)
	}

	for _, name := range []string{templateNameHome, templateNameAdmin} {
		if tpl.Lookup(name) == nil {
			return nil, fmt.Errorf("template %s must be defined", name)
		}
	}

	return &tplAdapter{tpl: tpl}, nil
}

func (a *tplAdapter) Home(w io.Writer, page *HomePage) error {
	return a.execute(w, templateNameHome, page)
}

func (a *tplAdapter) Admin(w io.Writer, page *AdminPage) error {
	return a.execute(w, templateNameAdmin, page)
}

// execute renders into a buffer first so a failed template never writes half a page.
func (a *tplAdapter) execute(w io.Writer, name string, data any) error {
	buf := bytes.Buffer{}
	if err := a.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("cannot execute template %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)

	return err
}

func percent(part, total int64) string {
	if total == 0 {
		return "0%"
	}

	return fmt.Sprintf("%.0f%%", float64(part)*100/float64(total))
}
