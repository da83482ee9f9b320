package tpladapter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jgivc/assignfetch/internal/entity"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	a, err := NewTplAdapter("")
	require.NoError(t, err)

	page := &HomePage{
		Page:        Page{Title: "CS Assignment XII"},
		NoticeTitle: "Notice",
		NoticeHTML:  "<p>Print it</p>",
		Rolls: []RollOption{
			{Roll: 1, Disabled: true},
			{Roll: 2, Selected: true},
		},
		LockedRoll: 2,
		Error:      "<b>bad</b>",
	}

	var buf bytes.Buffer
	require.NoError(t, a.Home(&buf, page))

	out := buf.String()
	require.Contains(t, out, "<title>CS Assignment XII</title>")
	require.Contains(t, out, `<option value="01" disabled>01</option>`)
	require.Contains(t, out, `<option value="02" selected>02</option>`)
	require.Contains(t, out, "locked to roll number 02")
	require.Contains(t, out, "<p>Print it</p>")
	require.Contains(t, out, "&lt;b&gt;bad&lt;/b&gt;")
	require.NotContains(t, out, "http-equiv")
}

func TestAdmin(t *testing.T) {
	a, err := NewTplAdapter("")
	require.NoError(t, err)

	page := &AdminPage{
		Page: Page{Title: "Admin", RefreshSeconds: 30},
		Summary: &entity.Summary{
			TotalDownloads: 4,
			ActiveRolls:    2,
			Sets: []entity.SetTotal{
				{Set: entity.FileSet{ID: "A", Name: "Set A.pdf"}, Downloads: 3},
				{Set: entity.FileSet{ID: "B", Name: "Set B.pdf"}, Downloads: 1},
				{Set: entity.FileSet{ID: "C", Name: "Set C.pdf"}},
			},
			Rolls: []entity.RollRow{
				{RollNumber: 1, Cycle: 1, File: "Set A.pdf", Count: 3},
			},
		},
		Rolls: []RollOption{{Roll: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, a.Admin(&buf, page))

	out := buf.String()
	require.Contains(t, out, `<meta http-equiv="refresh" content="30">`)
	require.Contains(t, out, "75%")
	require.Contains(t, out, "<td>01</td><td>Set A.pdf</td><td>3</td>")
}

func TestCustomTemplateMustDefinePages(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "pages.html")
	require.NoError(t, os.WriteFile(fileName, []byte(`{{ define "HOME" }}home{{ end }}`), 0644))

	_, err := NewTplAdapter(fileName)
	require.Error(t, err)

	_, err = NewTplAdapter(filepath.Join(t.TempDir(), "missing.html"))
	require.Error(t, err)
}

func TestPercent(t *testing.T) {
	require.Equal(t, "0%", percent(0, 0))
	require.Equal(t, "33%", percent(1, 3))
	require.Equal(t, "100%", percent(5, 5))
}
