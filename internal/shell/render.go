package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/feishukit/feishukit/pkg/bookmark"
	"github.com/feishukit/feishukit/pkg/cache"
	"github.com/feishukit/feishukit/pkg/client"
	"github.com/feishukit/feishukit/pkg/models"
	"github.com/feishukit/feishukit/pkg/nav"
)

// styles holds the palette. Colour is decided by the renderer, so output
// written to a pipe or buffer stays plain.
type styles struct {
	accent lipgloss.Style
	muted  lipgloss.Style
	bold   lipgloss.Style
	errorS lipgloss.Style
	drive  lipgloss.Style
	wiki   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		accent: r.NewStyle().Foreground(lipgloss.Color("#A78BFA")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		bold:   r.NewStyle().Bold(true),
		errorS: r.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		drive:  r.NewStyle().Foreground(lipgloss.Color("#89B4FA")).Bold(true),
		wiki:   r.NewStyle().Foreground(lipgloss.Color("#A6E3A1")).Bold(true),
	}
}

var kindLabels = map[models.Kind]string{
	models.KindFolder:     "folder",
	models.KindTabular:    "sheet",
	models.KindRelational: "bitable",
	models.KindDocument:   "doc",
	models.KindContainer:  "doc+",
}

func kindLabel(d models.Descriptor) string {
	if l, ok := kindLabels[d.Kind]; ok {
		return l
	}
	return d.RawType
}

func isContainer(d models.Descriptor) bool {
	return d.Kind == models.KindFolder || d.HasChildren
}

// renderListing prints one child per line, containers with a trailing "/".
func (s *Shell) renderListing(children []models.Descriptor, long bool) {
	if len(children) == 0 {
		fmt.Fprintln(s.out, s.styles.muted.Render("(empty)"))
		return
	}
	if !long {
		for _, d := range children {
			name := d.Name
			if isContainer(d) {
				name = s.styles.accent.Render(name + "/")
			}
			fmt.Fprintf(s.out, "%s  %s\n", name, s.styles.muted.Render("["+kindLabel(d)+"]"))
		}
		return
	}

	rows := make([][]string, 0, len(children))
	for _, d := range children {
		modified := ""
		if !d.ModifiedAt.IsZero() {
			modified = d.ModifiedAt.Local().Format("2006-01-02 15:04")
		}
		name := d.Name
		if isContainer(d) {
			name += "/"
		}
		rows = append(rows, []string{kindLabel(d), modified, d.ID, name})
	}
	s.renderTable([]string{"TYPE", "MODIFIED", "ID", "NAME"}, rows)
}

func (s *Shell) renderTable(headers []string, rows [][]string) {
	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().PaddingRight(2)
			if row == table.HeaderRow {
				return s.styles.muted.PaddingRight(2)
			}
			return style
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(s.out, tbl.Render())
}

func (s *Shell) renderSpaces(spaces []models.Space) {
	if len(spaces) == 0 {
		fmt.Fprintln(s.out, s.styles.muted.Render("(no spaces visible to this app)"))
		return
	}
	rows := make([][]string, 0, len(spaces))
	for _, sp := range spaces {
		rows = append(rows, []string{sp.ID, sp.Name, sp.Description})
	}
	s.renderTable([]string{"SPACE ID", "NAME", "DESCRIPTION"}, rows)
}

func (s *Shell) renderBookmarks(entries []bookmark.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(s.out, s.styles.muted.Render("(no bookmarks)"))
		return
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{bookmark.AliasPrefix + e.Alias, e.Title, e.NodeID, e.SpaceID})
	}
	s.renderTable([]string{"ALIAS", "TITLE", "NODE", "SPACE"}, rows)
}

func (s *Shell) renderStats(stats []cache.Stats) {
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{string(st.Mode), fmt.Sprint(st.Entries), fmt.Sprint(st.Hits), fmt.Sprint(st.Misses)})
	}
	s.renderTable([]string{"CACHE", "ENTRIES", "HITS", "MISSES"}, rows)
}

// Prompt renders the prompt for the current location.
func (s *Shell) Prompt() string {
	loc := s.engine.Location()
	switch {
	case s.engine.Mode() == models.ModeTree:
		return s.styles.drive.Render("[drive]") + " " + loc.String() + " > "
	case len(loc) == 0 && s.engine.SpaceID() == "":
		return s.styles.wiki.Render("[wiki]") + " (no space) > "
	default:
		return s.styles.wiki.Render("[wiki]") + " " + loc.String() + " > "
	}
}

// DescribeError turns an engine error into a one-line message with a hint
// where one helps.
func DescribeError(err error) string {
	var (
		he  *hintError
		ue  *nav.UnsupportedError
		be  *nav.BrokenLinkError
		ae  *client.APIError
		msg = err.Error()
	)
	switch {
	case errors.As(err, &he):
		return DescribeError(he.err) + "\n  hint: " + he.hint
	case errors.Is(err, context.Canceled):
		return "interrupted"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.As(err, &ue):
		return ue.Error()
	case errors.Is(err, nav.ErrNoSpace):
		return msg + "; run 'wiki spaces' then 'wiki <space_id>'"
	case errors.As(err, &be):
		if be.NodeID == "" {
			return fmt.Sprintf("nothing to resolve (%v)", be.Err)
		}
		return fmt.Sprintf("node %s is unreachable (%v)", be.NodeID, be.Err)
	case errors.As(err, &ae):
		parts := []string{fmt.Sprintf("%s failed: %s", ae.Op, ae.Msg)}
		if ae.Code != 0 {
			parts = append(parts, fmt.Sprintf("code %d", ae.Code))
		}
		if ae.Status != 0 {
			parts = append(parts, fmt.Sprintf("http %d", ae.Status))
		}
		if ae.RequestID != "" {
			parts = append(parts, "request "+ae.RequestID)
		}
		return strings.Join(parts, ", ")
	}
	return msg
}

func (s *Shell) printError(err error) {
	fmt.Fprintln(s.out, s.styles.errorS.Render("error: "+DescribeError(err)))
}

func (s *Shell) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}
