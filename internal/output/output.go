// Package output renders oseda's terminal messages, tables and colors.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Reporter is what the checker, runner and publisher need to narrate their work.
type Reporter interface {
	Info(format string, a ...any)
	Success(format string, a ...any)
	Warning(format string, a ...any)
	Error(format string, a ...any)
	VerboseLog(format string, a ...any)
}

// UI writes progress lines to Out and problems to ErrOut.
// Verbose enables VerboseLog lines; DryRun enables DryRunMsg lines.
type UI struct {
	Verbose bool
	DryRun  bool
	Out     io.Writer
	ErrOut  io.Writer
}

// New returns a UI bound to the process's stdout and stderr.
func New() *UI {
	return &UI{Out: os.Stdout, ErrOut: os.Stderr}
}

// Discard returns a UI that writes nowhere.
func Discard() *UI {
	return &UI{Out: io.Discard, ErrOut: io.Discard}
}

type level int

const (
	levelInfo level = iota
	levelSuccess
	levelWarning
	levelError
	levelVerbose
)

// marks are the line prefixes per level. Warnings and errors go to ErrOut.
var marks = map[level]string{
	levelInfo:    color.New(color.FgHiBlue).Sprint("i"),
	levelSuccess: color.New(color.FgHiGreen).Sprint("✓"),
	levelWarning: color.New(color.FgHiYellow).Sprint("!"),
	levelError:   color.New(color.FgHiRed).Sprint("✗"),
	levelVerbose: color.New(color.FgHiBlack).Sprint("  ·"),
}

func (u *UI) emit(l level, format string, a []any) {
	w := u.Out
	if l == levelWarning || l == levelError {
		w = u.ErrOut
	}
	fmt.Fprintln(w, marks[l], fmt.Sprintf(format, a...))
}

func (u *UI) Info(format string, a ...any)    { u.emit(levelInfo, format, a) }
func (u *UI) Success(format string, a ...any) { u.emit(levelSuccess, format, a) }
func (u *UI) Warning(format string, a ...any) { u.emit(levelWarning, format, a) }
func (u *UI) Error(format string, a ...any)   { u.emit(levelError, format, a) }

func (u *UI) VerboseLog(format string, a ...any) {
	if u.Verbose {
		u.emit(levelVerbose, format, a)
	}
}

// DryRunMsg reports an action that was skipped because of --dry-run.
func (u *UI) DryRunMsg(format string, a ...any) {
	if u.DryRun {
		u.emit(levelWarning, "[DRY-RUN] "+format, a)
	}
}

var (
	cyan   = color.New(color.FgHiCyan).SprintFunc()
	green  = color.New(color.FgHiGreen).SprintFunc()
	yellow = color.New(color.FgHiYellow).SprintFunc()
	red    = color.New(color.FgHiRed).SprintFunc()
)

// Cyan highlights names and commands in running text.
func Cyan(s string) string { return cyan(s) }

// StatusColor colors a check or deploy status: ok/ready green, failed red,
// dry-run yellow. Anything else is returned as is.
func StatusColor(status string) string {
	switch strings.ToLower(status) {
	case "ok", "ready":
		return green(status)
	case "failed":
		return red(status)
	case "dry-run":
		return yellow(status)
	}
	return status
}

// Swatch renders a two-cell block in the #RRGGBB color followed by the code.
// Malformed input is returned unchanged.
func Swatch(hex string) string {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return hex
	}
	return color.RGB(r, g, b).Sprint("██") + " " + hex
}

// Table returns a borderless, left-aligned table writing to Out.
func (u *UI) Table(headers []string) *tablewriter.Table {
	plain := tw.Rendition{
		Borders:  tw.BorderNone,
		Settings: tw.Settings{Lines: tw.LinesNone, Separators: tw.SeparatorsNone},
	}
	t := tablewriter.NewTable(u.Out,
		tablewriter.WithRendition(plain),
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithPadding(tw.Padding{Right: "  "}),
	)
	t.Header(headers)
	return t
}
