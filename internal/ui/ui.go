package ui

import (
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

type Colors struct {
	Gray100 lipgloss.AdaptiveColor
	Gray200 lipgloss.AdaptiveColor
	Gray400 lipgloss.AdaptiveColor
	Gray500 lipgloss.AdaptiveColor
	Gray600 lipgloss.AdaptiveColor
	Gray700 lipgloss.AdaptiveColor
	Gray800 lipgloss.AdaptiveColor

	Primary300 lipgloss.AdaptiveColor
	Primary400 lipgloss.AdaptiveColor
	Primary500 lipgloss.AdaptiveColor

	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
}

var C = Colors{
	Gray100: lipgloss.AdaptiveColor{Light: "#f4f6f8", Dark: "#161b22"},
	Gray200: lipgloss.AdaptiveColor{Light: "#e1e8ed", Dark: "#21262d"},
	Gray400: lipgloss.AdaptiveColor{Light: "#8896a6", Dark: "#656d76"},
	Gray500: lipgloss.AdaptiveColor{Light: "#6b7785", Dark: "#8b949e"},
	Gray600: lipgloss.AdaptiveColor{Light: "#4a5663", Dark: "#c9d1d9"},
	Gray700: lipgloss.AdaptiveColor{Light: "#2d3843", Dark: "#f0f6fc"},
	Gray800: lipgloss.AdaptiveColor{Light: "#1a2027", Dark: "#f4f6f8"},

	Primary300: lipgloss.AdaptiveColor{Light: "#7fcfc4", Dark: "#5fb8ad"},
	Primary400: lipgloss.AdaptiveColor{Light: "#3fb3a5", Dark: "#46a89c"},
	Primary500: lipgloss.AdaptiveColor{Light: "#14847a", Dark: "#3ec1b2"},

	Success: lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#22c55e"},
	Warning: lipgloss.AdaptiveColor{Light: "#d97706", Dark: "#f59e0b"},
	Error:   lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#ef4444"},
}

type Symbols struct {
	Check   string
	Cross   string
	Warn    string
	Info    string
	Dot     string
	Line    string
	Pipe    string
	Spinner []string

	CornerTL string
	CornerTR string
	CornerBL string
	CornerBR string
}

var S = Symbols{
	Check:   "✓",
	Cross:   "✗",
	Warn:    "⚠",
	Info:    "ⓘ",
	Dot:     "•",
	Line:    "─",
	Pipe:    "│",
	Spinner: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},

	CornerTL: "╭",
	CornerTR: "╮",
	CornerBL: "╰",
	CornerBR: "╯",
}

var (
	H1 = lipgloss.NewStyle().
		Foreground(C.Gray800).
		Bold(true)

	H2 = lipgloss.NewStyle().
		Foreground(C.Gray700).
		Bold(true).
		MarginBottom(1)

	Body = lipgloss.NewStyle().
		Foreground(C.Gray700)

	BodyMuted = lipgloss.NewStyle().
			Foreground(C.Gray600)

	Code = lipgloss.NewStyle().
		Foreground(C.Gray700).
		Background(C.Gray100).
		Padding(0, 1)

	StatusSuccess = lipgloss.NewStyle().
			Foreground(C.Success).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(C.Warning).
			Bold(true)

	StatusError = lipgloss.NewStyle().
			Foreground(C.Error).
			Bold(true)

	buttonFocused = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#000000"}).
			Background(C.Primary500).
			Padding(0, 3).
			Margin(0, 1)

	buttonBlurred = lipgloss.NewStyle().
			Foreground(C.Gray600).
			Padding(0, 1).
			Margin(0, 1)
)

func Title(text string) string {
	return H1.Render(text)
}

func Muted(text string) string {
	return BodyMuted.Render(text)
}

func Success(text string) string {
	return StatusSuccess.Render(S.Check + " " + text)
}

func Warning(text string) string {
	return StatusWarning.Render(S.Warn + " " + text)
}

func Error(text string) string {
	return StatusError.Render(S.Cross + " " + text)
}

func Info(text string) string {
	return lipgloss.NewStyle().
		Foreground(C.Primary500).
		Render(S.Info + " " + text)
}

func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

func ErrorMessage(title string, err ...error) string {
	var b strings.Builder

	b.WriteString(Error(title))

	if len(err) > 0 && err[0] != nil {
		if msg := cleanErrorMessage(err[0].Error()); msg != "" {
			b.WriteString("\n")
			b.WriteString(BodyMuted.Render(msg))
		}
	}

	return b.String()
}

func ErrorBox(title string, err ...error) string {
	return Box(ErrorMessage(title, err...))
}

// cleanErrorMessage adds a hint for HTTP failures a user can act on.
func cleanErrorMessage(errStr string) string {
	switch {
	case strings.Contains(errStr, "(401)"):
		return errStr + "\nRun 'ebrains iam auth login' and try again."
	case strings.Contains(errStr, "(403)"):
		return errStr + "\nThe token does not grant access to this resource."
	case strings.Contains(errStr, "(429)"):
		return errStr + "\nRate limit exceeded, please try again later."
	}
	return errStr
}

func HuhTheme() *huh.Theme {
	theme := huh.ThemeBase()

	theme.Focused.Title = H2
	theme.Focused.Description = BodyMuted
	theme.Focused.ErrorMessage = StatusError
	theme.Focused.FocusedButton = buttonFocused
	theme.Focused.BlurredButton = buttonBlurred
	theme.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(C.Primary500)
	theme.Focused.TextInput.Placeholder = BodyMuted
	theme.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(C.Primary500)
	theme.Focused.TextInput.Text = Body

	theme.Blurred.Title = BodyMuted
	theme.Blurred.Description = BodyMuted.Faint(true)
	theme.Blurred.FocusedButton = buttonBlurred
	theme.Blurred.BlurredButton = buttonBlurred
	theme.Blurred.TextInput.Text = BodyMuted

	return theme
}

func StyledSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: S.Spinner,
		FPS:    time.Second / 10,
	}
	s.Style = lipgloss.NewStyle().Foreground(C.Primary500)
	return s
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

// Box frames content, wrapping it to the width of the terminal on stderr.
func Box(content string, title ...string) string {
	const boxOverhead, terminalMargin = 4, 2

	width := 0
	for _, line := range strings.Split(content, "\n") {
		width = max(width, lipgloss.Width(line))
	}
	width = max(1, min(width, termWidth()-boxOverhead-terminalMargin))

	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(content), "\n")
	inner := width + 2

	var titleStr string
	if len(title) > 0 && title[0] != "" {
		titleStr = " " + title[0] + " "
		inner = max(inner, lipgloss.Width(titleStr)+4)
	}

	border := lipgloss.NewStyle().Foreground(C.Gray500)
	var b strings.Builder
	if titleStr != "" {
		rest := inner - lipgloss.Width(titleStr) - 2
		b.WriteString(border.Render(S.CornerTL + strings.Repeat(S.Line, 2)))
		b.WriteString(lipgloss.NewStyle().Foreground(C.Primary500).Render(titleStr))
		b.WriteString(border.Render(strings.Repeat(S.Line, rest) + S.CornerTR))
	} else {
		b.WriteString(border.Render(S.CornerTL + strings.Repeat(S.Line, inner) + S.CornerTR))
	}
	b.WriteString("\n")

	for _, line := range lines {
		pad := max(0, inner-lipgloss.Width(line)-2)
		b.WriteString(border.Render(S.Pipe))
		b.WriteString(" " + line + strings.Repeat(" ", pad) + " ")
		b.WriteString(border.Render(S.Pipe))
		b.WriteString("\n")
	}

	b.WriteString(border.Render(S.CornerBL + strings.Repeat(S.Line, inner) + S.CornerBR))
	return b.String()
}

func Confirm(prompt string) (bool, error) {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(prompt).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithTheme(HuhTheme()).WithOutput(os.Stderr).Run()
	return confirmed, err
}

func FangTheme() fang.ColorScheme {
	errorFg := lipgloss.AdaptiveColor{Light: "#ffffff", Dark: "#1a2027"}

	return fang.ColorScheme{
		Base:           C.Gray700,
		Title:          C.Primary500,
		Description:    C.Gray600,
		Codeblock:      C.Gray100,
		Program:        C.Primary400,
		DimmedArgument: C.Gray400,
		Comment:        C.Gray500,
		Flag:           C.Warning,
		FlagDefault:    C.Gray500,
		Command:        C.Success,
		QuotedString:   C.Success,
		Argument:       C.Gray700,
		Help:           C.Gray600,
		Dash:           C.Gray400,
		ErrorHeader:    [2]color.Color{errorFg, C.Error},
		ErrorDetails:   C.Error,
	}
}
