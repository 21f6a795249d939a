package response

import (
	"fmt"
	"io"
	"strings"

	"github.com/xgui3783/ebrains-util/internal/ui"
)

// Builder collects a command's human readable result and prints it in one go.
type Builder struct {
	w              io.Writer
	title          string
	summary        [][2]string
	items          []string
	footerSuccess  string
	warnings       []string
	noItemsMessage string
}

func New(w io.Writer) *Builder {
	return &Builder{w: w}
}

func (b *Builder) Title(title string) *Builder {
	b.title = title
	return b
}

// Summary rows keep insertion order.
func (b *Builder) Summary(key string, value any) *Builder {
	b.summary = append(b.summary, [2]string{key, fmt.Sprint(value)})
	return b
}

func (b *Builder) AddItem(title, content string) *Builder {
	b.items = append(b.items, ui.Box(content, title))
	return b
}

func (b *Builder) NoItemsMessage(message string) *Builder {
	b.noItemsMessage = message
	return b
}

func (b *Builder) Warn(format string, a ...any) *Builder {
	b.warnings = append(b.warnings, fmt.Sprintf(format, a...))
	return b
}

func (b *Builder) FooterSuccess(format string, a ...any) *Builder {
	b.footerSuccess = fmt.Sprintf(format, a...)
	return b
}

func (b *Builder) Display() {
	if b.title != "" {
		_, _ = fmt.Fprintln(b.w, ui.Title(b.title))
	}

	if len(b.summary) > 0 {
		var content strings.Builder
		for _, row := range b.summary {
			content.WriteString(fmt.Sprintf("%-12s %s\n", row[0], row[1]))
		}
		_, _ = fmt.Fprintln(b.w, ui.Box(strings.TrimSpace(content.String()), "Summary"))
	}

	if len(b.items) == 0 && b.noItemsMessage != "" {
		_, _ = fmt.Fprintln(b.w, ui.Warning(b.noItemsMessage))
	}
	for _, item := range b.items {
		_, _ = fmt.Fprintln(b.w, item)
	}

	for _, w := range b.warnings {
		_, _ = fmt.Fprintln(b.w, ui.Warning(w))
	}

	if b.footerSuccess != "" {
		_, _ = fmt.Fprintln(b.w, ui.Success(b.footerSuccess))
	}
}

type ItemContentBuilder struct {
	sb strings.Builder
}

func NewItemContent() *ItemContentBuilder {
	return &ItemContentBuilder{}
}

func (ic *ItemContentBuilder) Add(key, value string) *ItemContentBuilder {
	ic.sb.WriteString(fmt.Sprintf("%-12s %s\n", key, value))
	return ic
}

func (ic *ItemContentBuilder) String() string {
	return strings.TrimSpace(ic.sb.String())
}
