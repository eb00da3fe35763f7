// Package markdown holds the text-splicing helpers of the document editor:
// wrapping a selection, slash commands and embedded image references.
// Offsets are rune indexes into the content.
package markdown

import (
	"regexp"
	"strings"

	"github.com/atinyakov/FlowDoc/internal/models"
)

// SlashCommand is one entry of the "/" menu.
type SlashCommand struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Command string `json:"command"`
	Icon    string `json:"icon"`
}

// Commands is the slash menu in display order.
var Commands = []SlashCommand{
	{Name: "h1", Label: "Heading 1", Command: "# ", Icon: "H1"},
	{Name: "h2", Label: "Heading 2", Command: "## ", Icon: "H2"},
	{Name: "h3", Label: "Heading 3", Command: "### ", Icon: "H3"},
	{Name: "bullet", Label: "Bulleted list", Command: "- ", Icon: "•"},
	{Name: "numbered", Label: "Numbered list", Command: "1. ", Icon: "1."},
	{Name: "todo", Label: "Checklist", Command: "- [ ] ", Icon: "☐"},
	{Name: "quote", Label: "Quote", Command: "> ", Icon: "❝"},
	{Name: "code", Label: "Code", Command: "`", Icon: "<>"},
	{Name: "codeblock", Label: "Code block", Command: "```\n", Icon: "{}"},
	{Name: "divider", Label: "Divider", Command: "\n---\n", Icon: "—"},
}

// Lookup finds a command by name.
func Lookup(name string) (SlashCommand, bool) {
	for _, c := range Commands {
		if c.Name == name {
			return c, true
		}
	}
	return SlashCommand{}, false
}

// Filter returns the commands whose label contains query, case-insensitively.
func Filter(query string) []SlashCommand {
	q := strings.ToLower(query)
	out := []SlashCommand{}
	for _, c := range Commands {
		if strings.Contains(strings.ToLower(c.Label), q) {
			out = append(out, c)
		}
	}
	return out
}

// Insert wraps content[start:end] in before and after. It returns the new
// text and the selection range covering the original selected text.
func Insert(content string, start, end int, before, after string) (string, int, int) {
	r := []rune(content)
	start, end = clamp(start, len(r)), clamp(end, len(r))
	if start > end {
		start, end = end, start
	}
	selected := string(r[start:end])

	var b strings.Builder
	b.WriteString(string(r[:start]))
	b.WriteString(before)
	b.WriteString(selected)
	b.WriteString(after)
	b.WriteString(string(r[end:]))

	selStart := start + len([]rune(before))
	return b.String(), selStart, selStart + (end - start)
}

// SlashQuery reports whether the cursor sits in a slash command being typed:
// a "/" at the start of a line followed by no newline. It returns the text
// typed after the slash.
func SlashQuery(content string, cursor int) (string, bool) {
	r := []rune(content)
	before := r[:clamp(cursor, len(r))]
	slash := lastIndex(before, '/')
	if slash < 0 {
		return "", false
	}
	if slash > 0 && before[slash-1] != '\n' {
		return "", false
	}
	typed := string(before[slash+1:])
	if strings.ContainsRune(typed, '\n') {
		return "", false
	}
	return strings.ToLower(typed), true
}

// ApplySlashCommand replaces the text from the last "/" before cursor up to
// cursor with the command's markdown. It returns the new text and cursor.
// Content without a slash before the cursor is returned unchanged.
func ApplySlashCommand(content string, cursor int, cmd SlashCommand) (string, int) {
	r := []rune(content)
	cursor = clamp(cursor, len(r))
	slash := lastIndex(r[:cursor], '/')
	if slash < 0 {
		return content, cursor
	}
	out := string(r[:slash]) + cmd.Command + string(r[cursor:])
	return out, slash + len([]rune(cmd.Command))
}

// ImageReference is the markdown line inserted for an embedded image.
func ImageReference(id string) string {
	return "\n![image](" + id + ")\n"
}

// ResolveImages rewrites image references by id into their data URLs.
func ResolveImages(content string, images []models.Image) string {
	for _, img := range images {
		re := regexp.MustCompile(`!\[([^\]]*)\]\(` + regexp.QuoteMeta(img.ID) + `\)`)
		content = re.ReplaceAllLiteralString(content, "!["+img.ID+"]("+img.Data+")")
	}
	return content
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func lastIndex(r []rune, c rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == c {
			return i
		}
	}
	return -1
}
