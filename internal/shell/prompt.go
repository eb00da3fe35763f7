package shell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// PromptDocument asks for a document title and its markdown content, read
// either from a file or typed line by line until a lone ".". ok is false
// when the file cannot be read or input ends early.
func PromptDocument(in *bufio.Scanner, out io.Writer) (title, content string, ok bool) {
	fmt.Fprint(out, "Enter title: ")
	if !in.Scan() {
		return "", "", false
	}
	title = strings.TrimSpace(in.Text())

	fmt.Fprint(out, "Enter file path to load (leave empty for manual input): ")
	if !in.Scan() {
		return "", "", false
	}
	if path := strings.TrimSpace(in.Text()); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(out, "Failed to read file %q: %v\n", path, err)
			return "", "", false
		}
		return title, string(data), true
	}

	fmt.Fprintln(out, "Enter markdown, finish with a line containing only '.':")
	var lines []string
	for in.Scan() {
		line := in.Text()
		if line == "." {
			return title, strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
	return "", "", false
}
