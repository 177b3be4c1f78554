package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

var stdin = bufio.NewReader(os.Stdin)

// valueOrPrompt returns value, or reads a line from stdin after printing
// label when value is empty.
func valueOrPrompt(value, label string) (string, error) {
	if value != "" {
		return value, nil
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	line, err := stdin.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
