package maincmd

import (
	"io"
	"os"

	"github.com/mna/mainer"
)

// readSource reads the full contents of path, treating "-" as stdio.Stdin
// per spec.md §6.1.
func readSource(stdio mainer.Stdio, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdio.Stdin)
	}
	return os.ReadFile(path)
}

// writeOutput writes data to path, treating "-" as stdio.Stdout.
func writeOutput(stdio mainer.Stdio, path string, data []byte) error {
	if path == "-" {
		_, err := stdio.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeText is writeOutput's counterpart for the text-listing commands
// (-t, -s), which write a string rather than a raw byte buffer.
func writeText(stdio mainer.Stdio, path string, text string) error {
	return writeOutput(stdio, path, []byte(text))
}
