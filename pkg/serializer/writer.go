package serializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Writer serializes resources to an io.Writer in a fixed format.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a Writer targeting out. A nil out writes to stdout,
// and an unknown format falls back to JSON. When out is a closeable
// destination other than stdout, Close releases it.
func NewWriter(out io.Writer, format Format) *Writer {
	if out == nil {
		out = os.Stdout
	}
	if format.IsUnknown() {
		slog.Warn("unknown output format, using json", "format", format)
		format = FormatJSON
	}

	w := &Writer{format: format, output: out}
	if c, ok := out.(io.Closer); ok && out != io.Writer(os.Stdout) {
		w.closer = c
	}
	return w
}

// NewStdoutWriter creates a Writer that prints to stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(os.Stdout, format)
}

// NewFileWriterOrStdout creates a Serializer for the given destination.
// An empty path selects stdout and a cm://namespace/name URI selects a
// ConfigMap writer. Destinations that cannot be opened degrade to stdout
// so command output is not lost.
func NewFileWriterOrStdout(format Format, path string) Serializer {
	path = strings.TrimSpace(path)
	if path == "" {
		return NewStdoutWriter(format)
	}

	if strings.HasPrefix(path, ConfigMapURIScheme) {
		namespace, name, err := parseConfigMapURI(path)
		if err != nil {
			slog.Error("invalid configmap destination, writing to stdout", "uri", path, "error", err)
			return NewStdoutWriter(format)
		}
		return NewConfigMapWriter(namespace, name, format)
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Error("cannot create output file, writing to stdout", "path", path, "error", err)
		return NewStdoutWriter(format)
	}
	return NewWriter(f, format)
}

// Serialize encodes the resource to the writer's output.
func (w *Writer) Serialize(_ context.Context, resource any) error {
	if w == nil || w.output == nil {
		return fmt.Errorf("writer is not initialized")
	}
	return encode(w.output, w.format, resource)
}

// Close releases the underlying destination when the writer owns one.
// It is safe to call on stdout writers and to call more than once.
func (w *Writer) Close() error {
	if w == nil || w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}
