package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/k8s/client"
)

// Reader decodes resources from an io.Reader in a fixed format.
type Reader struct {
	format Format
	input  io.Reader
	closer io.Closer
}

// NewReader creates a Reader for the given input. Table output cannot be
// parsed back, so FormatTable is rejected here.
func NewReader(in io.Reader, format Format) (*Reader, error) {
	if in == nil {
		return nil, fmt.Errorf("reader input is nil")
	}
	if format == FormatTable {
		return nil, fmt.Errorf("table format cannot be deserialized")
	}
	if format.IsUnknown() {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	r := &Reader{format: format, input: in}
	if c, ok := in.(io.Closer); ok {
		r.closer = c
	}
	return r, nil
}

// NewFileReader opens a document for decoding. Sources with an http:// or
// https:// prefix are fetched into memory so remote and local documents
// share one decode path.
func NewFileReader(path string, format Format) (*Reader, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		data, err := fetchURL(context.Background(), path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
		}
		return NewReader(bytes.NewReader(data), format)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return NewReader(f, format)
}

// Deserialize decodes the input into out, which must be a non-nil pointer.
func (r *Reader) Deserialize(out any) error {
	if r == nil || r.input == nil {
		return fmt.Errorf("reader is not initialized")
	}
	if out == nil {
		return fmt.Errorf("deserialize target is nil")
	}

	switch r.format {
	case FormatJSON:
		if err := json.NewDecoder(r.input).Decode(out); err != nil {
			return fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r.input).Decode(out); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format: %s", r.format)
	}
	return nil
}

// Close releases the underlying input when the reader owns one. It is
// safe to call more than once.
func (r *Reader) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// FromFile loads a resource of type T from source using the ambient
// kubeconfig resolution for ConfigMap sources.
func FromFile[T any](source string) (*T, error) {
	return FromFileWithKubeconfig[T](source, "")
}

// FromFileWithKubeconfig loads a resource of type T from source, which may
// be a local path, an http(s) URL, or a cm://namespace/name ConfigMap URI.
// File and URL formats are inferred from the extension. The kubeconfig
// path applies only to ConfigMap sources; when empty, the usual
// KUBECONFIG/in-cluster discovery applies.
func FromFileWithKubeconfig[T any](source, kubeconfig string) (*T, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("source is empty")
	}

	if strings.HasPrefix(source, ConfigMapURIScheme) {
		return fromConfigMap[T](source, kubeconfig)
	}

	format := FormatFromPath(source)
	r, err := NewFileReader(source, format)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var out T
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to deserialize %s: %w", source, err)
	}

	slog.Debug("resource loaded", "source", source, "format", format)
	return &out, nil
}

// fromConfigMap reads a resource of type T from the ConfigMap addressed
// by a cm://namespace/name URI. The document format comes from the
// ConfigMap's format key and the content from the matching
// resource.{ext} key, falling back to whichever resource key is present.
func fromConfigMap[T any](uri, kubeconfig string) (*T, error) {
	namespace, name, err := parseConfigMapURI(uri)
	if err != nil {
		return nil, err
	}

	var kube client.Interface
	if kubeconfig != "" {
		kube, _, err = client.GetKubeClientWithConfig(kubeconfig)
	} else {
		kube, _, err = client.GetKubeClient()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	getCtx, cancel := context.WithTimeout(context.Background(), defaults.ConfigMapReadTimeout)
	defer cancel()

	cm, err := kube.CoreV1().ConfigMaps(namespace).Get(getCtx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to read configmap %s/%s: %w", namespace, name, err)
	}

	format := Format(cm.Data["format"])
	if format.IsUnknown() || format == FormatTable {
		format = FormatYAML
	}

	content, ok := cm.Data["resource."+format.extension()]
	if !ok {
		for _, alt := range []Format{FormatYAML, FormatJSON} {
			if c, found := cm.Data["resource."+alt.extension()]; found {
				content, format, ok = c, alt, true
				break
			}
		}
	}
	if !ok {
		return nil, fmt.Errorf("configmap %s/%s has no resource data", namespace, name)
	}

	r, err := NewReader(strings.NewReader(content), format)
	if err != nil {
		return nil, err
	}

	var out T
	if err := r.Deserialize(&out); err != nil {
		return nil, fmt.Errorf("failed to deserialize configmap %s/%s: %w", namespace, name, err)
	}

	slog.Debug("resource loaded", "source", uri, "format", format)
	return &out, nil
}
