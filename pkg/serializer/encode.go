package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// defaultValueKey names a bare scalar in table output.
const defaultValueKey = "value"

// Marshal encodes a resource in the given format and returns the raw bytes.
func Marshal(format Format, resource any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encode(&buf, format, resource); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encode writes the resource to out in the given format.
func encode(out io.Writer, format Format, resource any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resource); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(resource); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return encodeTable(out, resource)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// encodeTable renders the resource as a two-column FIELD/VALUE table.
// Nested values are flattened into dotted paths, so a load report shows
// rows like results[0].platform and header.metadata.version.
func encodeTable(out io.Writer, resource any) error {
	fields := map[string]string{}
	flatten("", reflect.ValueOf(resource), fields)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, k := range keys {
		fmt.Fprintf(tw, "%s\t%s\n", k, fields[k])
	}
	return tw.Flush()
}

// flatten walks v and records each leaf under its dotted path. Struct
// fields are keyed by their json tag when one is present, so table rows
// line up with the json encoding of the same resource.
func flatten(prefix string, v reflect.Value, fields map[string]string) {
	if !v.IsValid() {
		setField(fields, prefix, "")
		return
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			setField(fields, prefix, "")
			return
		}
		flatten(prefix, v.Elem(), fields)

	case reflect.Struct:
		// Types with a String method, like version numbers and
		// timestamps, read better as a single row.
		if s, ok := v.Interface().(fmt.Stringer); ok {
			setField(fields, prefix, s.String())
			return
		}
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Tag.Get("json") == "-" {
				continue
			}
			if f.Anonymous && f.Tag.Get("json") == "" {
				flatten(prefix, v.Field(i), fields)
				continue
			}
			flatten(joinKey(prefix, fieldName(f)), v.Field(i), fields)
		}

	case reflect.Map:
		for _, k := range v.MapKeys() {
			flatten(joinKey(prefix, fmt.Sprintf("%v", k.Interface())), v.MapIndex(k), fields)
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i), fields)
		}

	default:
		setField(fields, prefix, fmt.Sprintf("%v", v.Interface()))
	}
}

func setField(fields map[string]string, key, value string) {
	if key == "" {
		key = defaultValueKey
	}
	fields[key] = value
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// fieldName returns the json name of a struct field, falling back to the
// Go field name when no tag is set.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}
