// Package seisio reads and writes TREMOR datasets: raw little-endian
// IEEE-754 float32 arrays with a separate text header of name/value pairs
// carrying shape, spacing and units.
package seisio

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/copyleftdev/TREMOR/internal/errors"
)

// Header is the name/value metadata attached to a dataset. The header file
// lives next to the payload at <path>.hdr.
type Header map[string]string

// HeaderPath returns the header file path for a dataset path.
func HeaderPath(path string) string { return path + ".hdr" }

// Int fetches an integer-valued entry.
func (h Header) Int(key string) (int, error) {
	s, ok := h[key]
	if !ok {
		return 0, errors.Errorf("no %s", key).WithComponent("seisio")
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "header %s=%q is not an integer", key, s)
	}
	return v, nil
}

// Float fetches a float-valued entry.
func (h Header) Float(key string) (float64, error) {
	s, ok := h[key]
	if !ok {
		return 0, errors.Errorf("no %s", key).WithComponent("seisio")
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "header %s=%q is not a number", key, s)
	}
	return v, nil
}

// PutInt stores an integer entry.
func (h Header) PutInt(key string, v int) { h[key] = strconv.Itoa(v) }

// PutFloat stores a float entry.
func (h Header) PutFloat(key string, v float64) {
	h[key] = strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadHeader parses the name/value header for the dataset at path.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(HeaderPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "open header for %s", path)
	}
	defer f.Close()

	h := Header{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, errors.Errorf("malformed header line %q in %s", line, HeaderPath(path))
		}
		h[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "read header for %s", path)
	}
	return h, nil
}

// WriteHeader writes the header file for the dataset at path, one
// name=value pair per line in stable order.
func WriteHeader(path string, h Header) error {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, h[k])
	}
	if err := os.WriteFile(HeaderPath(path), []byte(b.String()), 0644); err != nil {
		return errors.Wrapf(err, "write header for %s", path)
	}
	return nil
}
