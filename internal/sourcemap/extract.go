// Package sourcemap moves an inline source map out of a bundle stream into
// its own file while the bundle is being written.
package sourcemap

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// ErrNoSourceMap is returned by Close when the stream carried no inline map.
var ErrNoSourceMap = errors.New("bundle has no inline source map")

const inlinePrefix = "//# sourceMappingURL=data:"

// Extractor is an io.WriteCloser placed between the bundle stream and the
// bundle file. Every line passes through unchanged except the trailing inline
// sourceMappingURL comment, which is decoded into the map writer and replaced
// by a comment referencing mapURL.
type Extractor struct {
	dst    io.Writer
	mapDst io.Writer
	mapURL string

	partial []byte
	held    []byte // candidate map comment, only final if nothing but blank lines follows
	trail   []byte // blank lines seen after held
	closed  bool
}

// NewExtractor returns an Extractor writing code to dst and the decoded map to mapDst.
func NewExtractor(dst, mapDst io.Writer, mapURL string) *Extractor {
	return &Extractor{dst: dst, mapDst: mapDst, mapURL: mapURL}
}

// Write implements io.Writer.
func (e *Extractor) Write(p []byte) (int, error) {
	if e.closed {
		return 0, io.ErrClosedPipe
	}
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			e.partial = append(e.partial, p...)
			break
		}
		line := append(e.partial, p[:i+1]...)
		e.partial = nil
		if err := e.line(line); err != nil {
			return 0, err
		}
		p = p[i+1:]
	}
	return n, nil
}

func (e *Extractor) line(line []byte) error {
	if len(bytes.TrimSpace(line)) == 0 && e.held != nil {
		e.trail = append(e.trail, line...)
		return nil
	}
	if err := e.release(); err != nil {
		return err
	}
	if bytes.HasPrefix(line, []byte(inlinePrefix)) {
		e.held = line
		return nil
	}
	_, err := e.dst.Write(line)
	return err
}

// release writes a held comment through: it was not the trailing one.
func (e *Extractor) release() error {
	if e.held == nil {
		return nil
	}
	if _, err := e.dst.Write(e.held); err != nil {
		return err
	}
	if _, err := e.dst.Write(e.trail); err != nil {
		return err
	}
	e.held, e.trail = nil, nil
	return nil
}

// Close flushes the stream, writes the extracted map and the external reference.
func (e *Extractor) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if len(e.partial) > 0 {
		last := e.partial
		e.partial = nil
		if err := e.line(last); err != nil {
			return err
		}
	}
	if e.held == nil {
		return ErrNoSourceMap
	}

	data, err := decodeDataURL(strings.TrimSpace(strings.TrimPrefix(string(e.held), inlinePrefix)))
	if err != nil {
		return err
	}
	if _, err := e.mapDst.Write(data); err != nil {
		return fmt.Errorf("write source map: %w", err)
	}
	_, err = fmt.Fprintf(e.dst, "//# sourceMappingURL=%s\n", e.mapURL)
	return err
}

// decodeDataURL decodes the part of a data: URL after the scheme.
func decodeDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("malformed inline source map")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode inline source map: %w", err)
		}
		return data, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode inline source map: %w", err)
	}
	return []byte(unescaped), nil
}
