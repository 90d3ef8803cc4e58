package settings

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// DefaultFile is the settings file name used when none is configured.
const DefaultFile = "settings.cfg"

// Format identifies the markup language of a settings file.
type Format int

// Supported formats.
const (
	FormatXML Format = iota
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xml", "":
		return FormatXML, nil
	default:
		return 0, fmt.Errorf("unknown settings format %q", s)
	}
}

// Status is the outcome of loading a Document.
type Status int

// Load statuses.
const (
	StatusNoError Status = iota
	StatusFileError
	StatusFormatError
)

func (s Status) String() string {
	switch s {
	case StatusNoError:
		return "no_error"
	case StatusFileError:
		return "file_error"
	case StatusFormatError:
		return "format_error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var (
	errNoRoot       = errors.New("document has no root element")
	errExtraContent = errors.New("extra content at end of document")
	errOutsideRoot  = errors.New("text outside the root element")
)

// Option configures Load and Decode.
type Option func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger receiving load and navigation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// Document is a settings tree populated from a markup file.
//
// Callers must check Status before trusting the tree: after a format error
// the tree holds whatever was parsed before the error.
type Document struct {
	*Tree

	cursor   Cursor
	fileName string
	format   Format
	status   Status
	err      error
}

func newDocument(fileName string, format Format, opts []Option) *Document {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	tree := NewTree(o.logger)
	return &Document{
		Tree:     tree,
		cursor:   tree.Root(),
		fileName: fileName,
		format:   format,
	}
}

// Load reads the settings file fileName.
func Load(fileName string, format Format, opts ...Option) *Document {
	d := newDocument(fileName, format, opts)

	f, err := os.Open(fileName)
	if err != nil {
		d.logger.Error("failed to open the settings file", "file", fileName, "error", err)
		d.fail(StatusFileError, fmt.Errorf("open settings file: %w", err))
		return d
	}
	defer func() { _ = f.Close() }()

	d.load(f)
	return d
}

// Decode reads settings from r.
func Decode(r io.Reader, format Format, opts ...Option) *Document {
	d := newDocument("", format, opts)
	d.load(r)
	return d
}

// Status returns the outcome of the load. Once an error status is set it
// never changes.
func (d *Document) Status() Status {
	return d.status
}

// Err returns the cause of a failed load, or nil.
func (d *Document) Err() error {
	return d.err
}

// FileName returns the path the document was loaded from.
func (d *Document) FileName() string {
	return d.fileName
}

// Format returns the markup format of the document.
func (d *Document) Format() Format {
	return d.format
}

func (d *Document) fail(status Status, err error) {
	if d.status != StatusNoError {
		return
	}
	d.status = status
	d.err = err
}

func (d *Document) load(r io.Reader) {
	switch d.format {
	case FormatXML:
		d.loadXML(r)
	default:
		d.logger.Error("unsupported settings format", "file", d.fileName, "format", d.format)
		d.fail(StatusFormatError, fmt.Errorf("unsupported settings format %s", d.format))
	}
}

func (d *Document) formatError(err error) {
	d.logger.Error("error while reading the xml settings file", "file", d.fileName, "error", err)
	d.fail(StatusFormatError, fmt.Errorf("parse settings: %w", err))
}

func (d *Document) loadXML(r io.Reader) {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	depth := 0
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			d.formatError(err)
			return
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && sawRoot {
				d.formatError(errExtraContent)
				return
			}
			sawRoot = true
			depth++

			name := t.Name.Local
			d.cursor.AddNode(name, DefaultValue)
			d.cursor.enter(name, LastIndex)
			for _, attr := range t.Attr {
				if isNamespaceDecl(attr.Name) {
					continue
				}
				d.cursor.SetAttribute(attr.Name.Local, attr.Value)
			}

		case xml.CharData:
			if len(bytes.TrimSpace(t)) == 0 {
				continue
			}
			if depth == 0 {
				d.formatError(errOutsideRoot)
				return
			}
			d.cursor.SetValue(string(t))

		case xml.EndElement:
			depth--
			d.cursor.exit()
		}
	}

	if !sawRoot {
		d.formatError(errNoRoot)
		return
	}
	d.cursor.returnToRoot()
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
