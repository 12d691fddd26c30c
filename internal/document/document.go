// Package document loads user-attached files into the session document
// model: PDFs are split into per-page text, plain text is paginated, and
// anything else (images, unknown binaries) is carried as raw bytes for
// vision analysis.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jama7777/Inifinite-wiki/internal/session"
)

// ErrEmpty is returned when the attached file has no content at all.
var ErrEmpty = errors.New("document: empty file")

// errNoText signals a PDF whose pages yielded no extractable text, such as
// a scanned document. The caller falls back to a binary attachment.
var errNoText = errors.New("document: no extractable text")

// Load builds a session.Document from raw file bytes. name is the original
// filename, used for display and MIME detection.
func Load(name string, data []byte) (session.Document, error) {
	if len(data) == 0 {
		return session.Document{}, ErrEmpty
	}

	mime := detectMIME(name, data)
	doc := session.Document{Name: filepath.Base(name), MIME: mime}

	switch {
	case mime == "application/pdf":
		pages, err := extractPDF(data)
		if errors.Is(err, errNoText) {
			// Scanned or image-only PDF: keep the bytes, let the vision
			// model read it.
			doc.Binary = data
			return doc, nil
		}
		if err != nil {
			return session.Document{}, fmt.Errorf("loading %s: %w", name, err)
		}
		doc.Pages = pages
		doc.Text = strings.Join(pages, "\n\n")

	case strings.HasPrefix(mime, "text/"):
		text := string(bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n")))
		doc.Text = text
		doc.Pages = Paginate(text)

	default:
		doc.Binary = data
	}

	return doc, nil
}

// detectMIME prefers the filename extension and falls back to content
// sniffing, so a ".md" file is not misread as plain octets.
func detectMIME(name string, data []byte) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".txt", ".text":
		return "text/plain"
	case ".md", ".markdown":
		return "text/markdown"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// extractPDF pulls per-page text out of a PDF by decoding each page's
// content stream and collecting its text-show operands.
func extractPDF(data []byte) ([]string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	pages := make([]string, 0, ctx.PageCount)
	any := false
	for n := 1; n <= ctx.PageCount; n++ {
		r, err := pdfcpu.ExtractPageContent(ctx, n)
		if err != nil || r == nil {
			pages = append(pages, "")
			continue
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(r); err != nil {
			pages = append(pages, "")
			continue
		}
		text := contentStreamText(buf.Bytes())
		if text != "" {
			any = true
		}
		pages = append(pages, text)
	}
	if !any {
		return nil, errNoText
	}
	return pages, nil
}

// contentStreamText scans a decoded PDF content stream for literal strings
// feeding Tj/TJ/' operators. It handles the common escapes and ignores hex
// strings; good enough for text-first PDFs, and scanned ones fall back to
// vision anyway.
func contentStreamText(stream []byte) string {
	var (
		out     strings.Builder
		lit     strings.Builder
		inLit   bool
		depth   int
		pending bool // a literal was closed, waiting to see its operator
	)

	flushIf := func(op []byte) {
		// Numeric operands appear between literals inside TJ arrays; they
		// must not discard accumulated text.
		if c := op[0]; c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			return
		}
		isShow := bytes.Equal(op, []byte("Tj")) || bytes.Equal(op, []byte("TJ")) ||
			bytes.Equal(op, []byte("'")) || bytes.Equal(op, []byte("\""))
		if pending && isShow {
			out.WriteString(lit.String())
			out.WriteByte(' ')
		}
		lit.Reset()
		pending = false
	}

	i := 0
	for i < len(stream) {
		c := stream[i]
		if inLit {
			switch c {
			case '\\':
				if i+1 < len(stream) {
					i++
					switch e := stream[i]; e {
					case 'n':
						lit.WriteByte('\n')
					case 't':
						lit.WriteByte('\t')
					case 'r', 'b', 'f':
						// ignore
					default:
						if e >= '0' && e <= '7' {
							// octal escape, up to three digits
							v := int(e - '0')
							for k := 0; k < 2 && i+1 < len(stream) && stream[i+1] >= '0' && stream[i+1] <= '7'; k++ {
								i++
								v = v*8 + int(stream[i]-'0')
							}
							if v < utf8.RuneSelf {
								lit.WriteByte(byte(v))
							}
						} else {
							lit.WriteByte(e)
						}
					}
				}
			case '(':
				depth++
				lit.WriteByte(c)
			case ')':
				if depth == 0 {
					inLit = false
					pending = true
				} else {
					depth--
					lit.WriteByte(c)
				}
			default:
				lit.WriteByte(c)
			}
			i++
			continue
		}

		switch {
		case c == '(':
			inLit = true
			depth = 0
			i++
		case c == '<':
			// hex string or dict open, skip to close
			for i < len(stream) && stream[i] != '>' {
				i++
			}
			i++
		case isRegular(c):
			start := i
			for i < len(stream) && isRegular(stream[i]) {
				i++
			}
			flushIf(stream[start:i])
		default:
			i++
		}
	}

	return strings.TrimSpace(out.String())
}

func isRegular(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0, '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}
