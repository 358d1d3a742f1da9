// Package decode strips transport envelopes (MIME email, PDF) from vendor
// result files and recovers the underlying text payload.
package decode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Kind tells the downstream format detector which decoder path produced
// the payload.
type Kind int

const (
	KindText Kind = iota
	KindEmail
	KindPDF
	KindCSV
)

func (k Kind) String() string {
	switch k {
	case KindEmail:
		return "email"
	case KindPDF:
		return "pdf"
	case KindCSV:
		return "csv"
	default:
		return "text"
	}
}

var (
	ErrUnsupportedEncoding = errors.New("unsupported transfer encoding")
	ErrEmptyPayload        = errors.New("decoded payload is empty")
)

// Payload is the decoded text of one input file.
type Payload struct {
	Text        string
	Kind        Kind
	ContentType string     // content type of the selected MIME part (email only)
	MailDate    *time.Time // Date header of the email envelope (email only)
}

var boundaryRe = regexp.MustCompile(`boundary="?([^";\r\n]+)"?`)

// File reads and decodes a single input file, dispatching on the
// file extension. Extensionless files are treated as plain text.
func File(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, filepath.Ext(path))
}

func Decode(data []byte, ext string) (*Payload, error) {
	switch strings.ToLower(ext) {
	case ".eml":
		return decodeEmail(data)
	case ".pdf":
		return decodePdf(data)
	case ".csv":
		return plainPayload(data, KindCSV)
	default:
		return plainPayload(data, KindText)
	}
}

func plainPayload(data []byte, kind Kind) (*Payload, error) {
	text := normalizeCharset(data)
	if len(strings.TrimSpace(text)) == 0 {
		return nil, ErrEmptyPayload
	}
	return &Payload{Text: text, Kind: kind}, nil
}

//nolint:funlen // sequential decode steps
func decodeEmail(data []byte) (*Payload, error) {
	raw := normalizeCharset(data)
	headers, body := splitHeadersBody(raw)

	ret := &Payload{Kind: KindEmail}
	if date, err := mail.ParseDate(headers["date"]); err == nil {
		ret.MailDate = &date
	}

	part := selectPart(headers, body)

	decoded, err := decodeTransferEncoding(part.body, part.encoding)
	if err != nil {
		return nil, err
	}
	decoded = normalizeCharset([]byte(decoded))
	if len(strings.TrimSpace(decoded)) == 0 {
		return nil, ErrEmptyPayload
	}
	ret.Text = decoded
	ret.ContentType = part.contentType
	return ret, nil
}

type mimePart struct {
	contentType string
	encoding    string
	body        string
}

// selectPart locates the MIME part carrying the result data. Multipart
// bodies prefer the text/html part, then the first textual part. A body
// without a detectable boundary is treated as a single part described by
// the top level headers.
func selectPart(headers map[string]string, body string) mimePart {
	boundary := findBoundary(headers["content-type"], body)
	if boundary == "" {
		return mimePart{
			contentType: headers["content-type"],
			encoding:    headers["content-transfer-encoding"],
			body:        body,
		}
	}

	parts := splitParts(body, boundary)
	var firstText *mimePart
	for i := range parts {
		ct := strings.ToLower(parts[i].contentType)
		if strings.Contains(ct, "text/html") {
			return parts[i]
		}
		if firstText == nil && (ct == "" || strings.Contains(ct, "text/")) {
			firstText = &parts[i]
		}
	}
	if firstText != nil {
		return *firstText
	}
	return mimePart{
		contentType: headers["content-type"],
		encoding:    headers["content-transfer-encoding"],
		body:        body,
	}
}

// findBoundary reads the boundary from the declared content type and
// falls back to a pattern search. Vendor emails are not always
// well-formed, so the pattern search covers boundaries declared in
// folded or mangled headers.
func findBoundary(contentType, body string) string {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if b, ok := params["boundary"]; ok {
			return b
		}
	}
	if m := boundaryRe.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}

func splitParts(body, boundary string) []mimePart {
	chunks := strings.Split(body, "--"+boundary)
	ret := make([]mimePart, 0, len(chunks))
	for _, chunk := range chunks {
		chunk = strings.TrimPrefix(chunk, "--")
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		headers, partBody := splitHeadersBody(strings.TrimLeft(chunk, "\r\n"))
		ret = append(ret, mimePart{
			contentType: headers["content-type"],
			encoding:    headers["content-transfer-encoding"],
			body:        partBody,
		})
	}
	return ret
}

// splitHeadersBody splits on the first blank line and parses the header
// block, honoring folded continuation lines.
func splitHeadersBody(raw string) (headers map[string]string, body string) {
	headers = map[string]string{}
	var headerBlock string
	if idx := blankLineRe.FindStringIndex(raw); idx != nil {
		headerBlock = raw[:idx[0]]
		body = raw[idx[1]:]
	} else {
		headerBlock = raw
	}

	var lastKey string
	for _, line := range strings.Split(headerBlock, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if lastKey != "" {
				headers[lastKey] += " " + strings.TrimSpace(line)
			}
			continue
		}
		if key, value, found := strings.Cut(line, ":"); found {
			lastKey = strings.ToLower(strings.TrimSpace(key))
			headers[lastKey] = strings.TrimSpace(value)
		}
	}
	return headers, body
}

var blankLineRe = regexp.MustCompile(`\r?\n\r?\n`)

func decodeTransferEncoding(body, encoding string) (string, error) {
	switch enc := strings.ToLower(strings.TrimSpace(encoding)); enc {
	case "base64":
		return decodeBase64(body)
	case "quoted-printable":
		decoded, err := io.ReadAll(
			quotedprintable.NewReader(strings.NewReader(body)))
		if err != nil {
			// quoted-printable payloads are frequently truncated at the
			// MIME boundary; keep what was readable
			if len(decoded) > 0 {
				return string(decoded), nil
			}
			return "", fmt.Errorf("%w: quoted-printable: %v", ErrUnsupportedEncoding, err)
		}
		return string(decoded), nil
	case "", "7bit", "8bit", "binary":
		return body, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, enc)
	}
}

func decodeBase64(body string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, body)
	// trailing boundary dashes survive sloppy part splits
	compact = strings.TrimRight(compact, "-")
	if m := len(compact) % 4; m != 0 {
		compact = compact[:len(compact)-m]
	}
	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", fmt.Errorf("%w: base64: %v", ErrUnsupportedEncoding, err)
	}
	return string(decoded), nil
}

// normalizeCharset returns valid UTF-8. Vendor exports with accented
// driver names are commonly Windows-1252/Latin-1; anything that is not
// already valid UTF-8 is re-decoded byte-preserving instead of failing
// the file.
func normalizeCharset(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// cannot happen for Windows-1252 (all bytes map), keep the raw bytes
		return string(data)
	}
	return string(decoded)
}
