package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/khoahotran/portfolio-ai/internal/application/service"
	"github.com/khoahotran/portfolio-ai/internal/domain/resume"
)

const (
	DefaultMaxChars = 12000
	minDocRunLength = 4
)

var ErrUnsupportedType = errors.New("unsupported document type")

type textExtractor struct {
	maxChars int
}

func NewTextExtractor(maxChars int) service.TextExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &textExtractor{maxChars: maxChars}
}

func (e *textExtractor) ExtractText(mimeType string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch mimeType {
	case "text/plain":
		text = string(data)
	case resume.MimePDF:
		text, err = extractPDFText(data)
	case resume.MimeDOCX:
		text, err = extractDocxText(data)
	case resume.MimeDOC:
		text = extractDocText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mimeType)
	}
	if err != nil {
		return "", err
	}

	return truncate(collapseBlankLines(text), e.maxChars), nil
}

func extractPDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return wordMLText(doc.Editable().GetContent())
}

// wordMLText keeps the text runs of a WordprocessingML body and turns
// paragraph and line breaks into newlines.
func wordMLText(body string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(body))
	var sb strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

// extractDocText pulls readable runs out of a legacy binary Word file.
// Text in those files is mostly 8-bit or UTF-16LE, dropping NUL bytes
// recovers both well enough for an LLM to work with.
func extractDocText(data []byte) string {
	cleaned := bytes.ReplaceAll(data, []byte{0}, nil)

	var (
		sb  strings.Builder
		run strings.Builder
	)
	flush := func() {
		if utf8.RuneCountInString(run.String()) >= minDocRunLength {
			sb.WriteString(strings.TrimSpace(run.String()))
			sb.WriteByte('\n')
		}
		run.Reset()
	}

	for _, b := range cleaned {
		r := rune(b)
		if r == '\r' || r == '\n' {
			flush()
			continue
		}
		if r < utf8.RuneSelf && (unicode.IsPrint(r) || r == '\t') {
			run.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return sb.String()
}

func collapseBlankLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxChars])
}
