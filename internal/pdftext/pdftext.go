// Package pdftext decodes resume PDFs to plain text. Two independent
// strategies run concurrently (the library's plain-text stream and a
// row-ordered reconstruction) and whichever recovers more characters wins.
// Japanese resume layouts defeat each strategy often enough that neither is
// trustworthy alone.
package pdftext

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// Strategy names reported in Result.Method.
const (
	MethodPlainText  = "plain-text"
	MethodRowOrdered = "row-ordered"
)

// Result is the decoded document plus the strategy comparison, kept for the
// diagnostic trail.
type Result struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	Method    string `json:"method"`

	PlainTextLen int `json:"plain_text_len"`
	RowTextLen   int `json:"row_text_len"`
}

// DecodeError reports that no strategy could decode the document.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type outcome struct {
	text  string
	pages int
	err   error
}

// Extract decodes the PDF at path with both strategies and returns the longer
// output. One strategy failing is tolerated; both failing is a DecodeError.
func Extract(ctx context.Context, path string) (*Result, error) {
	var plain, rows outcome

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		plain = decodePlain(path)
		return nil
	})
	g.Go(func() error {
		rows = decodeRows(path)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if plain.err != nil && rows.err != nil {
		return nil, &DecodeError{Path: path, Err: errors.Join(plain.err, rows.err)}
	}

	winner, method := pickWinner(plain, rows)
	return &Result{
		Text:         winner.text,
		PageCount:    winner.pages,
		Method:       method,
		PlainTextLen: len(plain.text),
		RowTextLen:   len(rows.text),
	}, nil
}

// pickWinner keeps the longer decode; ties go to the plain-text strategy.
// Callers guarantee at least one outcome succeeded.
func pickWinner(plain, rows outcome) (outcome, string) {
	if plain.err != nil {
		return rows, MethodRowOrdered
	}
	if rows.err == nil && len(rows.text) > len(plain.text) {
		return rows, MethodRowOrdered
	}
	return plain, MethodPlainText
}

func decodePlain(path string) outcome {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return outcome{err: err}
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return outcome{text: sb.String(), pages: reader.NumPage()}
}

// decodeRows rebuilds the text row by row, which keeps table-heavy resume
// layouts readable where the plain-text stream interleaves columns.
func decodeRows(path string) outcome {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return outcome{err: err}
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteString("\n")
		}
	}
	return outcome{text: sb.String(), pages: reader.NumPage()}
}
