package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bububa/careerchat/components/document"
)

// Parser is a parser which renders every sheet as a markdown table
type Parser struct {
	password string
}

var _ document.Parser = (*Parser)(nil)

type Option func(*Parser)

func WithPassword(passwd string) Option {
	return func(p *Parser) {
		p.password = passwd
	}
}

func NewParser(opts ...Option) *Parser {
	ret := new(Parser)
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Parse try to parse a xlsx content from a bytes.Reader and write to an io.Writer
func (p *Parser) Parse(ctx context.Context, reader *bytes.Reader, writer io.Writer) error {
	opts := make([]excelize.Options, 0, 1)
	if p.password != "" {
		opts = append(opts, excelize.Options{Password: p.password})
	}
	doc, err := excelize.OpenReader(reader, opts...)
	if err != nil {
		return err
	}
	defer doc.Close()
	for _, sheet := range doc.GetSheetList() {
		if err := p.sheet(doc, sheet, writer); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) sheet(doc *excelize.File, sheet string, writer io.Writer) error {
	rows, err := doc.Rows(sheet)
	if err != nil {
		return err
	}
	defer rows.Close()
	var totalRows int
	for rowIdx := 1; rows.Next(); rowIdx++ {
		row, err := rows.Columns()
		if err != nil {
			return err
		}
		if len(row) == 0 {
			continue
		}
		if totalRows == 0 {
			fmt.Fprintf(writer, "# %s\n\n", sheet)
		}
		cells := make([]string, 0, len(row))
		for colIdx, cellValue := range row {
			cellValue = strings.TrimSpace(document.EscapeMarkdown(document.StripUnprintable(cellValue)))
			if cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx); err == nil {
				if _, target, _ := doc.GetCellHyperLink(sheet, cell); target != "" {
					cellValue = fmt.Sprintf("[%s](%s)", cellValue, target)
				}
			}
			cells = append(cells, cellValue)
		}
		fmt.Fprintf(writer, "| %s |\n", strings.Join(cells, " | "))
		if totalRows == 0 {
			fmt.Fprintf(writer, "|%s\n", strings.Repeat(" --- |", len(cells)))
		}
		totalRows++
	}
	if totalRows > 0 {
		writer.Write([]byte{'\n'})
	}
	return rows.Error()
}
