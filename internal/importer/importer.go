package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookshop/internal/domain"
	"bookshop/internal/money"
	productsvc "bookshop/internal/service/product"
)

type ProductWriter interface {
	GetByISBN(ctx context.Context, isbn string) (*domain.Product, error)
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
	Update(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// CSVImporter reads book CSV files and inserts or updates products, keyed
// by ISBN when one is present.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{reader: csvr, productRepo: repo}
}

// Result counts what a run did.
type Result struct {
	Created int
	Updated int
}

func (r Result) Total() int {
	return r.Created + r.Updated
}

var requiredHeaders = []string{"title", "author", "price", "category"}

// Run imports every data row. It stops at the first bad row and returns
// what was imported before it.
func (i *CSVImporter) Run(ctx context.Context) (Result, error) {
	var res Result
	headers, err := i.reader.Read()
	if err != nil {
		return res, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return res, fmt.Errorf("missing column %q", h)
		}
	}

	line := 1
	for {
		record, err := i.reader.Read()
		line++
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", line, err)
		}
		created, err := i.save(ctx, p)
		if err != nil {
			return res, fmt.Errorf("row %d (%s): %w", line, p.Title, err)
		}
		if created {
			res.Created++
		} else {
			res.Updated++
		}
	}
	return res, nil
}

func (i *CSVImporter) save(ctx context.Context, p domain.Product) (bool, error) {
	if p.ISBN != "" {
		existing, err := i.productRepo.GetByISBN(ctx, p.ISBN)
		switch {
		case err == nil:
			p.ID = existing.ID
			_, err = i.productRepo.Update(ctx, p)
			return false, err
		case !errors.Is(err, domain.ErrNotFound):
			return false, err
		}
	}
	_, err := i.productRepo.Create(ctx, p)
	return true, err
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	price, err := money.Parse(pick(record, index, "price"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("price: %w", err)
	}
	p := domain.Product{
		Title:           pick(record, index, "title"),
		Author:          pick(record, index, "author"),
		Price:           price,
		Category:        pick(record, index, "category"),
		ISBN:            pick(record, index, "isbn"),
		Description:     pick(record, index, "description"),
		Image:           pick(record, index, "image"),
		Language:        pick(record, index, "language"),
		Publisher:       pick(record, index, "publisher"),
		PublicationDate: pick(record, index, "publicationdate"),
	}
	if p.Stock, err = pickInt(record, index, "stock"); err != nil {
		return p, err
	}
	if p.Pages, err = pickInt(record, index, "pages"); err != nil {
		return p, err
	}
	if v := pick(record, index, "rating"); v != "" {
		if p.Rating, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("rating: %w", err)
		}
	}
	return p, productsvc.Validate(p)
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func pickInt(record []string, index map[string]int, key string) (int, error) {
	v := pick(record, index, key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
