package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"confhub/internal/core/types"
	"confhub/internal/domain/stores/item"
)

// ItemColumns is the header expected by ReadItemsCSV. Only code and description are required.
var ItemColumns = []string{"code", "description", "unit_of_issue", "current_stock", "min_stock", "max_stock", "unit_cost"}

// ReadItemsCSV parses an item import file. The first row is a header naming
// any subset of ItemColumns in any order; blank rows are skipped.
func ReadItemsCSV(r io.Reader) ([]*item.Item, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"code", "description"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var items []*item.Item
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("code") == "" && get("description") == "" {
			continue
		}

		it := item.New(get("code"), get("description"), get("unit_of_issue"))
		for col, dst := range map[string]*types.Quantity{
			"current_stock": &it.CurrentStock,
			"min_stock":     &it.MinStock,
			"max_stock":     &it.MaxStock,
		} {
			if v := get(col); v != "" {
				q, err := types.ParseQuantity(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: %s: %w", line, col, err)
				}
				*dst = q
			}
		}
		if v := get("unit_cost"); v != "" {
			m, err := types.NewMoneyFromString(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: unit_cost: %w", line, err)
			}
			it.UnitCost = m
		}
		items = append(items, it)
	}
	return items, nil
}
