package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	rowTreatment = "treatment"
	rowPromotion = "promotion"
	rowComponent = "component"
)

var priceListHeader = []interface{}{
	"kind",
	"treatment_id",
	"treatment_name",
	"component_id",
	"component_name",
	"session_count",
	"price",
}

// PriceStore — то, что нужно прайс-листу от репозитория каталога.
type PriceStore interface {
	ListTreatments(ctx context.Context) ([]Treatment, error)
	ListComponents(ctx context.Context, promotionID int64) ([]PromotionComponent, error)
	UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error
	UpdateComponentPrice(ctx context.Context, componentID int64, price decimal.Decimal) error
}

// ExportPriceList выгружает прайс в xlsx: строка на процедуру, для промо-пакета
// ещё по строке на компонент. Строку promotion при импорте не читаем — её
// цена всегда равна сумме компонентов.
func ExportPriceList(ctx context.Context, store PriceStore) ([]byte, error) {
	items, err := store.ListTreatments(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetRow(sheet, "A1", &priceListHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	row := 2
	put := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, t := range items {
		if !t.IsPromotion {
			if err := put([]interface{}{rowTreatment, t.ID, t.Name, "", "", "", t.Cost.StringFixed(2)}); err != nil {
				return nil, err
			}
			continue
		}
		if err := put([]interface{}{rowPromotion, t.ID, t.Name, "", "", "", t.Cost.StringFixed(2)}); err != nil {
			return nil, err
		}
		comps, err := store.ListComponents(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		for _, c := range comps {
			if err := put([]interface{}{rowComponent, t.ID, t.Name, c.ID, c.Name, c.SessionCount, c.PricePerSession.StringFixed(2)}); err != nil {
				return nil, err
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type ImportResult struct {
	Rows    int      `json:"rows"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportPriceList читает xlsx в формате ExportPriceList и обновляет цены по id.
// Пустая ячейка price — цену не меняем. Ошибки по строкам копятся в результате,
// обработка продолжается.
func ImportPriceList(ctx context.Context, store PriceStore, data []byte) (ImportResult, error) {
	var res ImportResult

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return res, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(f.GetActiveSheetIndex()))
	if err != nil {
		return res, err
	}
	if len(rows) < 2 {
		return res, errors.New("price list has no data rows")
	}
	if len(rows[0]) < len(priceListHeader) {
		return res, fmt.Errorf("price list: expected %d columns, got %d", len(priceListHeader), len(rows[0]))
	}

	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < len(priceListHeader) {
			continue
		}
		kind := strings.TrimSpace(row[0])
		priceStr := strings.TrimSpace(row[6])
		if priceStr == "" || kind == rowPromotion {
			continue
		}
		res.Rows++
		line := i + 1

		price, err := decimal.NewFromString(strings.ReplaceAll(priceStr, ",", "."))
		if err != nil || price.IsNegative() {
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: invalid price %q", line, priceStr))
			continue
		}

		switch kind {
		case rowTreatment:
			id, err := strconv.ParseInt(strings.TrimSpace(row[1]), 10, 64)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: invalid treatment_id", line))
				continue
			}
			err = store.UpdateCost(ctx, id, price)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}
		case rowComponent:
			id, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: invalid component_id", line))
				continue
			}
			err = store.UpdateComponentPrice(ctx, id, price)
			if err != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("row %d: %v", line, err))
				continue
			}
		default:
			res.Errors = append(res.Errors, fmt.Sprintf("row %d: unknown kind %q", line, kind))
			continue
		}
		res.Updated++
	}
	return res, nil
}
