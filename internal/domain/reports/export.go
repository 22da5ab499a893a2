package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var weekdayNames = [7]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

// Export renders the summary as an .xlsx workbook with one sheet per
// section and returns the file bytes.
func Export(sum Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Resumo"); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Período", fmt.Sprintf("%s a %s", sum.From, sum.To)},
		{"Atendimentos", sum.SessionCount},
		{"Receita de atendimentos", sum.Revenue},
		{"Receita do bar", sum.DrinkRevenue},
		{"Comissões", sum.Commissions},
		{"Líquido", sum.Net},
		{"Ticket médio", sum.AverageTicket},
	}
	if err := writeRows(f, "Resumo", summaryRows); err != nil {
		return nil, err
	}

	provRows := [][]interface{}{{"Profissional", "Atendimentos", "Comissões"}}
	for _, p := range sum.Providers {
		provRows = append(provRows, []interface{}{p.Name, p.Sessions, p.Commissions})
	}
	if err := addSheet(f, "Profissionais", provRows); err != nil {
		return nil, err
	}

	hourRows := [][]interface{}{{"Hora", "Atendimentos"}}
	for h, n := range sum.ByHour {
		hourRows = append(hourRows, []interface{}{fmt.Sprintf("%02d:00", h), n})
	}
	dayRows := [][]interface{}{{"Dia", "Atendimentos"}}
	for d, n := range sum.ByWeekday {
		dayRows = append(dayRows, []interface{}{weekdayNames[d], n})
	}
	if err := addSheet(f, "Horários", append(hourRows, dayRows...)); err != nil {
		return nil, err
	}

	drinkRows := [][]interface{}{{"Cliente", "Comandas", "Consumo"}}
	for _, c := range sum.DrinkConsumers {
		drinkRows = append(drinkRows, []interface{}{c.Customer, c.Orders, c.Spent})
	}
	if err := addSheet(f, "Bar", drinkRows); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("add sheet %s: %w", name, err)
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	return nil
}
