// Package export renders appointment reports as xlsx workbooks for the
// shop owner.
package export

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/emryildiz/barberbot/internal/domain"
	"github.com/emryildiz/barberbot/internal/models"
	"github.com/emryildiz/barberbot/internal/timeutil"
)

const sheetName = "Randevular"

var headerRow = []string{"Tarih", "Saat", "Müşteri", "Telefon", "Berber", "Hizmet", "Durum"}

// Exporter writes appointment workbooks. Names are resolved through the
// catalog and customer stores; a missing reference renders as a dash instead
// of failing the whole report.
type Exporter struct {
	customers domain.CustomerStore
	catalog   domain.CatalogStore
	logger    *zerolog.Logger
}

func NewExporter(customers domain.CustomerStore, catalog domain.CatalogStore, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		customers: customers,
		catalog:   catalog,
		logger:    logger,
	}
}

// WriteReport streams an xlsx workbook of the given appointments, one row
// per appointment, times in the business-local zone.
func (e *Exporter) WriteReport(ctx context.Context, w io.Writer, appointments []*models.Appointment) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, a := range appointments {
		local := timeutil.ToBusiness(a.StartTime)
		row := []interface{}{
			local.Format("02.01.2006"),
			local.Format("15:04"),
			e.customerName(ctx, a.CustomerID),
			e.customerPhone(ctx, a.CustomerID),
			e.staffName(ctx, a.StaffID),
			e.serviceName(ctx, a.ServiceID),
			a.Status,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (e *Exporter) customerName(ctx context.Context, id int64) string {
	if c, err := e.customers.GetCustomer(ctx, id); err == nil {
		return c.Name
	}
	return "-"
}

func (e *Exporter) customerPhone(ctx context.Context, id int64) string {
	if c, err := e.customers.GetCustomer(ctx, id); err == nil {
		return c.PhoneNumber
	}
	return "-"
}

func (e *Exporter) staffName(ctx context.Context, id int64) string {
	if s, err := e.catalog.GetStaff(ctx, id); err == nil {
		return s.Username
	}
	return "-"
}

func (e *Exporter) serviceName(ctx context.Context, id int64) string {
	if s, err := e.catalog.GetService(ctx, id); err == nil {
		return s.Name
	}
	return "-"
}
