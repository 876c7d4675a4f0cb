package main

import (
	"net/http"
	"time"

	"bitbucket.org/kargodata/forwarding_backend/models"
	"bitbucket.org/kargodata/forwarding_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

func getBookingProfitabilityHandler(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}
	snapshot, err := models.GetBookingProfitability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func snapshotFilterFromQuery(c *gin.Context) (models.SnapshotFilter, bool) {
	var filter models.SnapshotFilter

	if v := c.Query("customer_id"); v != "" {
		id, err := utils.StringToInt(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id must be an integer"})
			return filter, false
		}
		filter.CustomerId = &id
	}
	if v := c.Query("revenue_status"); v != "" {
		status := models.RevenueItemStatus(v)
		switch status {
		case models.RevenueItemStatusUnbilled, models.RevenueItemStatusBilled, models.RevenueItemStatusPaid:
			filter.RevenueStatus = &status
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid revenue_status"})
			return filter, false
		}
	}
	if v := c.Query("margin_min"); v != "" {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "margin_min must be numeric"})
			return filter, false
		}
		filter.MarginMin = &d
	}
	if v := c.Query("margin_max"); v != "" {
		d, err := utils.ParseDecimal(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "margin_max must be numeric"})
			return filter, false
		}
		filter.MarginMax = &d
	}
	filter.UnbilledOnly = c.Query("unbilled_only") == "true"

	return filter, true
}

func getProfitabilityDashboardHandler(c *gin.Context) {
	filter, ok := snapshotFilterFromQuery(c)
	if !ok {
		return
	}
	snapshots, err := models.GetProfitabilityDashboard(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// exportProfitabilityHandler streams the filtered dashboard as an xlsx sheet.
func exportProfitabilityHandler(c *gin.Context) {
	filter, ok := snapshotFilterFromQuery(c)
	if !ok {
		return
	}
	snapshots, err := models.GetProfitabilityDashboard(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Profitability"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{"Booking Number", "Customer", "Total Revenue", "Total Cost", "Gross Profit", "Margin %", "Indicator", "Revenue Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, s := range snapshots {
		values := []interface{}{
			s.BookingNumber,
			s.CustomerName,
			s.TotalRevenue.InexactFloat64(),
			s.TotalCost.InexactFloat64(),
			s.GrossProfit.InexactFloat64(),
			s.ProfitMargin.Round(2).InexactFloat64(),
			string(s.MarginIndicator),
			string(s.RevenueStatus),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := "profitability_" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		respondError(c, err)
	}
}
