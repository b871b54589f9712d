package handler

import (
	"encoding/csv"
	"net/http"

	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeCSV streams rows as a CSV file download. Rows include the header as
// the first element; timestamps inside are ISO-8601 text.
func writeCSV(c *gin.Context, filename string, rows [][]string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	// Headers are already out; a write error here cannot be reported.
	_ = w.WriteAll(rows)
}

// exportError reports a failed export before any CSV bytes were written.
func exportError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Export failed: "+err.Error()))
}
