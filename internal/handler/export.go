package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/examprep/internal/middleware"
	"github.com/yourusername/examprep/internal/service/examservice"
)

var exportHeaders = []string{"#", "Question ID", "Topic", "Question", "Selected answer", "Correct answer", "Correct", "Time taken (s)"}

// Export выгружает журнал ответов попытки в CSV или Excel
// GET /quiz/:attempt_id/export?user_id=N&format=csv|xlsx
func (h *ExamHandler) Export(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uint)
	attemptID := c.GetString(middleware.AttemptIDKey)
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
		return
	}

	_, rows, err := h.service.Export(c.Request.Context(), userID, attemptID)
	if err != nil {
		h.handleExamError(c, err)
		return
	}

	filename := fmt.Sprintf("attempt_%s_%s", attemptID[:8], time.Now().Format("2006-01-02"))
	if format == "xlsx" {
		exportXLSX(c, rows, filename)
		return
	}
	exportCSV(c, rows, filename)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// exportCSV пишет CSV с BOM, чтобы Excel корректно открыл UTF-8
func exportCSV(c *gin.Context, rows []examservice.ExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))
	c.Status(http.StatusOK)

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			strconv.Itoa(r.Index),
			strconv.FormatUint(uint64(r.QuestionID), 10),
			sanitizeForExcel(r.Topic),
			sanitizeForExcel(r.Content),
			sanitizeForExcel(r.SelectedAnswer),
			sanitizeForExcel(r.CorrectAnswer),
			yesNo(r.IsCorrect),
			strconv.Itoa(r.TimeTaken),
		})
	}
}

// exportXLSX пишет Excel через StreamWriter
func exportXLSX(c *gin.Context, rows []examservice.ExportRow, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Answers"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ExamHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, h := range exportHeaders {
		headers[i] = h
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ExamHandler] Ошибка записи заголовков: %v", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			r.Index, r.QuestionID, sanitizeForExcel(r.Topic), sanitizeForExcel(r.Content),
			sanitizeForExcel(r.SelectedAnswer), sanitizeForExcel(r.CorrectAnswer), yesNo(r.IsCorrect), r.TimeTaken,
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[ExamHandler] Ошибка записи строки %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ExamHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ExamHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
