package repository

import (
	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportPlanToCSV(report entity.SessionReport, filename string, outputDir string) (string, error)
	ExportPlanToJSON(report entity.SessionReport, filename string, outputDir string) (string, error)
	ExportPlanToPDF(report entity.SessionReport, filename string, outputDir string) (string, error)
}
