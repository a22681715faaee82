package repository

import (
	"github.com/diillson/finance-dashboard-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(result entity.SyncResult, filename string, outputDir string) (string, error)
	ExportToJSON(result entity.SyncResult, filename string, outputDir string) (string, error)
	ExportToPDF(result entity.SyncResult, filename string, outputDir string) (string, error)
}
