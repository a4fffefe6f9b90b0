// services/export.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/questforge/progression_api/model"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExportService produces the flat report of every player level joined
// to its level title and (at most) one prize title. Read-only; it
// takes no locks against ongoing writes.
type ExportService struct {
	appContext.DefaultService

	dbSvc    *DbService
	minioSvc *MinIOService
}

const EXPORT_SVC = "export_svc"

const exportBatchSize = 1000

var exportHeader = []string{"player_id", "level_title", "completed", "prize_title"}

func (svc ExportService) Id() string {
	return EXPORT_SVC
}

func (svc *ExportService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ExportService) Start() error {
	svc.dbSvc = svc.Service(DB_SVC).(*DbService)
	svc.minioSvc = svc.Service(MINIO_SVC).(*MinIOService)
	return nil
}

// ExportPlayerLevels streams the report into w and returns the number
// of data rows written.
func (svc *ExportService) ExportPlayerLevels(w io.Writer) (int, error) {
	rows, err := ExportPlayerLevelsCSV(svc.dbSvc.Db(), w)
	if err != nil {
		return rows, err
	}
	exportRowsTotal.Add(float64(rows))
	return rows, nil
}

func (svc *ExportService) ExportToFile(path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := svc.ExportPlayerLevels(f)
	if err != nil {
		return rows, err
	}
	return rows, f.Sync()
}

// ExportAndArchive writes the report into the MinIO archive bucket.
// An empty object name yields a timestamped one.
func (svc *ExportService) ExportAndArchive(objectName string) (string, int, error) {
	if objectName == "" {
		objectName = fmt.Sprintf("player_levels_%s.csv", time.Now().UTC().Format("20060102T150405Z"))
	}

	var buf bytes.Buffer
	rows, err := svc.ExportPlayerLevels(&buf)
	if err != nil {
		return "", rows, err
	}

	if _, err := svc.minioSvc.UploadReport(objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "text/csv"); err != nil {
		return "", rows, err
	}

	log.WithFields(log.Fields{
		"object": objectName,
		"rows":   rows,
	}).Info("Archived player level export")
	return objectName, rows, nil
}

// ReportURL hands out a temporary download link for an archived report.
func (svc *ExportService) ReportURL(objectName string) (string, error) {
	return svc.minioSvc.PresignedReportURL(objectName, 24*time.Hour)
}

// ExportPlayerLevelsCSV is the projection itself, callable without the
// service container (the seed binary uses it directly). PlayerLevel
// rows are scanned in bounded batches; the catalog lookups are loaded
// once up front since the catalog side is small. When a level carries
// several prizes only the first association (by insertion order) is
// reported.
func ExportPlayerLevelsCSV(db *gorm.DB, w io.Writer) (int, error) {
	levelTitles, firstPrizeTitles, err := loadCatalogLookups(db)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}

	rows := 0
	for offset := 0; ; offset += exportBatchSize {
		var batch []model.PlayerLevel
		err := db.Model(&model.PlayerLevel{}).
			Order("created_at, player_id, level_id").
			Limit(exportBatchSize).
			Offset(offset).
			Find(&batch).Error
		if err != nil {
			return rows, err
		}

		for _, pl := range batch {
			record := []string{
				pl.PlayerID,
				levelTitles[pl.LevelID],
				strconv.FormatBool(pl.Completed != nil),
				firstPrizeTitles[pl.LevelID],
			}
			if err := cw.Write(record); err != nil {
				return rows, err
			}
			rows++
		}

		if len(batch) < exportBatchSize {
			break
		}
	}

	cw.Flush()
	return rows, cw.Error()
}

func loadCatalogLookups(db *gorm.DB) (levelTitles, firstPrizeTitles map[string]string, err error) {
	var levels []model.Level
	if err = db.Find(&levels).Error; err != nil {
		return nil, nil, err
	}
	levelTitles = make(map[string]string, len(levels))
	for _, level := range levels {
		levelTitles[level.ID] = level.Title
	}

	var prizes []model.Prize
	if err = db.Find(&prizes).Error; err != nil {
		return nil, nil, err
	}
	prizeTitles := make(map[string]string, len(prizes))
	for _, prize := range prizes {
		prizeTitles[prize.ID] = prize.Title
	}

	var associations []model.LevelPrize
	if err = db.Order("created_at, prize_id").Find(&associations).Error; err != nil {
		return nil, nil, err
	}
	firstPrizeTitles = make(map[string]string)
	for _, lp := range associations {
		if _, seen := firstPrizeTitles[lp.LevelID]; !seen {
			firstPrizeTitles[lp.LevelID] = prizeTitles[lp.PrizeID]
		}
	}

	return levelTitles, firstPrizeTitles, nil
}
