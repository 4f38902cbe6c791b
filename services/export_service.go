package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportService produces semester attendance exports (XLSX plus a CSV/JSON
// zip bundle), uploads them to S3 and tracks them as ExportArchive rows.
type ExportService struct {
	db        *gorm.DB
	awsConfig aws.Config
	analytics *AnalyticsService
}

// exportRow is one attendance record flattened for export files.
type exportRow struct {
	SubjectName string `json:"subject_name"`
	SubjectCode string `json:"subject_code"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`
	Type        string `json:"type"`
	IsHoliday   bool   `json:"is_holiday"`
	Notes       string `json:"notes"`
}

// NewExportService creates a new service instance
func NewExportService() *ExportService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; S3 operations will fail until configured")
	}

	return &ExportService{
		db:        database.DB,
		awsConfig: cfg,
		analytics: NewAnalyticsService(),
	}
}

// semesterExportData loads a semester with its subjects and every attendance
// record, flattened subject by subject in date order.
func (es *ExportService) semesterExportData(semesterID uint) (*models.Semester, []exportRow, error) {
	var semester models.Semester
	if err := es.db.Preload("Subjects").First(&semester, semesterID).Error; err != nil {
		return nil, nil, fmt.Errorf("semester %d: %w", semesterID, err)
	}

	rows := make([]exportRow, 0)
	for i := range semester.Subjects {
		subject := &semester.Subjects[i]

		var records []models.AttendanceRecord
		err := es.db.Where("subject_id = ?", subject.ID).
			Order("date, start_time").
			Find(&records).Error
		if err != nil {
			return nil, nil, fmt.Errorf("records for subject %d: %w", subject.ID, err)
		}

		for j := range records {
			r := &records[j]
			rows = append(rows, exportRow{
				SubjectName: subject.Name,
				SubjectCode: subject.Code,
				Date:        r.Date.Format("2006-01-02"),
				StartTime:   r.StartTime,
				EndTime:     r.EndTime,
				Status:      r.Status,
				Type:        r.AttendanceType,
				IsHoliday:   r.IsHoliday,
				Notes:       r.Notes,
			})
		}
	}

	return &semester, rows, nil
}

// buildWorkbook renders the export as an XLSX workbook with a record sheet
// and a per-subject summary sheet.
func (es *ExportService) buildWorkbook(semester *models.Semester, rows []exportRow, summary *SemesterAnalytics) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const recordSheet = "Attendance"
	f.SetSheetName(f.GetSheetName(0), recordSheet)

	headers := []string{"Subject", "Code", "Date", "Start", "End", "Status", "Type", "Holiday", "Notes"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(recordSheet, cell, h)
	}
	for i, row := range rows {
		values := []any{row.SubjectName, row.SubjectCode, row.Date, row.StartTime, row.EndTime, row.Status, row.Type, row.IsHoliday, row.Notes}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(recordSheet, cell, v)
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, fmt.Errorf("create summary sheet: %w", err)
	}
	summaryHeaders := []string{"Subject", "Conducted", "Attended", "Absent", "Cancelled", "Percentage", "Minimum", "Status"}
	for col, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(summarySheet, cell, h)
	}
	for i := range summary.Subjects {
		sa := &summary.Subjects[i]
		values := []any{sa.SubjectName, sa.TotalConducted, sa.TotalAttended, sa.TotalAbsent, sa.TotalCancelled, sa.AttendancePercentage, sa.MinRequiredPercentage, sa.Status}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			f.SetCellValue(summarySheet, cell, v)
		}
	}

	return f.WriteToBuffer()
}

// buildZipBundle packages the export rows as CSV and JSON with a metadata
// file, mirroring the workbook contents for non-spreadsheet consumers.
func (es *ExportService) buildZipBundle(semester *models.Semester, rows []exportRow) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)

	jsonFile, err := zipWriter.Create("attendance.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create JSON file in ZIP: %w", err)
	}
	encoder := json.NewEncoder(jsonFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(map[string]any{
		"export_date":    time.Now().UTC(),
		"semester":       semester.Name,
		"record_count":   len(rows),
		"format_version": "1.0",
		"records":        rows,
	}); err != nil {
		return nil, fmt.Errorf("failed to encode records to JSON: %w", err)
	}

	csvFile, err := zipWriter.Create("attendance.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV file in ZIP: %w", err)
	}
	csvFile.Write([]byte("Subject,Code,Date,Start,End,Status,Type,Holiday,Notes\n"))
	for _, row := range rows {
		line := fmt.Sprintf("%s,%s,%s,%s,%s,%s,%s,%t,%q\n",
			row.SubjectName, row.SubjectCode, row.Date, row.StartTime, row.EndTime,
			row.Status, row.Type, row.IsHoliday, row.Notes)
		csvFile.Write([]byte(line))
	}

	metadataFile, err := zipWriter.Create("metadata.json")
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata file in ZIP: %w", err)
	}
	if err := json.NewEncoder(metadataFile).Encode(map[string]any{
		"semester_id":    semester.ID,
		"semester_name":  semester.Name,
		"start_date":     semester.StartDate.Format("2006-01-02"),
		"end_date":       semester.EndDate.Format("2006-01-02"),
		"record_count":   len(rows),
		"created_at":     time.Now().UTC(),
		"schema_version": "1.0",
	}); err != nil {
		return nil, fmt.Errorf("failed to encode metadata to JSON: %w", err)
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("failed to close ZIP writer: %w", err)
	}
	return buf, nil
}

// ExportSemester builds the XLSX export for a semester, uploads it to S3 and
// records an ExportArchive row. Returns the archive metadata.
func (es *ExportService) ExportSemester(semesterID uint) (*models.ExportArchive, error) {
	semester, rows, err := es.semesterExportData(semesterID)
	if err != nil {
		return nil, err
	}

	summary, err := es.analytics.AnalyzeSemester(semesterID, time.Now())
	if err != nil {
		return nil, err
	}

	workbook, err := es.buildWorkbook(semester, rows, summary)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}

	now := time.Now().UTC()
	fileName := fmt.Sprintf("attendance_%d_%s_%s.xlsx", semester.ID, now.Format("2006-01-02"), uuid.New().String()[:8])
	s3Key := fmt.Sprintf("exports/%d/%02d/%s", now.Year(), now.Month(), fileName)

	archive := models.ExportArchive{
		SemesterID:  semester.ID,
		FileName:    fileName,
		S3Key:       s3Key,
		RecordCount: len(rows),
		FileSize:    int64(workbook.Len()),
		Status:      "pending",
	}
	if err := es.db.Create(&archive).Error; err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	if err := es.uploadToS3(s3Key, workbook, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
		es.db.Model(&archive).Updates(map[string]interface{}{"status": "failed", "error": err.Error()})
		return nil, fmt.Errorf("failed to upload export to S3: %w", err)
	}

	if err := es.db.Model(&archive).Update("status", "completed").Error; err != nil {
		logrus.WithError(err).Error("Failed to mark export completed")
	}
	archive.Status = "completed"

	logrus.WithFields(logrus.Fields{
		"semester_id": semester.ID,
		"s3_key":      s3Key,
		"records":     len(rows),
	}).Info("Semester export uploaded")

	return &archive, nil
}

// ExportSemesterBundle builds the CSV/JSON zip bundle and uploads it to S3.
func (es *ExportService) ExportSemesterBundle(semesterID uint) (*models.ExportArchive, error) {
	semester, rows, err := es.semesterExportData(semesterID)
	if err != nil {
		return nil, err
	}

	bundle, err := es.buildZipBundle(semester, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build bundle: %w", err)
	}

	now := time.Now().UTC()
	fileName := fmt.Sprintf("attendance_%d_%s_%s.zip", semester.ID, now.Format("2006-01-02"), uuid.New().String()[:8])
	s3Key := fmt.Sprintf("exports/%d/%02d/%s", now.Year(), now.Month(), fileName)

	archive := models.ExportArchive{
		SemesterID:  semester.ID,
		FileName:    fileName,
		S3Key:       s3Key,
		RecordCount: len(rows),
		FileSize:    int64(bundle.Len()),
		Status:      "pending",
	}
	if err := es.db.Create(&archive).Error; err != nil {
		return nil, fmt.Errorf("failed to save export metadata: %w", err)
	}

	if err := es.uploadToS3(s3Key, bundle, "application/zip"); err != nil {
		es.db.Model(&archive).Updates(map[string]interface{}{"status": "failed", "error": err.Error()})
		return nil, fmt.Errorf("failed to upload export to S3: %w", err)
	}

	if err := es.db.Model(&archive).Update("status", "completed").Error; err != nil {
		logrus.WithError(err).Error("Failed to mark export completed")
	}
	archive.Status = "completed"

	return &archive, nil
}

// ListExports returns export metadata for a semester, newest first.
func (es *ExportService) ListExports(semesterID uint) ([]models.ExportArchive, error) {
	var archives []models.ExportArchive
	err := es.db.Where("semester_id = ?", semesterID).
		Order("created_at DESC").
		Find(&archives).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve exports: %w", err)
	}
	return archives, nil
}

// DownloadExport streams a previously uploaded export from S3.
func (es *ExportService) DownloadExport(archiveID uint) (io.ReadCloser, string, error) {
	var archive models.ExportArchive
	if err := es.db.First(&archive, archiveID).Error; err != nil {
		return nil, "", fmt.Errorf("export %d: %w", archiveID, err)
	}

	reader, err := es.downloadFromS3(archive.S3Key)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download export from S3: %w", err)
	}
	return reader, archive.FileName, nil
}

func (es *ExportService) uploadToS3(key string, data *bytes.Buffer, contentType string) error {
	if es.awsConfig.Region == "" {
		return fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(es.awsConfig)
	bucketName := os.Getenv("S3_BUCKET_NAME")

	_, err := s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &key,
		Body:        bytes.NewReader(data.Bytes()),
		ContentType: aws.String(contentType),
	})
	return err
}

func (es *ExportService) downloadFromS3(key string) (io.ReadCloser, error) {
	if es.awsConfig.Region == "" {
		return nil, fmt.Errorf("AWS not configured")
	}

	s3Client := s3.NewFromConfig(es.awsConfig)
	bucketName := os.Getenv("S3_BUCKET_NAME")

	result, err := s3Client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: &bucketName,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	return result.Body, nil
}
