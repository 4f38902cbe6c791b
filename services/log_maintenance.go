package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// LogMaintenanceService moves buffered activity logs from Redis into MySQL
// and archives old rows to S3. Logs are written to Redis first on the
// request path so slow log persistence never blocks a response.
type LogMaintenanceService struct {
	redisClient *redis.Client
	awsConfig   aws.Config
}

// archivedLog is one activity log flattened for the archive file.
type archivedLog struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID uint      `json:"resource_id"`
	Details    any       `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address"`
	UserAgent  string    `json:"user_agent"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewLogMaintenanceService creates a new service instance
func NewLogMaintenanceService() *LogMaintenanceService {
	cfg, err := awscfg.LoadDefaultConfig(context.Background(), awscfg.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		logrus.WithError(err).Warn("Failed to load AWS config; log archival will fall back to pruning")
	}

	return &LogMaintenanceService{
		redisClient: database.GetRedisClient(),
		awsConfig:   cfg,
	}
}

// FlushCachedLogs moves logs older than the flush window from the Redis
// buffer into the database. Entries that fail to parse or persist are kept
// out of the queue removal so they are retried next run.
func (lms *LogMaintenanceService) FlushCachedLogs() error {
	if lms.redisClient == nil {
		return fmt.Errorf("redis client not available")
	}

	ctx := context.Background()
	cutoffTime := time.Now().Add(-1 * time.Hour)

	expiredLogs, err := lms.redisClient.ZRangeByScore(ctx, "logs:queue", &redis.ZRangeBy{
		Min: "0",
		Max: fmt.Sprintf("%d", cutoffTime.Unix()),
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to get expired logs: %v", err)
	}

	var processedCount int
	var errorCount int

	for _, logKey := range expiredLogs {
		logData, err := lms.redisClient.Get(ctx, logKey).Result()
		if err != nil {
			if err != redis.Nil {
				logrus.WithError(err).Errorf("Failed to get log data for key: %s", logKey)
				errorCount++
			}
			continue
		}

		var activityLog models.ActivityLog
		if err := json.Unmarshal([]byte(logData), &activityLog); err != nil {
			logrus.WithError(err).Errorf("Failed to unmarshal log data for key: %s", logKey)
			errorCount++
			continue
		}

		if err := database.DB.Create(&activityLog).Error; err != nil {
			logrus.WithError(err).Errorf("Failed to save log to database: %v", activityLog)
			errorCount++
			continue
		}

		pipeline := lms.redisClient.Pipeline()
		pipeline.Del(ctx, logKey)
		pipeline.ZRem(ctx, "logs:queue", logKey)
		if _, err := pipeline.Exec(ctx); err != nil {
			logrus.WithError(err).Errorf("Failed to remove log from cache: %s", logKey)
		}

		processedCount++
	}

	if processedCount > 0 || errorCount > 0 {
		logrus.Infof("Flushed %d logs to database, %d errors", processedCount, errorCount)
	}
	return nil
}

// PruneOldLogs hard-deletes activity logs older than daysOld days.
func (lms *LogMaintenanceService) PruneOldLogs(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum prune age is 7 days for safety")
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysOld)

	result := database.DB.Unscoped().
		Where("created_at < ?", cutoffDate).
		Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete old logs: %v", result.Error)
	}

	if result.RowsAffected > 0 {
		logrus.Infof("Pruned %d activity logs older than %s", result.RowsAffected, cutoffDate.Format("2006-01-02"))
	}
	return nil
}

// ArchiveOldLogs uploads activity logs older than daysOld days to S3 as a
// zipped JSON file, then hard-deletes them. When S3 is not configured the
// logs are pruned in place instead.
func (lms *LogMaintenanceService) ArchiveOldLogs(daysOld int) error {
	if daysOld < 7 {
		return fmt.Errorf("minimum archive age is 7 days for safety")
	}

	if lms.awsConfig.Region == "" {
		return lms.PruneOldLogs(daysOld)
	}

	cutoffDate := time.Now().AddDate(0, 0, -daysOld)

	batchSize := 1000
	var archived []archivedLog
	for offset := 0; ; offset += batchSize {
		var logs []models.ActivityLog
		err := database.DB.
			Preload("User").
			Where("created_at < ?", cutoffDate).
			Limit(batchSize).
			Offset(offset).
			Find(&logs).Error
		if err != nil {
			return fmt.Errorf("failed to fetch logs for archiving: %v", err)
		}
		if len(logs) == 0 {
			break
		}

		for _, entry := range logs {
			row := archivedLog{
				ID:         entry.ID,
				UserID:     entry.UserID,
				Action:     entry.Action,
				Resource:   entry.Resource,
				ResourceID: entry.ResourceID,
				IPAddress:  entry.IPAddress,
				UserAgent:  entry.UserAgent,
				CreatedAt:  entry.CreatedAt,
			}
			if len(entry.Details) > 0 {
				var details map[string]any
				if err := json.Unmarshal(entry.Details, &details); err == nil {
					row.Details = details
				}
			}
			if entry.User.ID > 0 {
				row.Username = entry.User.Username
			}
			archived = append(archived, row)
		}
	}

	if len(archived) == 0 {
		return nil
	}

	fileName := fmt.Sprintf("activity_logs_%s.zip", cutoffDate.Format("2006-01-02"))
	buf := new(bytes.Buffer)
	zipWriter := zip.NewWriter(buf)
	entry, err := zipWriter.Create("activity_logs.json")
	if err != nil {
		return fmt.Errorf("failed to create archive entry: %v", err)
	}
	encoder := json.NewEncoder(entry)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(archived); err != nil {
		return fmt.Errorf("failed to encode logs: %v", err)
	}
	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %v", err)
	}

	s3Key := fmt.Sprintf("logs/archived/%d/%02d/%s", cutoffDate.Year(), cutoffDate.Month(), fileName)
	s3Client := s3.NewFromConfig(lms.awsConfig)
	bucketName := os.Getenv("S3_BUCKET_NAME")
	contentType := "application/zip"
	_, err = s3Client.PutObject(context.Background(), &s3.PutObjectInput{
		Bucket:      &bucketName,
		Key:         &s3Key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload log archive to S3: %v", err)
	}

	result := database.DB.Unscoped().
		Where("created_at < ?", cutoffDate).
		Delete(&models.ActivityLog{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete archived logs: %v", result.Error)
	}

	logrus.WithFields(logrus.Fields{
		"s3_key":  s3Key,
		"records": len(archived),
		"deleted": result.RowsAffected,
	}).Info("Archived old activity logs to S3")
	return nil
}
