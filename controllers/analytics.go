package controllers

import (
	"time"

	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/services"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsController struct {
	analytics *services.AnalyticsService
	trends    *services.TrendService
}

// NewAnalyticsController creates a new controller instance
func NewAnalyticsController() *AnalyticsController {
	return &AnalyticsController{
		analytics: services.NewAnalyticsService(),
		trends:    services.NewTrendService(),
	}
}

// GetSubjectAnalytics returns the compliance report for one subject
func (anc *AnalyticsController) GetSubjectAnalytics(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := userSubject(database.DB, user.ID, id); err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	report, err := anc.analytics.AnalyzeSubject(id, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to compute analytics")
	}

	return c.JSON(fiber.Map{"analytics": report})
}

// GetSemesterAnalytics returns the semester-wide rollup
func (anc *AnalyticsController) GetSemesterAnalytics(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	report, err := anc.analytics.AnalyzeSemester(semesterID, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to compute analytics")
	}

	return c.JSON(fiber.Map{"analytics": report})
}

// GetSubjectTrends returns weekly and monthly trend buckets for a subject
func (anc *AnalyticsController) GetSubjectTrends(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := userSubject(database.DB, user.ID, id); err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	now := time.Now()
	weekly, err := anc.trends.WeeklyTrend(id, services.DefaultTrendWeeks, now)
	if err != nil {
		return serviceError(c, err, "Failed to compute trends")
	}
	monthly, err := anc.trends.MonthlyTrend(id, services.DefaultTrendMonths, now)
	if err != nil {
		return serviceError(c, err, "Failed to compute trends")
	}

	return c.JSON(fiber.Map{
		"weekly":  weekly,
		"monthly": monthly,
	})
}

// GetAlerts returns compliance alerts for a semester, worst first
func (anc *AnalyticsController) GetAlerts(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	alerts, err := anc.trends.AlertsForSemester(semesterID, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to compute alerts")
	}

	return c.JSON(fiber.Map{"alerts": alerts})
}

// GetSubjectHistory lists a subject's attendance records, newest first
func (anc *AnalyticsController) GetSubjectHistory(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := userSubject(database.DB, user.ID, id); err != nil {
		return serviceError(c, err, "Failed to fetch subject")
	}

	var from, to *time.Time
	if fromStr := c.Query("from"); fromStr != "" {
		d, err := utils.ParseDate(fromStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid from, expected YYYY-MM-DD"})
		}
		from = &d
	}
	if toStr := c.Query("to"); toStr != "" {
		d, err := utils.ParseDate(toStr)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid to, expected YYYY-MM-DD"})
		}
		to = &d
	}

	records, err := anc.analytics.History(id, from, to)
	if err != nil {
		return serviceError(c, err, "Failed to fetch history")
	}

	return c.JSON(fiber.Map{"records": records})
}

// GetDashboard returns the composed dashboard for a semester
func (anc *AnalyticsController) GetDashboard(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	semesterID, err := parseIDParam(c, "semesterId")
	if err != nil {
		return err
	}
	if err := userOwnsSemester(database.DB, user.ID, semesterID); err != nil {
		return serviceError(c, err, "Failed to fetch semester")
	}

	overview, err := anc.trends.Overview(semesterID, time.Now())
	if err != nil {
		return serviceError(c, err, "Failed to compute dashboard")
	}

	return c.JSON(fiber.Map{"dashboard": overview})
}
