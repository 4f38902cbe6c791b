package seeders

import (
	"log"
	"time"

	"attendtrack_go/database"
	"attendtrack_go/models"
	"attendtrack_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedSemesters()
	SeedSubjects()
	SeedRoutines()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the users table
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	adminPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Error hashing admin password: %v", err)
		return
	}
	studentPassword, err := utils.HashPassword("student123")
	if err != nil {
		log.Printf("Error hashing student password: %v", err)
		return
	}

	users := []models.User{
		{
			BaseModel: models.BaseModel{ID: 1},
			Username:  "admin",
			Password:  adminPassword,
			Email:     "admin@attendtrack.local",
			Role:      "owner",
			Status:    "active",
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			Username:  "student",
			Password:  studentPassword,
			Email:     "student@attendtrack.local",
			Role:      "student",
			Status:    "active",
		},
	}

	for _, user := range users {
		if err := database.DB.Create(&user).Error; err != nil {
			log.Printf("Error seeding user %s: %v", user.Username, err)
		}
	}

	log.Println("Users seeded successfully")
}

// SeedSemesters seeds a current semester for the demo student
func SeedSemesters() {
	var count int64
	database.DB.Model(&models.Semester{}).Count(&count)
	if count > 0 {
		log.Println("Semesters already seeded, skipping...")
		return
	}

	semester := models.Semester{
		BaseModel: models.BaseModel{ID: 1},
		UserID:    2,
		Name:      "Fall 2026",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
		Status:    models.SemesterStatusActive,
		IsCurrent: true,
	}

	if err := database.DB.Create(&semester).Error; err != nil {
		log.Printf("Error seeding semester %s: %v", semester.Name, err)
		return
	}

	log.Println("Semesters seeded successfully")
}

// SeedSubjects seeds subjects for the demo semester
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	subjects := []models.Subject{
		{
			BaseModel:               models.BaseModel{ID: 1},
			SemesterID:              1,
			Name:                    "Data Structures",
			Code:                    "CS201",
			Credit:                  4,
			MinAttendancePercentage: 75,
			Color:                   "#3B82F6",
		},
		{
			BaseModel:               models.BaseModel{ID: 2},
			SemesterID:              1,
			Name:                    "Linear Algebra",
			Code:                    "MA102",
			Credit:                  3,
			MinAttendancePercentage: 75,
			Color:                   "#10B981",
		},
		{
			BaseModel:               models.BaseModel{ID: 3},
			SemesterID:              1,
			Name:                    "Technical Writing",
			Code:                    "EN110",
			Credit:                  2,
			MinAttendancePercentage: 65,
			Color:                   "#F59E0B",
		},
	}

	for _, subject := range subjects {
		if err := database.DB.Create(&subject).Error; err != nil {
			log.Printf("Error seeding subject %s: %v", subject.Name, err)
		}
	}

	log.Println("Subjects seeded successfully")
}

// SeedRoutines seeds the weekly routine for the demo semester
func SeedRoutines() {
	var count int64
	database.DB.Model(&models.Routine{}).Count(&count)
	if count > 0 {
		log.Println("Routines already seeded, skipping...")
		return
	}

	routine := models.Routine{
		BaseModel:  models.BaseModel{ID: 1},
		SemesterID: 1,
		Name:       "Weekly Routine",
		IsActive:   true,
	}
	if err := database.DB.Create(&routine).Error; err != nil {
		log.Printf("Error seeding routine: %v", err)
		return
	}

	// DayOfWeek: Monday=0 .. Sunday=6
	entries := []models.RoutineEntry{
		{RoutineID: 1, SubjectID: 1, DayOfWeek: 0, StartTime: "09:00", EndTime: "10:30", Room: "A101"},
		{RoutineID: 1, SubjectID: 1, DayOfWeek: 2, StartTime: "09:00", EndTime: "10:30", Room: "A101"},
		{RoutineID: 1, SubjectID: 2, DayOfWeek: 1, StartTime: "11:00", EndTime: "12:30", Room: "B204"},
		{RoutineID: 1, SubjectID: 2, DayOfWeek: 3, StartTime: "11:00", EndTime: "12:30", Room: "B204"},
		{RoutineID: 1, SubjectID: 3, DayOfWeek: 4, StartTime: "14:00", EndTime: "15:00", Room: "C310"},
	}

	for _, entry := range entries {
		if err := database.DB.Create(&entry).Error; err != nil {
			log.Printf("Error seeding routine entry: %v", err)
		}
	}

	log.Println("Routines seeded successfully")
}
