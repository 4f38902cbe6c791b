package models

import (
	"database/sql/driver"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	s, ok := value.([]byte)
	if !ok {
		return nil
	}
	*j = append((*j)[0:0], s...)
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if j == nil {
		return nil
	}
	*j = append((*j)[0:0], data...)
	return nil
}

func (j JSON) IsNull() bool {
	return len(j) == 0 || string(j) == "null"
}

// Attendance status values
const (
	AttendanceStatusPresent   = "present"
	AttendanceStatusAbsent    = "absent"
	AttendanceStatusCancelled = "cancelled"
)

// Attendance type values
const (
	AttendanceTypeRoutine = "routine"
	AttendanceTypeAdhoc   = "adhoc"
)

// Semester status values
const (
	SemesterStatusActive    = "active"
	SemesterStatusCompleted = "completed"
	SemesterStatusUpcoming  = "upcoming"
)

// User model
type User struct {
	BaseModel
	Username             string     `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Password             string     `json:"-" gorm:"size:255;not null"`
	Email                string     `json:"email" gorm:"size:255;uniqueIndex"`
	Role                 string     `json:"role" gorm:"size:50;not null;default:'student';type:enum('owner','admin','student')"` // owner, admin, student
	Status               string     `json:"status" gorm:"size:50;not null;default:'active';type:enum('active','inactive','suspended')"`
	PasswordResetToken   string     `json:"-" gorm:"size:255"`
	PasswordResetExpires *time.Time `json:"-"`

	// Relationships
	Semesters []Semester `json:"semesters,omitempty" gorm:"foreignKey:UserID"`
}

// Semester model. At most one semester per user may be flagged current;
// the write path clears sibling flags inside the same transaction.
type Semester struct {
	BaseModel
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	StartDate time.Time `json:"start_date" gorm:"type:date;not null"`
	EndDate   time.Time `json:"end_date" gorm:"type:date;not null"`
	Status    string    `json:"status" gorm:"size:20;not null;default:'active';type:enum('active','completed','upcoming')"` // active, completed, upcoming
	IsCurrent bool      `json:"is_current" gorm:"default:false"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Subjects []Subject `json:"subjects,omitempty" gorm:"foreignKey:SemesterID"`
	Routine  *Routine  `json:"routine,omitempty" gorm:"foreignKey:SemesterID"`
}

// Subject model. Credit is informational only and never feeds the
// attendance arithmetic.
type Subject struct {
	BaseModel
	SemesterID              uint    `json:"semester_id" gorm:"not null;index"`
	Name                    string  `json:"name" gorm:"size:100;not null"`
	Code                    string  `json:"code" gorm:"size:20"`
	Credit                  float64 `json:"credit" gorm:"type:decimal(3,1);default:3"`
	MinAttendancePercentage float64 `json:"min_attendance_percentage" gorm:"type:decimal(5,2);default:75"`
	Color                   string  `json:"color" gorm:"size:7;default:'#3B82F6'"`

	// Relationships
	Semester       Semester       `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`
	RoutineEntries []RoutineEntry `json:"routine_entries,omitempty" gorm:"foreignKey:SubjectID"`
}

// Routine model - the weekly timetable for a semester. Each semester has
// exactly one routine.
type Routine struct {
	BaseModel
	SemesterID uint   `json:"semester_id" gorm:"not null;uniqueIndex"`
	Name       string `json:"name" gorm:"size:100;default:'Weekly Routine'"`
	IsActive   bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Semester Semester       `json:"semester,omitempty" gorm:"foreignKey:SemesterID"`
	Entries  []RoutineEntry `json:"entries,omitempty" gorm:"foreignKey:RoutineID"`
}

// RoutineEntry model - a recurring weekly class slot, not a dated event.
// DayOfWeek runs Monday=0 .. Sunday=6. Times are stored as "HH:MM".
type RoutineEntry struct {
	BaseModel
	RoutineID uint   `json:"routine_id" gorm:"not null;index"`
	SubjectID uint   `json:"subject_id" gorm:"not null;index"`
	DayOfWeek int    `json:"day_of_week" gorm:"not null"`
	StartTime string `json:"start_time" gorm:"size:5;not null"`
	EndTime   string `json:"end_time" gorm:"size:5;not null"`
	Room      string `json:"room" gorm:"size:50"`
	Notes     string `json:"notes" gorm:"type:text"`

	// Relationships
	Routine Routine `json:"routine,omitempty" gorm:"foreignKey:RoutineID"`
	Subject Subject `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
}

// AttendanceRecord model - one class session on a concrete date, either
// generated from the routine or added ad-hoc. The composite unique index
// on (subject_id, date, start_time) is the identity anchor: concurrent
// generation relies on insert-if-absent against it instead of
// application-level locking.
type AttendanceRecord struct {
	BaseModel
	SubjectID      uint      `json:"subject_id" gorm:"not null;uniqueIndex:uniq_attendance_identity"`
	RoutineEntryID *uint     `json:"routine_entry_id" gorm:"default:null"`
	Date           time.Time `json:"date" gorm:"type:date;not null;uniqueIndex:uniq_attendance_identity"`
	StartTime      string    `json:"start_time" gorm:"size:5;not null;uniqueIndex:uniq_attendance_identity"`
	EndTime        string    `json:"end_time" gorm:"size:5"`
	Status         string    `json:"status" gorm:"size:20;not null;default:'absent';type:enum('present','absent','cancelled')"` // present, absent, cancelled
	AttendanceType string    `json:"attendance_type" gorm:"size:20;not null;default:'routine';type:enum('routine','adhoc')"`    // routine, adhoc
	Notes          string    `json:"notes" gorm:"type:text"`
	IsHoliday      bool      `json:"is_holiday" gorm:"default:false"`

	// Relationships
	Subject      Subject       `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	RoutineEntry *RoutineEntry `json:"routine_entry,omitempty" gorm:"foreignKey:RoutineEntryID"`
}

// AffectsPercentage reports whether this record counts toward the
// attendance denominator. Cancelled and holiday records count in neither
// direction.
func (r *AttendanceRecord) AffectsPercentage() bool {
	return r.Status != AttendanceStatusCancelled && !r.IsHoliday
}

// Log model for activity tracking
type ActivityLog struct {
	BaseModel
	UserID     uint   `json:"user_id"`
	Action     string `json:"action" gorm:"size:100;not null"`
	Resource   string `json:"resource" gorm:"size:100;not null"`
	ResourceID uint   `json:"resource_id"`
	Details    JSON   `json:"details" gorm:"type:json"`
	IPAddress  string `json:"ip_address" gorm:"size:45"`
	UserAgent  string `json:"user_agent" gorm:"size:500"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// ExportArchive model for tracking attendance exports uploaded to S3
type ExportArchive struct {
	BaseModel
	SemesterID  uint   `json:"semester_id" gorm:"not null;index"`
	FileName    string `json:"file_name" gorm:"size:255;not null"`
	S3Key       string `json:"s3_key" gorm:"size:500;not null"`
	RecordCount int    `json:"record_count" gorm:"not null"`
	FileSize    int64  `json:"file_size" gorm:"not null"`
	Status      string `json:"status" gorm:"size:50;not null;default:'pending';type:enum('pending','completed','failed')"` // pending, completed, failed
	Error       string `json:"error" gorm:"type:text"`
}
