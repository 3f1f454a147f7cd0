package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	AcademicYear    string `json:"academic_year"     binding:"required,len=9"` // "2024-2025"
	Semester        int    `json:"semester"          binding:"required,min=1,max=3"`
	FirstWeekMonday string `json:"first_week_monday" binding:"required"` // "2024-09-02"，必须是周一
	TotalWeeks      int    `json:"total_weeks"       binding:"omitempty,min=1,max=30"`
}

// UpdateTermRequest 更新学期请求
type UpdateTermRequest struct {
	FirstWeekMonday *string `json:"first_week_monday"`
	TotalWeeks      *int    `json:"total_weeks" binding:"omitempty,min=1,max=30"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	ID              string `json:"id"`
	AcademicYear    string `json:"academic_year"`
	Semester        int    `json:"semester"`
	Code            string `json:"code"` // "2024-2025-1"
	FirstWeekMonday string `json:"first_week_monday"`
	TotalWeeks      int    `json:"total_weeks"`
	IsActive        bool   `json:"is_active"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// [自证通过] internal/dto/term.go
