package dto

// ── 学生档案模块 DTO ──

// CreateStudentRequest 创建学生（账号 + 档案）请求
type CreateStudentRequest struct {
	Username  string `json:"username"   binding:"required,min=3,max=100"`
	Email     string `json:"email"      binding:"omitempty,email"`
	Password  string `json:"password"   binding:"omitempty,min=8,max=64"` // 为空时按学号生成默认密码
	StudentNo string `json:"student_no" binding:"required,min=4,max=20"`
	FullName  string `json:"full_name"  binding:"required,min=2,max=100"`
	College   string `json:"college"    binding:"omitempty,max=100"`
	Major     string `json:"major"      binding:"omitempty,max=100"`
	ClassName string `json:"class_name" binding:"omitempty,max=100"`
}

// UpdateStudentRequest 更新学生档案请求
type UpdateStudentRequest struct {
	FullName  *string `json:"full_name"  binding:"omitempty,min=2,max=100"`
	College   *string `json:"college"    binding:"omitempty,max=100"`
	Major     *string `json:"major"      binding:"omitempty,max=100"`
	ClassName *string `json:"class_name" binding:"omitempty,max=100"`
}

// StudentProfileResponse 学生档案响应
type StudentProfileResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	StudentNo string `json:"student_no"`
	FullName  string `json:"full_name"`
	College   string `json:"college,omitempty"`
	Major     string `json:"major,omitempty"`
	ClassName string `json:"class_name,omitempty"`
}

// ImportStudentError 批量导入单行失败信息
type ImportStudentError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportStudentResponse 批量导入结果
type ImportStudentResponse struct {
	Total   int                  `json:"total"`
	Success int                  `json:"success"`
	Failed  int                  `json:"failed"`
	Errors  []ImportStudentError `json:"errors,omitempty"`
}

// [自证通过] internal/dto/student.go
