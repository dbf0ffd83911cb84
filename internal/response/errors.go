package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotOpen      ErrCode = "EXAM_NOT_OPEN"
	ErrExamClosed       ErrCode = "EXAM_CLOSED"
	ErrExamEmpty        ErrCode = "EXAM_EMPTY"
	ErrAlreadyAttempted ErrCode = "ALREADY_ATTEMPTED"
	ErrAttemptNotFound  ErrCode = "ATTEMPT_NOT_FOUND"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrExamNotDraft     ErrCode = "EXAM_NOT_DRAFT"
	ErrNotExamAuthor    ErrCode = "NOT_EXAM_AUTHOR"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Mã số hoặc mật khẩu không đúng."
	case ErrSessionActive:
		return "Tài khoản đang đăng nhập trên thiết bị khác."
	case ErrSessionInvalidated:
		return "Phiên đăng nhập đã kết thúc. Vui lòng đăng nhập lại."
	case ErrTokenRequired:
		return "Yêu cầu token xác thực."
	case ErrTokenInvalid:
		return "Token xác thực không hợp lệ."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bạn không có quyền truy cập tài nguyên này."
	case ErrStudentAccessOnly:
		return "Tài nguyên này chỉ dành cho học sinh."
	case ErrTeacherAccessOnly:
		return "Tài nguyên này chỉ dành cho giáo viên."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Dữ liệu không hợp lệ. Vui lòng kiểm tra lại."
	case ErrInvalidID:
		return "Định dạng ID không hợp lệ."
	case ErrInvalidPayload:
		return "Nội dung yêu cầu không hợp lệ."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Không tìm thấy tài nguyên."
	case ErrConflict:
		return "Tài nguyên đã tồn tại."
	case ErrDependencyExists:
		return "Không thể xóa vì dữ liệu đang được sử dụng."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotOpen:
		return "Đề thi chưa mở. Vui lòng quay lại sau."
	case ErrExamClosed:
		return "Đề thi đã đóng."
	case ErrExamEmpty:
		return "Đề thi chưa có câu hỏi."
	case ErrAlreadyAttempted:
		return "Bạn đã làm bài thi này rồi. Mỗi học sinh chỉ được làm một lần."
	case ErrAttemptNotFound:
		return "Bạn chưa có bài làm cho đề thi này."
	case ErrExamNotPublished:
		return "Đề thi chưa được xuất bản."
	case ErrExamNotDraft:
		return "Đề thi không ở trạng thái nháp."
	case ErrNotExamAuthor:
		return "Bạn không phải người tạo đề thi này."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Quá nhiều yêu cầu. Vui lòng thử lại sau."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Đã xảy ra lỗi máy chủ."
	default:
		return "Đã xảy ra lỗi không xác định."
	}
}
