package dto

type StudyContextResponse struct {
	CourseId    string  `json:"course_id"`
	StudentId   int64   `json:"student_id"`
	SessionId   *string `json:"session_id"`
	Mode        *string `json:"mode"`
	SessionName *string `json:"session_name"`
	ExamDate    *string `json:"exam_date"`
}

type UpdateStudyContextRequest struct {
	CourseId *string `json:"course_id" validate:"omitempty,min=1"`
	Mode     *string `json:"mode" validate:"omitempty,oneof=quick comprehensive"`
}

// StartSessionRequest begins a new study session. An empty SessionId gets a
// generated one.
type StartSessionRequest struct {
	SessionId   string `json:"session_id"`
	Mode        string `json:"mode" validate:"required,oneof=quick comprehensive"`
	SessionName string `json:"session_name"`
	ExamDate    string `json:"exam_date" validate:"omitempty,datetime=2006-01-02"`
}

type ResumeSessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=quick comprehensive"`
}
