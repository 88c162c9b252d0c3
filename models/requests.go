package models

type UploadRequest struct {
	BankID     string `json:"bank_id" validate:"required,numeric"`
	UserID     string `json:"user_id" validate:"required,numeric"`
	Period     string `json:"period" validate:"required,period"`
	ReturnType string `json:"return_type" validate:"required,returntype"`
}

type ApproveRequest struct {
	ReviewerID *uint  `json:"reviewer_id"`
	Comments   string `json:"comments" validate:"max=2000"`
}

type RejectRequest struct {
	ReviewerID *uint  `json:"reviewer_id"`
	Comments   string `json:"comments" validate:"required,max=2000"`
}
