package models

type SubmitVoteRequest struct {
	SelectedOptions []string `json:"selectedOptions" binding:"required"`
}
