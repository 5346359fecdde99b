package dto

type AddWatchedSenderRequest struct {
	SenderEmail string `json:"sender_email" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
}

type StatusResponse struct {
	Connected bool `json:"connected"`
}

type UnseenCountResponse struct {
	Count int64 `json:"count"`
}
