package api

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type CodedErrorResponse struct {
	Error  string `json:"error" example:"payment failed"`
	Code   string `json:"code" example:"CARD_DECLINED"`
	Detail string `json:"detail,omitempty" example:"Your card was declined"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type CountResponse struct {
	Count int `json:"count" example:"3"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
