package schemas

type CreateCheckoutSessionRequest struct {
	Plan       string `json:"plan" validate:"required"`
	SuccessURL string `json:"success_url" validate:"required"`
	CancelURL  string `json:"cancel_url" validate:"required"`
	ProjectID  int64  `json:"project_id" validate:"required"`
}

func LoadCreateCheckoutSession(data []byte) (CreateCheckoutSessionRequest, error) {
	var r CreateCheckoutSessionRequest
	err := load(data, &r)
	return r, err
}
