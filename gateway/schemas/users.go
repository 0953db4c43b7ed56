package schemas

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"api-gateway/gateway/domain"
)

var validate = validator.New()

type AuthUserRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email       string `json:"email" validate:"required"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"display_name" validate:"required"`
}

type VerifyUserTokenRequest struct {
	Email string `json:"email" validate:"required"`
	Token string `json:"token" validate:"required"`
}

type ResendUserTokenEmailRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func load(data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return domain.E(domain.KindValidation, "request body is not valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		return domain.E(domain.KindValidation, err.Error())
	}
	return nil
}

func LoadAuthUser(data []byte) (AuthUserRequest, error) {
	var r AuthUserRequest
	err := load(data, &r)
	return r, err
}

func LoadCreateUser(data []byte) (CreateUserRequest, error) {
	var r CreateUserRequest
	err := load(data, &r)
	return r, err
}

func LoadVerifyUserToken(data []byte) (VerifyUserTokenRequest, error) {
	var r VerifyUserTokenRequest
	err := load(data, &r)
	return r, err
}

func LoadResendUserTokenEmail(data []byte) (ResendUserTokenEmailRequest, error) {
	var r ResendUserTokenEmailRequest
	err := load(data, &r)
	return r, err
}
