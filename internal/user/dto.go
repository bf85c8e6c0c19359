// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

type AccountResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type AccountListResponse struct {
	Users []AccountResponse `json:"users"`
	Total int               `json:"total"`
}

func ToAccountResponse(a *Account) AccountResponse {
	return AccountResponse{
		Username:  a.Username,
		CreatedAt: a.CreatedAt,
	}
}

func ToAccountResponseList(accounts []Account) []AccountResponse {
	responses := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		responses = append(responses, ToAccountResponse(&a))
	}
	return responses
}
