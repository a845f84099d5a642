package user

import (
	"github.com/trezcool/darasa/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a Service whose emails are sent synchronously
// through the provided (mock) mail service.
func NewServiceMock(repo Repository, mailSvc core.EmailService) Service {
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
		},
	}
}
