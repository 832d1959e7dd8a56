package service

import (
	"errors"

	"github.com/okian/leadsplit/internal/domain/model"
)

// clientKinds are failures caused by the request rather than the service.
var clientKinds = []error{
	model.ErrDecode,
	model.ErrUnsupportedExtension,
	model.ErrNoValidRows,
	model.ErrInsufficientAgents,
	model.ErrInvalidInput,
	model.ErrNotFound,
}

func isClientError(err error) bool {
	for _, kind := range clientKinds {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
