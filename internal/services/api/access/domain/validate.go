package domain

import (
	"sync"

	"enrollgate/internal/core/gate"
	"enrollgate/internal/platform/net/http/bind"
)

var registerOnce sync.Once

// RegisterValidators adds the content_kind tag to the shared validator
func RegisterValidators() {
	registerOnce.Do(func() {
		if err := bind.Register("content_kind", "{0} must be one of course, qbank", func(fl bind.FieldLevel) bool {
			return gate.ContentKind(fl.Field().String()).Valid()
		}); err != nil {
			panic(err)
		}
	})
}
