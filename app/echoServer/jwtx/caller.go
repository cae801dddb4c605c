// app/echoServer/jwtx/caller.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/model"
)

// Context keys populated by the auth middleware.
const (
	KeyUserID   = "user_id"
	KeyRole     = "role"
	KeyUserName = "user_name"
)

// CallerFromContext reads the identity the auth middleware stored.
func CallerFromContext(c echo.Context) (model.Caller, error) {
	id, ok := c.Get(KeyUserID).(int64)
	if !ok || id <= 0 {
		return model.Caller{}, errors.New("no caller in context")
	}
	role, _ := c.Get(KeyRole).(string)
	name, _ := c.Get(KeyUserName).(string)
	return model.Caller{ID: id, Role: model.Role(role), Name: name}, nil
}
