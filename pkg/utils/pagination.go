package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PageParams carries cursor pagination parameters from a request.
type PageParams struct {
	Limit  int
	Cursor string
}

func GetPageParams(c echo.Context, defaultLimit int) PageParams {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if limit <= 0 || limit > 100 {
		limit = defaultLimit
	}

	return PageParams{
		Limit:  limit,
		Cursor: c.QueryParam("cursor"),
	}
}
