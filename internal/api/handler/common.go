package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jmartens/shopvault/internal/api/dto"
	"github.com/jmartens/shopvault/internal/api/middleware"
	"github.com/jmartens/shopvault/internal/api/util"
	"github.com/jmartens/shopvault/internal/core/service"
)

// respondError maps a service error to its HTTP status; everything else
// becomes a 500.
func respondError(c *gin.Context, err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		c.JSON(svcErr.Code, dto.ErrorResponse{
			Error:   http.StatusText(svcErr.Code),
			Message: svcErr.Message,
			Code:    svcErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
		Error:   "Internal Server Error",
		Message: err.Error(),
		Code:    http.StatusInternalServerError,
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "Bad Request",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func respondNotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, dto.ErrorResponse{
		Error:   "Not Found",
		Message: message,
		Code:    http.StatusNotFound,
	})
}

// parseListFilter reads page/per_page plus the query and order parameters,
// validating field names against the handler's allow-lists.
func parseListFilter(c *gin.Context, queryFields, orderFields []string) (util.ListFilter, bool) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "25"))

	filter := util.ListFilter{Page: page, PerPage: perPage}

	if queryStr := c.Query("query"); queryStr != "" {
		filters, err := util.ParseQueryString(queryStr)
		if err != nil {
			respondBadRequest(c, err.Error())
			return filter, false
		}
		if err := util.ValidateFilterFields(filters, queryFields); err != nil {
			respondBadRequest(c, err.Error())
			return filter, false
		}
		filter.Filters = filters
	}

	if orderStr := c.Query("order"); orderStr != "" {
		orders, err := util.ParseOrderString(orderStr)
		if err != nil {
			respondBadRequest(c, err.Error())
			return filter, false
		}
		if err := util.ValidateOrderFields(orders, orderFields); err != nil {
			respondBadRequest(c, err.Error())
			return filter, false
		}
		filter.Order = orders
	}

	return filter, true
}

func paginationInfo(total, page, perPage int) dto.PaginationInfo {
	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return dto.PaginationInfo{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}

// currentUsername extracts the authenticated subject for record attribution.
func currentUsername(c *gin.Context) *string {
	claims, ok := middleware.GetAuthClaims(c)
	if !ok || claims.Subject == "" {
		return nil
	}
	return &claims.Subject
}

func statusLink(commandID string) *string {
	link := fmt.Sprintf("/status/%s", commandID)
	return &link
}
