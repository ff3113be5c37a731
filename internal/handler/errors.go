package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/taskify_api/internal/utils"
)

type errorMapping struct {
	err    error
	status int
}

// Order matters only for readability; every sentinel is distinct.
var errorMappings = []errorMapping{
	{utils.ErrValidation, http.StatusBadRequest},
	{utils.ErrEmptyItems, http.StatusBadRequest},
	{utils.ErrNonPositiveTotal, http.StatusBadRequest},
	{utils.ErrRateOutOfRange, http.StatusBadRequest},
	{utils.ErrPriceMismatch, http.StatusUnprocessableEntity},
	{utils.ErrTotalsMismatch, http.StatusUnprocessableEntity},
	{utils.ErrInsufficientStock, http.StatusUnprocessableEntity},
	{utils.ErrOutOfStock, http.StatusUnprocessableEntity},
	{utils.ErrProductNotFound, http.StatusNotFound},
	{utils.ErrCustomerNotFound, http.StatusNotFound},
	{utils.ErrSaleNotFound, http.StatusNotFound},
	{utils.ErrDraftNotFound, http.StatusNotFound},
	{utils.ErrAlertNotFound, http.StatusNotFound},
	{utils.ErrItemNotFound, http.StatusNotFound},
	{utils.ErrUserNotFound, http.StatusNotFound},
	{utils.ErrEmailTaken, http.StatusConflict},
	{utils.ErrLastAdmin, http.StatusConflict},
	{utils.ErrForbidden, http.StatusForbidden},
}

// respondError writes the envelope for err. Unknown errors are logged and
// reported as INTERNAL_ERROR without leaking details.
func respondError(c *gin.Context, err error) {
	var verr *utils.ValidationError
	if errors.As(err, &verr) {
		utils.Error(c, http.StatusBadRequest, utils.ErrValidation.Error(), verr.Error())
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.Error(c, m.status, m.err.Error(), err.Error())
			return
		}
	}

	log.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.FullPath()).Msg("Request failed")
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

func badRequest(c *gin.Context, message string) {
	utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// pathInt parses a positive integer path parameter, writing a 400 on failure.
func pathInt(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return n, true
}
