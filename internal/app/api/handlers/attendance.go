package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/attendance"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/response"
)

type attendanceRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

func writeAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, attendance.ErrAlreadyCheckedIn), errors.Is(err, attendance.ErrNotCheckedIn):
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
	default:
		c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      Check in
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body handlers.attendanceRequest true "Member"
// @Success      200  {object}  response.APIResponse[models.AttendanceLog]
// @Router       /api/v1/attendance/check_in [post]
func ApiCheckIn(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req attendanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		log, err := svc.CheckIn(c.Request.Context(), req.MemberID)
		if err != nil {
			writeAttendanceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(log))
	}
}

// @Summary      Check out
// @Tags         Attendance
// @Accept       json
// @Produce      json
// @Param        request body handlers.attendanceRequest true "Member"
// @Success      200  {object}  response.APIResponse[models.AttendanceLog]
// @Router       /api/v1/attendance/check_out [post]
func ApiCheckOut(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req attendanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		log, err := svc.CheckOut(c.Request.Context(), req.MemberID)
		if err != nil {
			writeAttendanceError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(log))
	}
}

// @Summary      List attendance
// @Tags         Attendance
// @Produce      json
// @Param        day query string false "Calendar day (YYYY-MM-DD), empty for all"
// @Success      200  {object}  response.APIResponse[[]models.AttendanceLog]
// @Router       /api/v1/attendance [get]
func ApiListAttendance(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logs, err := svc.ListByDay(c.Request.Context(), c.Query("day"))
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(logs))
	}
}

// @Summary      Attendance days
// @Tags         Attendance
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]string]
// @Router       /api/v1/attendance/days [get]
func ApiAttendanceDays(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, err := svc.Days(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(days))
	}
}

// @Summary      Delete attendance log
// @Tags         Attendance
// @Produce      json
// @Param        id path string true "Log ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/attendance/{id} [delete]
func ApiDeleteAttendance(svc *attendance.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT("deleted"))
	}
}

func RegisterAttendanceRoutes(r gin.IRouter, svc *attendance.Service) {
	r.GET("/attendance", ApiListAttendance(svc))
	r.GET("/attendance/days", ApiAttendanceDays(svc))
	r.POST("/attendance/check_in", ApiCheckIn(svc))
	r.POST("/attendance/check_out", ApiCheckOut(svc))
	r.DELETE("/attendance/:id", ApiDeleteAttendance(svc))
}
