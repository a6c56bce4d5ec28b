package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flexfit/gymdesk/internal/app/service/backup"
	"github.com/flexfit/gymdesk/pkg/response"
)

// @Summary      Create backup
// @Description  Writes a timestamped JSON snapshot of every collection.
// @Tags         Backups
// @Produce      json
// @Success      200  {object}  response.APIResponse[backup.Info]
// @Router       /api/v1/backups [post]
func ApiCreateBackup(svc *backup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := svc.Create(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      List backups
// @Tags         Backups
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]backup.Info]
// @Router       /api/v1/backups [get]
func ApiListBackups(svc *backup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		backups, err := svc.List()
		if err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(backups))
	}
}

// @Summary      Delete backup
// @Tags         Backups
// @Produce      json
// @Param        name path string true "Backup name"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/backups/{name} [delete]
func ApiDeleteBackup(svc *backup.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Delete(c.Param("name")); err != nil {
			c.JSON(http.StatusOK, response.Msg(response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT("deleted"))
	}
}

func RegisterBackupRoutes(r gin.IRouter, svc *backup.Service) {
	r.GET("/backups", ApiListBackups(svc))
	r.POST("/backups", ApiCreateBackup(svc))
	r.DELETE("/backups/:name", ApiDeleteBackup(svc))
}
