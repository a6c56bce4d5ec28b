package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/flexfit/gymdesk/internal/app/api/server"
	"github.com/flexfit/gymdesk/internal/app/service/analytics"
	"github.com/flexfit/gymdesk/internal/app/service/attendance"
	"github.com/flexfit/gymdesk/internal/app/service/auth"
	"github.com/flexfit/gymdesk/internal/app/service/backup"
	"github.com/flexfit/gymdesk/internal/app/service/billing"
	"github.com/flexfit/gymdesk/internal/app/service/enrollment"
	"github.com/flexfit/gymdesk/internal/app/service/lifecycle"
	"github.com/flexfit/gymdesk/internal/app/service/scheduler"
	"github.com/flexfit/gymdesk/internal/app/service/visitor"
	"github.com/flexfit/gymdesk/internal/platform/db"
	"github.com/flexfit/gymdesk/internal/store"
	"github.com/flexfit/gymdesk/pkg/config"
	"github.com/flexfit/gymdesk/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	store.Module,
	server.Module,
	auth.Module,
	lifecycle.Module,
	enrollment.Module,
	billing.Module,
	attendance.Module,
	visitor.Module,
	analytics.Module,
	backup.Module,
	scheduler.Module,
)
