package service

import (
	"testing"

	"github.com/sefazor/eventreg-backend/internal/repository"
	"github.com/sefazor/eventreg-backend/internal/testutil"
	jwtPkg "github.com/sefazor/eventreg-backend/pkg/jwt"
	"github.com/sefazor/eventreg-backend/pkg/qrcode"
	"github.com/sefazor/eventreg-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type services struct {
	db            *gorm.DB
	auth          *AuthService
	events        *EventService
	registrations *RegistrationService
	announcements *AnnouncementService
	tokens        *jwtPkg.Manager
}

func newServices(t *testing.T) *services {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zap.NewNop()
	validator := utils.NewValidator()
	tokens := jwtPkg.NewManager("test-secret", 0, "eventreg-test")

	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)

	return &services{
		db:            db,
		auth:          NewAuthService(db, userRepo, tokens, validator, logger),
		events:        NewEventService(db, eventRepo, registrationRepo, announcementRepo, nil, validator, logger),
		registrations: NewRegistrationService(db, eventRepo, registrationRepo, qrcode.NewQRService("https://tickets.example.com", 128), nil, logger),
		announcements: NewAnnouncementService(db, eventRepo, announcementRepo, validator, logger),
		tokens:        tokens,
	}
}

func intPtr(v int) *int {
	return &v
}
