package v1

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"confhub/internal/domain/notification"
)

// Admin routes and the links in notification e-mails share one path scheme.
func TestPathsMatchNotificationKinds(t *testing.T) {
	assert.Equal(t, PathRegistrations, notification.KindRegistration.RoutePath())
	assert.Equal(t, PathAbstracts, notification.KindAbstract.RoutePath())
	assert.Equal(t, PathSponsorships, notification.KindSponsorship.RoutePath())
	assert.Equal(t, PathExhibitors, notification.KindExhibitor.RoutePath())
	assert.Equal(t, PathPreconference, notification.KindPreconference.RoutePath())
}

func TestGinMode(t *testing.T) {
	assert.Equal(t, gin.DebugMode, ginMode(true))
	assert.Equal(t, gin.ReleaseMode, ginMode(false))
}
