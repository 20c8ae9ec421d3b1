package recorder_routers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	recorderPlaybackApi "github.com/rapidaai/voicenote/api/recorder-api/api/playback"
	recorderSessionApi "github.com/rapidaai/voicenote/api/recorder-api/api/session"
	internal_recordings "github.com/rapidaai/voicenote/api/recorder-api/internal/recordings"
	internal_session "github.com/rapidaai/voicenote/api/recorder-api/internal/session"
	"github.com/rapidaai/voicenote/config"
	"github.com/rapidaai/voicenote/pkg/commons"
)

// NewEngine builds the gin engine with recovery and permissive CORS for the
// local recorder UI.
func NewEngine(cfg *config.AppConfig, logger commons.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))
	return engine
}

func SessionApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	orchestrator *internal_session.Orchestrator,
	store internal_recordings.Store,
) {
	apiv1 := engine.Group("v1/session")
	sessionApi := recorderSessionApi.NewSessionApi(cfg, logger, orchestrator, store)
	{
		apiv1.GET("", sessionApi.Get)
		apiv1.POST("/start", sessionApi.Start)
		apiv1.POST("/pause", sessionApi.Pause)
		apiv1.POST("/resume", sessionApi.Resume)
		apiv1.POST("/stop", sessionApi.Stop)
		apiv1.POST("/cancel", sessionApi.Cancel)
	}
}

func PlaybackApiRoute(
	cfg *config.AppConfig,
	engine *gin.Engine,
	logger commons.Logger,
	store internal_recordings.Store,
) {
	apiv1 := engine.Group("v1/recordings")
	playbackApi := recorderPlaybackApi.NewPlaybackApi(cfg, logger, store)
	{
		apiv1.GET("", playbackApi.List)
		apiv1.GET("/:id", playbackApi.Get)
		apiv1.PATCH("/:id", playbackApi.Rename)
		apiv1.DELETE("/:id", playbackApi.Delete)
		apiv1.GET("/:id/at", playbackApi.At)
	}
}
