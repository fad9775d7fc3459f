package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quka-ai/moodjournal/app/core"
	v1 "github.com/quka-ai/moodjournal/app/logic/v1"
	"github.com/quka-ai/moodjournal/app/response"
	"github.com/quka-ai/moodjournal/cmd/service/handler"
	"github.com/quka-ai/moodjournal/cmd/service/middleware"
)

func serve(ctx context.Context, core *core.Core) error {
	httpSrv := &handler.HttpSrv{
		Core:   core,
		Engine: core.HttpEngine(),
	}
	if err := setupHttpRouter(httpSrv); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    core.Cfg().Addr,
		Handler: core.HttpEngine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("http server shutting down")
	return server.Shutdown(shutdownCtx)
}

func GetIPLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			return key + ":" + c.ClientIP()
		}, opts...)
	}
}

func GetUserLimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, key, func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return key + ":" + token.User
		}, opts...)
	}
}

// GetAILimitBuilder 所有 AI 调用共享每个用户的配额
func GetAILimitBuilder(appCore *core.Core) middleware.LimiterFunc {
	return func(key string, opts ...core.LimitOption) gin.HandlerFunc {
		return middleware.UseLimit(appCore, "ai", func(c *gin.Context) string {
			token, _ := v1.InjectTokenClaim(c)
			return "ai:" + token.User
		}, opts...)
	}
}

func setupHttpRouter(s *handler.HttpSrv) error {
	if err := handler.RegisterValidators(); err != nil {
		return err
	}

	ipLimit := GetIPLimitBuilder(s.Core)
	userLimit := GetUserLimitBuilder(s.Core)
	aiLimit := GetAILimitBuilder(s.Core)

	s.Engine.Use(gin.Recovery())
	s.Engine.GET("/metrics", s.Core.Metrics().ExportHandler())

	s.Engine.Use(middleware.I18n(), response.NewResponse())
	s.Engine.Use(middleware.Cors(s.Core.Cfg().Cors.AllowOrigins))
	s.Engine.Use(middleware.Metrics(s.Core.Metrics()))
	s.Engine.Use(middleware.SetAppid(s.Core), middleware.AcceptLanguage())
	apiV1 := s.Engine.Group("/api/v1")
	{
		apiV1.GET("/mode", func(c *gin.Context) {
			response.APISuccess(c, s.Core.Plugins.Name())
		})
		apiV1.GET("/ai/status", s.GetAIStatus)

		apiV1.POST("/user/register", ipLimit("register", core.WithLimit(10)), s.Register)
		apiV1.POST("/user/login", ipLimit("login", core.WithLimit(20)), s.Login)

		authed := apiV1.Group("")
		authed.Use(middleware.Authorization(s.Core))

		user := authed.Group("/user")
		{
			user.GET("/info", s.GetUser)
			user.PUT("/profile", userLimit("profile"), s.UpdateUserProfile)
			user.POST("/avatar/upload-key", userLimit("upload"), s.GenAvatarUploadKey)
			user.POST("/avatar", userLimit("upload"), s.UploadAvatar)
			user.POST("/logout", s.Logout)
		}

		journal := authed.Group("/journal")
		{
			journal.GET("/list", s.ListJournal)
			journal.GET("/emotions", s.ListJournalEmotions)
			journal.POST("", aiLimit("create_journal"), s.CreateJournal)
			journal.GET("/:id", s.GetJournal)
			journal.PUT("/:id", aiLimit("update_journal"), s.UpdateJournal)
			journal.DELETE("/:id", s.DeleteJournal)
			journal.POST("/:id/edit", s.BeginEditJournal)
			journal.DELETE("/:id/edit", s.CancelEditJournal)
			journal.GET("/:id/summary", aiLimit("summary"), s.GetJournalSummary)
			journal.POST("/:id/image", aiLimit("image"), s.AttachJournalImage)
		}

		recording := authed.Group("/recording")
		{
			recording.GET("", s.RecordingStatus)
			recording.POST("", userLimit("recording"), s.StartRecording)
			recording.PUT("", s.AppendRecording)
			recording.DELETE("", aiLimit("transcribe"), s.StopRecording)
		}

		aiGroup := authed.Group("/ai")
		{
			aiGroup.Use(aiLimit("ai"))
			aiGroup.POST("/emotion", s.ClassifyEmotion)
			aiGroup.POST("/summary", s.Summarize)
			aiGroup.POST("/describe", s.DescribeImage)
			aiGroup.POST("/transcribe", s.Transcribe)
		}
	}
	return nil
}
