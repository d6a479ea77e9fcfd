package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/CUknot/roomchat/config"
	"github.com/CUknot/roomchat/controllers"
	"github.com/CUknot/roomchat/database"
	"github.com/CUknot/roomchat/docs"
	"github.com/CUknot/roomchat/logging"
	"github.com/CUknot/roomchat/middleware"
	"github.com/CUknot/roomchat/services"
	"github.com/CUknot/roomchat/utils"
	"github.com/CUknot/roomchat/websocket"
)

// @title           Room Chat API
// @version         1.0
// @description     Room-scoped chat with live event fan-out
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer func() {
		log.Info().Msg("closing database")
		_ = database.Close(db)
	}()
	if err := database.Migrate(db); err != nil {
		return err
	}

	users := database.NewUserStore(db)
	rooms := database.NewRoomStore(db)
	messages := database.NewMessageStore(db)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	var events controllers.Broadcaster = hub
	if cfg.RedisURL != "" {
		client, err := websocket.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		relay := websocket.NewRedisRelay(client, cfg.RedisChannel, hub, log)
		go func() {
			if err := relay.Run(ctx); err != nil {
				log.Error().Err(err).Msg("relay stopped")
				stop()
			}
		}()
		events = relay
	}

	authService := services.NewAuthService(users, tokens, log)
	roomService := services.NewRoomService(rooms, users, log)
	messageService := services.NewMessageService(messages, users, rooms, log,
		services.WithDeleteAudience(cfg.DeleteAudience()))

	gin.SetMode(cfg.GinMode)
	router := newRouter(ctx, routerDeps{
		log:      log,
		db:       db,
		tokens:   tokens,
		hub:      hub,
		rooms:    rooms,
		auth:     controllers.NewAuthController(authService),
		messages: controllers.NewMessageController(messageService, events, log),
		roomCtl:  controllers.NewRoomController(roomService, events, log),
	})

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Bool("redis", cfg.RedisURL != "").Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

type routerDeps struct {
	log      zerolog.Logger
	db       *gorm.DB
	tokens   *utils.TokenManager
	hub      *websocket.Hub
	rooms    websocket.MembershipChecker
	auth     *controllers.AuthController
	messages *controllers.MessageController
	roomCtl  *controllers.RoomController
}

func newRouter(ctx context.Context, d routerDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(d.log), middleware.Metrics(), middleware.CORS())

	router.GET("/health", controllers.Health(func(ctx context.Context) error {
		return database.Ping(ctx, d.db)
	}))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	router.POST("/api/auth/login", d.auth.Login)
	router.POST("/api/user/create", d.auth.CreateUser)
	router.GET("/api/user/:id", d.auth.GetUser)

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.JWTAuth(d.tokens))
	{
		chat := api.Group("/chat")
		chat.POST("/send", d.messages.SendMessage)
		chat.PUT("/edit/:id", d.messages.EditMessage)
		chat.DELETE("/delete/:id", d.messages.DeleteMessage)
		chat.POST("/reply/:id", d.messages.ReplyToMessage)
		chat.GET("/rooms/:roomId/messages", d.messages.GetRoomMessages)

		rooms := api.Group("/rooms")
		rooms.POST("/create", d.roomCtl.CreateRoom)
		rooms.POST("/:roomId/members", d.roomCtl.AddMember)
		rooms.DELETE("/:roomId/members/:userId", d.roomCtl.RemoveMember)
		rooms.GET("/:roomId/members", d.roomCtl.GetRoomMembers)
	}

	// WebSocket route
	router.GET("/ws", websocket.NewHandler(ctx, d.hub, d.tokens, d.rooms).HandleConnection)

	return router
}
