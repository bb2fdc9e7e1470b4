package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openfleet/fleetgate/internal/apiserver/database"
	"github.com/openfleet/fleetgate/internal/apiserver/handler"
	"github.com/openfleet/fleetgate/internal/apiserver/middleware"
	"github.com/openfleet/fleetgate/internal/auth"
	"github.com/openfleet/fleetgate/internal/auth/jwt"
	"github.com/openfleet/fleetgate/internal/auth/session"
	"github.com/openfleet/fleetgate/internal/blob"
	"github.com/openfleet/fleetgate/internal/common/config"
	"github.com/openfleet/fleetgate/internal/tenant"
	"github.com/openfleet/fleetgate/internal/vault"
	"github.com/openfleet/fleetgate/pkg/logger"
	"github.com/openfleet/fleetgate/pkg/metrics"
	"github.com/openfleet/fleetgate/pkg/version"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Fleet management API server",
		Long:  `Multi-tenant fleet management backend serving owner, manager and driver clients`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", "apiserver.yaml", "path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

func run() {
	cfg, cfgPath, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("Starting apiserver",
		zap.String("version", version.Get()),
		zap.String("config", cfgPath))

	db, err := database.NewDatabase(&cfg.Control)
	if err != nil {
		zlog.Fatal("Failed to initialize control database", zap.Error(err))
	}
	defer db.Close()

	cipher, err := vault.NewCipher(cfg.Cipher)
	if err != nil {
		zlog.Fatal("Failed to initialize cipher", zap.Error(err))
	}
	v := vault.New(db, cipher)
	connector := tenant.NewConnector(v, cfg.Tenant, zlog)

	sessions, err := session.NewStore(zlog, &cfg.Session)
	if err != nil {
		zlog.Fatal("Failed to initialize session store", zap.Error(err))
	}
	jwtSvc, err := jwt.NewService(jwt.Config{SecretKey: cfg.JWT.SecretKey, Duration: cfg.JWT.Duration})
	if err != nil {
		zlog.Fatal("Failed to initialize JWT service", zap.Error(err))
	}
	authn := auth.NewAuthenticator(db, connector, cipher, sessions, jwtSvc, cfg, zlog)

	blobs, err := blob.NewStore(cfg.Blob.Dir, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize blob store", zap.Error(err))
	}

	h := handler.NewHandler(db, connector, v, authn, blobs, cfg, zlog)
	m := metrics.New(cfg.Metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(m.Middleware())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(m.HTTPHandler()))

	r.POST("/api/auth/login", h.HandleLogin)
	r.POST("/api/auth/logout", h.HandleLogout)

	anyRole := middleware.SessionAuthMiddleware(authn)
	owner := middleware.SessionAuthMiddleware(authn, session.RoleTenantOwner, session.RoleSuperadmin)
	manage := middleware.SessionAuthMiddleware(authn,
		session.RoleTenantOwner, session.RoleFleetManager, session.RoleSuperadmin)
	superadmin := middleware.SessionAuthMiddleware(authn, session.RoleSuperadmin)
	driver := middleware.SessionAuthMiddleware(authn, session.RoleDriver)

	r.GET("/api/auth/whoami", anyRole, h.HandleWhoAmI)

	r.POST("/api/tenants", superadmin, h.HandleCreateTenant)
	r.GET("/api/tenants", superadmin, h.HandleListTenants)
	// First-tenant signup; no session can exist before the first tenant,
	// so this route is gated on the deployment secret instead.
	r.POST("/api/tenants/bootstrap", h.HandleBootstrapTenant)

	r.POST("/api/managers", owner, h.HandleSaveManager)
	r.PUT("/api/managers/:id", owner, h.HandleSaveManager)
	r.GET("/api/managers", owner, h.HandleListManagers)

	r.POST("/api/drivers", manage, h.HandleSaveDriver)
	r.PUT("/api/drivers/:id", manage, h.HandleSaveDriver)
	r.GET("/api/drivers", manage, h.HandleListDrivers)

	r.POST("/api/vehicles", manage, h.HandleSaveVehicle)
	r.PUT("/api/vehicles/:id", manage, h.HandleSaveVehicle)
	r.GET("/api/vehicles", manage, h.HandleListVehicles)

	r.POST("/api/vehicle-data/filter", manage, h.HandleFilterVehicleData)
	r.POST("/api/vehicle-data", manage, h.HandleSaveVehicleData)
	r.DELETE("/api/vehicle-data/:id/photo", manage, h.HandleRemoveVehicleDataPhoto)
	r.DELETE("/api/vehicle-data/:id", manage, h.HandleDeleteVehicleData)

	r.POST("/api/expenses/filter", manage, h.HandleFilterExpenses)
	r.POST("/api/expenses", manage, h.HandleSaveExpense)

	r.POST("/api/categories", manage, h.HandleSaveCategory)
	r.GET("/api/categories", manage, h.HandleListCategories)

	r.POST("/api/shift-logs/filter", manage, h.HandleFilterShiftLogs)
	r.PUT("/api/shift-logs", manage, h.HandleUpdateShiftLog)

	r.POST("/api/logs/filter", manage, h.HandleFilterAuditLogs)

	r.GET("/api/panel/vehicles", driver, h.HandlePanelVehicles)
	r.GET("/api/panel/vehicles/:id/last-km", driver, h.HandlePanelLastKm)
	r.GET("/api/panel/previous-km", driver, h.HandlePanelPreviousKm)
	r.POST("/api/panel/vehicle-info", driver, h.HandlePanelVehicleInfo)
	r.POST("/api/shifts", driver, h.HandlePanelShiftToggle)
	r.POST("/api/shifts/photos", driver, h.HandlePanelShiftPhotos)
	r.POST("/api/expenses/quick", driver, h.HandlePanelQuickExpense)

	// Uploaded photos are served read-only under the blob root.
	r.Static("/files", blobs.Root())

	addr := fmt.Sprintf(":%d", cfg.Port)
	zlog.Info("Server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zlog.Fatal("Server exited", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
