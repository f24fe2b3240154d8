package main

import (
	"log"
	"os"

	"field-console-api/config"
	"field-console-api/internal/audit"
	"field-console-api/internal/middlewares"
	"field-console-api/internal/ownertype"
	"field-console-api/internal/personal"
	"field-console-api/internal/report"
	"field-console-api/internal/resolve"
	"field-console-api/internal/template"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	dsn := "host=" + cfg.DBHost +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" port=" + cfg.DBPort +
		" sslmode=disable"

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to init logger:", err)
	}
	defer logger.Sync()

	r := gin.New()
	r.Use(middlewares.RequestLogger(logger))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	auditService := &audit.AuditService{DB: db}
	audit.RegisterRoutes(r, auditService)

	ownerTypeService := &ownertype.OwnerTypeService{DB: db}
	ownertype.RegisterRoutes(r, ownerTypeService)

	templateService := &template.TemplateFieldService{DB: db, Types: ownerTypeService}
	template.RegisterRoutes(r, templateService, auditService)

	resolveService := &resolve.ResolveService{DB: db}
	resolve.RegisterRoutes(r, resolveService)

	personalService := &personal.PersonalFieldService{
		DB:       db,
		Resolver: resolveService,
		Bucket:   cfg.AttachmentBucket,
	}
	personal.RegisterRoutes(r, personalService, auditService)

	reportService := &report.ReportService{DB: db, Resolver: resolveService}
	report.RegisterRoutes(r, reportService)

	// Cloud Run expects plain HTTP, on $PORT, bind to 0.0.0.0
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting server on 0.0.0.0:%s ...", port)
	log.Fatal(r.Run("0.0.0.0:" + port))
}
