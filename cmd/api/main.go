package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/payment"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID string, role model.Role, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無ければ環境変数だけで動く
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//logger
	var logger *zap.Logger
	if cfg.GoEnv == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		sugar.Fatalw("db connect failed", "error", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.CompanyDetails{},
		&model.AuditLog{},
	); err != nil {
		sugar.Fatalw("db migrate failed", "error", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	settingsRepo := infraRepo.NewCompanyDetailsGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := usecase.NewBcryptPasswordHasher(12)
	verifier := usecase.NewBcryptPasswordVerifier()

	//JWT issuer（refreshは無いのでアクセストークンは長め）
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 24 * time.Hour,
	}

	//ゲートウェイは設定を差し替えられるよう呼び出しごとに組み立てる
	var gatewayFactory payment.GatewayFactory = payment.NewRazorpayGateway

	//Usecase生成
	authUC := usecase.NewAuthUsecase(userRepo, hasher, verifier, issuer, idGen, clock, usecase.SuperUser{
		Email:    cfg.SuperUserEmail,
		Password: cfg.SuperUserPassword,
	})
	productUC := usecase.NewProductUsecase(productRepo, auditRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, orderItemRepo, settingsRepo, gatewayFactory, sugar)
	workflowUC := usecase.NewOrderWorkflowUsecase(orderRepo, settingsRepo, gatewayFactory, auditRepo, sugar)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, orderItemRepo)
	paymentUC := usecase.NewPaymentUsecase(settingsRepo, gatewayFactory, sugar)
	settingsUC := usecase.NewSettingsUsecase(settingsRepo, auditRepo)
	dashboardUC := usecase.NewDashboardUsecase(orderRepo, productRepo)
	auditLogUC := usecase.NewAuditLogUsecase(auditRepo)

	//Handler生成とルーティング
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	handler.NewAuthHandler(authUC).RegisterRoutes(e)
	handler.NewProductHandler(productUC).RegisterRoutes(e)
	handler.NewAdminProductHandler(productUC).RegisterRoutes(e, cfg)
	handler.NewOrderHandler(orderUC, workflowUC).RegisterRoutes(e, cfg)
	handler.NewAdminOrderHandler(adminOrderUC, workflowUC).RegisterRoutes(e, cfg)
	handler.NewPaymentHandler(paymentUC).RegisterRoutes(e, cfg)
	handler.NewSettingsHandler(settingsUC).RegisterRoutes(e, cfg)
	handler.NewDashboardHandler(dashboardUC).RegisterRoutes(e, cfg)
	handler.NewAuditLogHandler(auditLogUC).RegisterRoutes(e, cfg)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	sugar.Infow("server starting", "addr", addr)
	if err := e.Start(addr); err != nil {
		sugar.Fatalw("server stopped", "error", err)
	}
}
