// Package main book rental API.
//
// @title           Book Rental Marketplace API
// @version         1.0
// @description     peer-to-peer book rentals (books, rentals, reviews, messages, users).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/eliff53/kitapkiralama/app/echoServer"
	authctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/auth"
	bookctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/book"
	catctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/category"
	msgctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/message"
	rentalctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/rental"
	reviewctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/review"
	uploadctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/upload"
	userctrl "github.com/eliff53/kitapkiralama/app/echoServer/controller/user"
	"github.com/eliff53/kitapkiralama/app/echoServer/validation"
	"github.com/eliff53/kitapkiralama/config"
	bookrepo "github.com/eliff53/kitapkiralama/repository/book"
	catrepo "github.com/eliff53/kitapkiralama/repository/category"
	msgrepo "github.com/eliff53/kitapkiralama/repository/message"
	rentalrepo "github.com/eliff53/kitapkiralama/repository/rental"
	reviewrepo "github.com/eliff53/kitapkiralama/repository/review"
	userrepo "github.com/eliff53/kitapkiralama/repository/user"
	authsvc "github.com/eliff53/kitapkiralama/service/auth"
	booksvc "github.com/eliff53/kitapkiralama/service/book"
	catsvc "github.com/eliff53/kitapkiralama/service/category"
	msgsvc "github.com/eliff53/kitapkiralama/service/message"
	rentalsvc "github.com/eliff53/kitapkiralama/service/rental"
	reviewsvc "github.com/eliff53/kitapkiralama/service/review"
	uploadsvc "github.com/eliff53/kitapkiralama/service/upload"
	usersvc "github.com/eliff53/kitapkiralama/service/user"
	"github.com/eliff53/kitapkiralama/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	cr := catrepo.New(db)
	rr := rentalrepo.New(db)
	rvr := reviewrepo.New(db)
	mr := msgrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br, cr)
	cs := catsvc.New(cr)
	rs := rentalsvc.New(db, rr)
	rvs := reviewsvc.New(rvr)
	ms := msgsvc.New(mr)
	us := usersvc.New(ur)
	ups := uploadsvc.New(cfg.UploadDir)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Rentals: rs, V: v, Log: log}
	catC := &catctrl.Controller{Svc: cs, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: rvs, V: v, Log: log}
	msgC := &msgctrl.Controller{Svc: ms, V: v, Log: log}
	userC := &userctrl.Controller{Svc: us, V: v, Log: log}
	uploadC := &uploadctrl.Controller{Svc: ups, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	echoServer.Register(e, echoServer.C{
		Auth:     authC,
		Book:     bookC,
		Category: catC,
		Rental:   rentalC,
		Review:   reviewC,
		Message:  msgC,
		User:     userC,
		Upload:   uploadC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
