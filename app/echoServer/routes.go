package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/eliff53/kitapkiralama/app/echoServer/controller/auth"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/book"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/category"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/message"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/rental"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/review"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/upload"
	"github.com/eliff53/kitapkiralama/app/echoServer/controller/user"
	"github.com/eliff53/kitapkiralama/app/echoServer/jwtx"
)

type C struct {
	Auth     *auth.Controller
	Book     *book.Controller
	Category *category.Controller
	Rental   *rental.Controller
	Review   *review.Controller
	Message  *message.Controller
	User     *user.Controller
	Upload   *upload.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	// Auth
	authed := e.Group("/v1")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),

		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(extractCaller)

	// Books
	authed.GET("/books", c.Book.List)
	authed.GET("/books/:id", c.Book.Detail)
	authed.POST("/books", c.Book.Create)
	authed.DELETE("/books/:id", c.Book.Delete)
	authed.PUT("/books/week", c.Book.SetBookOfWeek)

	// Categories
	authed.GET("/categories", c.Category.List)
	authed.POST("/categories", c.Category.Create)

	// Rentals
	authed.POST("/rentals", c.Rental.Create)
	authed.GET("/rentals/my", c.Rental.MyRentals)
	authed.DELETE("/rentals/:id", c.Rental.Cancel)

	// Reviews
	authed.GET("/reviews", c.Review.ForBook)
	authed.POST("/reviews", c.Review.Upsert)

	// Messages
	authed.GET("/messages", c.Message.List)
	authed.POST("/messages", c.Message.Send)
	authed.GET("/messages/unread", c.Message.UnreadCount)
	authed.PUT("/messages/read", c.Message.MarkRead)

	// Profile & users
	authed.GET("/profile", c.User.Profile)
	authed.PUT("/profile", c.User.UpdateProfile)
	authed.PUT("/profile/password", c.User.ChangePassword)
	authed.GET("/users", c.User.ListOthers)

	// Uploads
	authed.POST("/uploads", c.Upload.Upload)

	// Admin
	authed.GET("/admin/users", c.User.ListAll)
	authed.DELETE("/admin/users", c.User.Delete)
	authed.PUT("/admin/users/role", c.User.ChangeRole)
	authed.GET("/admin/books/popular", c.Book.Popular)
}

// extractCaller moves the verified claims into plain context keys so
// handlers never touch jwt types.
func extractCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		tokenObj := ctx.Get("user")
		if tokenObj == nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		claims, ok := tokenObj.(jwt.MapClaims)
		if !ok {
			if tok, ok2 := tokenObj.(*jwt.Token); ok2 {
				claims, ok = tok.Claims.(jwt.MapClaims)
			}
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
		}

		sub, ok := claims["sub"].(float64)
		if !ok {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}

		ctx.Set(jwtx.KeyUserID, int64(sub))
		if role, ok := claims["role"].(string); ok {
			ctx.Set(jwtx.KeyRole, role)
		}
		if name, ok := claims["name"].(string); ok {
			ctx.Set(jwtx.KeyUserName, name)
		}
		return next(ctx)
	}
}
