package routes

import (
	"net/http"

	"labhive/admin"
	"labhive/auth"
	"labhive/catalog"
	"labhive/collectors"
	"labhive/dispatch"
	"labhive/livewire"
	"labhive/middleware"
	"labhive/push"
	"labhive/ratelim"
	"labhive/requests"
	"labhive/users"

	"github.com/julienschmidt/httprouter"
)

// RoutesWrapper mounts every API group on the router.
func RoutesWrapper(router *httprouter.Router, rl *ratelim.RateLimiter, engine *dispatch.Engine, gw *push.Gateway) {
	AddStaticRoutes(router)
	AddAuthRoutes(router, rl, gw)
	AddUserRoutes(router, rl)
	AddCollectorRoutes(router, rl)
	AddCatalogRoutes(router, rl)
	AddRequestRoutes(router, rl, engine, gw)
	AddAdminRoutes(router, rl, gw)
	AddLivewireRoutes(router)
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/*filepath", http.Dir("uploads"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, gw *push.Gateway) {
	router.POST("/api/auth/user/signup", rl.Limit(auth.SignupUser(gw)))
	router.POST("/api/auth/user/verify-otp", rl.Limit(auth.VerifyOTP))
	router.POST("/api/auth/collector/signup", rl.Limit(auth.SignupCollector))
	router.POST("/api/auth/collector/login", rl.Limit(auth.LoginCollector))
	router.POST("/api/auth/admin/login", rl.Limit(auth.LoginAdmin))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddUserRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/users/:userId", middleware.Authenticate(users.GetUser))
	router.PUT("/api/users/:userId", middleware.Authenticate(users.UpdateUser))
	router.DELETE("/api/users/:userId", middleware.Authenticate(users.DeleteUser))
	router.PATCH("/api/users/:userId/notifications", middleware.Authenticate(users.UpdateNotificationStatus))
	router.POST("/api/users/:userId/profile-image", rl.Limit(middleware.Authenticate(users.UploadProfileImage)))
}

func AddCollectorRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/collectors/:collectorId", middleware.Authenticate(collectors.GetCollector))
	router.PUT("/api/collectors/:collectorId", middleware.Authenticate(collectors.UpdateCollector))
	router.DELETE("/api/collectors/:collectorId", middleware.Authenticate(collectors.DeleteCollector))
	router.PATCH("/api/collectors/:collectorId/location", middleware.Authenticate(collectors.UpdateLocation))
	router.PATCH("/api/collectors/:collectorId/online", middleware.Authenticate(collectors.UpdateOnlineStatus))
	router.POST("/api/collectors/:collectorId/profile-image", rl.Limit(middleware.Authenticate(collectors.UploadProfileImage)))
	router.POST("/api/collectors/:collectorId/certificates", rl.Limit(middleware.Authenticate(collectors.UploadCertificates)))
	router.GET("/api/collectors/:collectorId/requests/counts", middleware.Authenticate(collectors.GetRequestCounts))
	router.GET("/api/collectors/:collectorId/requests/recent", middleware.Authenticate(collectors.GetRecentRequests))
}

func AddCatalogRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.GET("/api/tests", catalog.ListTests)
	router.POST("/api/tests", rl.Limit(middleware.RequireRole("admin", catalog.CreateTest)))
	router.PUT("/api/tests/:testId", middleware.RequireRole("admin", catalog.UpdateTest))
	router.DELETE("/api/tests/:testId", middleware.RequireRole("admin", catalog.DeleteTest))
}

func AddRequestRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, engine *dispatch.Engine, gw *push.Gateway) {
	router.POST("/api/requests", rl.Limit(middleware.Authenticate(requests.CreateRequest(engine))))
	router.PATCH("/api/requests/:requestId/status", middleware.Authenticate(requests.UpdateRequestStatus(gw)))
	router.GET("/api/requests/:requestId/status", middleware.Authenticate(requests.CheckRequestStatus))
	router.PATCH("/api/requests/:requestId/payment-method", middleware.Authenticate(requests.UpdatePaymentMethod))
	router.DELETE("/api/requests/:requestId", middleware.Authenticate(requests.DeleteRequest))
	router.GET("/api/requests/:requestId/qr", middleware.Authenticate(requests.RequestQR))
	router.GET("/api/requests/:requestId/confirmation.pdf", middleware.Authenticate(requests.ConfirmationPDF))
}

func AddAdminRoutes(router *httprouter.Router, rl *ratelim.RateLimiter, gw *push.Gateway) {
	broadcaster := &push.Broadcaster{Gateway: gw}

	router.GET("/api/admin/users", middleware.RequireRole("admin", admin.ListUsers))
	router.GET("/api/admin/collectors", middleware.RequireRole("admin", admin.ListCollectors))
	router.PATCH("/api/admin/collectors/:collectorId/verify", middleware.RequireRole("admin", admin.VerifyCollector(gw)))
	router.GET("/api/admin/requests", middleware.RequireRole("admin", requests.GetAllRequests))
	router.GET("/api/admin/requests/pending", middleware.RequireRole("admin", requests.FindPendingRequests))
	router.GET("/api/admin/requests/accepted", middleware.RequireRole("admin", requests.FindAcceptedRequests))
	router.GET("/api/admin/requests/rejected", middleware.RequireRole("admin", requests.FindRejectedRequests))
	router.POST("/api/admin/notifications", rl.Limit(middleware.RequireRole("admin", admin.BroadcastNotification(broadcaster))))
}

func AddLivewireRoutes(router *httprouter.Router) {
	router.GET("/ws/requests/:requestId", livewire.HandleWS)
}
