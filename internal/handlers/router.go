package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"navigator/internal/addresslist"
	"navigator/internal/auth"
	"navigator/internal/logging"
	"navigator/internal/middleware"
	"navigator/internal/store"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Store     store.UserStore
	StoreName string
	Issuer    *auth.TokenIssuer
	// Authenticator resolves tokens for the /users routes. Nil means only
	// local access tokens are accepted.
	Authenticator auth.Authenticator
	Weather       WeatherService
	Directions    DirectionsService
	RateLimiter   *middleware.RateLimiter
	// TrustedProxies are the peers allowed to set X-Forwarded-For. Empty
	// means the client IP is always the connection's remote address.
	TrustedProxies []string
	Now            func() time.Time
	MaxRecent      int
	StoreTimeout   time.Duration
}

func (d *Deps) defaults() {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.MaxRecent <= 0 {
		d.MaxRecent = addresslist.DefaultMaxRecent
	}
	if d.StoreTimeout <= 0 {
		d.StoreTimeout = store.DefaultTimeout
	}
	if d.Authenticator == nil {
		d.Authenticator = auth.Local{Issuer: d.Issuer}
	}
}

// NewRouter builds the gin engine with every route mounted under /api.
func NewRouter(d Deps) *gin.Engine {
	d.defaults()

	useJSONFieldNames()

	r := gin.New()
	if err := r.SetTrustedProxies(d.TrustedProxies); err != nil {
		logging.Warn().Err(err).Strs("trusted_proxies", d.TrustedProxies).Msg("[HTTP] invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Handler())
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := r.Group("/api")
	api.GET("/health", Health(d.Store, d.StoreName))

	api.POST("/auth/signup", Signup(d.Store, d.Issuer, d.Now, d.StoreTimeout))
	api.POST("/auth/login", Login(d.Store, d.Issuer, d.StoreTimeout))
	api.GET("/me", middleware.RequireAuth(auth.Local{Issuer: d.Issuer}), Me(d.Store, d.StoreTimeout))

	favorites := favoritesList()
	recent := recentList(d.MaxRecent)

	users := api.Group("/users")
	users.Use(middleware.RequireAuth(d.Authenticator))
	{
		users.POST("/create", CreateUser(d.Store, d.Now, d.StoreTimeout))
		users.GET("/profile", GetProfile(d.Store, d.StoreTimeout))
		users.DELETE("/profile", DeleteProfile(d.Store, d.StoreTimeout))

		users.GET("/favorites", ListAddresses(favorites, d.Store, d.StoreTimeout))
		users.POST("/favorites", AddAddress(favorites, d.Store, d.Now, d.StoreTimeout))
		users.DELETE("/favorites", RemoveAddress(favorites, d.Store, d.Now, d.StoreTimeout))
		users.DELETE("/favorites/all", ClearAddresses(favorites, d.Store, d.Now, d.StoreTimeout))

		users.GET("/recent", ListAddresses(recent, d.Store, d.StoreTimeout))
		users.POST("/recent", AddAddress(recent, d.Store, d.Now, d.StoreTimeout))
		users.DELETE("/recent", RemoveAddress(recent, d.Store, d.Now, d.StoreTimeout))
		users.DELETE("/recent/all", ClearAddresses(recent, d.Store, d.Now, d.StoreTimeout))

		users.GET("/destinations", ListDestinations(d.Store, d.StoreTimeout))
		users.POST("/destinations", AddDestination(d.Store, d.Now, d.MaxRecent, d.StoreTimeout))
	}

	// The mobile client posts searched places here.
	recents := api.Group("/recents", middleware.RequireAuth(d.Authenticator))
	{
		recents.GET("", ListDestinations(d.Store, d.StoreTimeout))
		recents.POST("", AddDestination(d.Store, d.Now, d.MaxRecent, d.StoreTimeout))
	}

	if d.Weather != nil {
		api.GET("/weather/current", CurrentWeather(d.Weather))
		api.GET("/weather/forecast", ForecastWeather(d.Weather))
	}
	if d.Directions != nil {
		api.POST("/routes/generate", GenerateRoute(d.Directions))
	}

	return r
}
