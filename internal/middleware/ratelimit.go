package middleware

import (
	"net/http"

	"github.com/lifeos/lifeos-api/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const defaultRatelimitRate = "5-M"

// RateLimit returns middleware backed by ulule/limiter with a Redis store.
// AI routes call paid upstream APIs, so they are throttled per client IP.
// When redisClient is nil (postgres-only deployments) an in-memory store
// is used instead.
func RateLimit(redisClient *redis.Client, rateStr string) (func(http.Handler) http.Handler, error) {
	if rateStr == "" {
		rateStr = defaultRatelimitRate
	}
	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStore(redisClient)
		if err != nil {
			return nil, err
		}
	} else {
		store = memorystore.NewStore()
	}

	instance := limiter.New(store, rate)
	keyGetter := func(r *http.Request) string {
		return request.ClientIP(r)
	}
	mw := stdlibmw.NewMiddleware(instance, stdlibmw.WithKeyGetter(keyGetter))
	return mw.Handler, nil
}
