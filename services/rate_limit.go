package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/questforge/progression_api/dto"
	"github.com/questforge/progression_api/shared"
)

// RateLimitService throttles the write endpoints. Counters live in
// Redis as fixed windows, so limits hold across restarts and replicas.
type RateLimitService struct {
	appContext.DefaultService

	configs map[string]*RateLimitConfig
	mutex   sync.RWMutex

	redisSvc *RedisService
}

type RateLimitConfig struct {
	EndpointType string
	MaxRequests  int
	WindowSize   time.Duration
	BlockTime    time.Duration
}

const RATE_LIMIT_SVC = "rate_limit_svc"

func (svc *RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *appContext.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitService) initDefaultConfigs() {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		// General API calls per IP
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
		},

		// Login is cheap to call and only the first call per day matters
		"login": {
			EndpointType: "login",
			MaxRequests:  60,
			WindowSize:   10 * time.Minute,
			BlockTime:    30 * time.Minute,
		},

		// Level submissions per player
		"level_result": {
			EndpointType: "level_result",
			MaxRequests:  120,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
		},
	}
}

// IsAllowed checks and counts one request for the identifier within the
// endpoint type's window. Exceeding the window blocks the identifier
// for the configured block time.
func (svc *RateLimitService) IsAllowed(ctx context.Context, identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists {
		return true, &dto.RateLimitInfo{Allowed: true, Remaining: -1}, nil
	}

	client := svc.redisSvc.GetClient()
	now := time.Now().UTC()

	blockKey := fmt.Sprintf("ratelimit:block:%s:%s", endpointType, identifier)
	blockTTL, err := client.TTL(ctx, blockKey).Result()
	if err != nil {
		return false, nil, err
	}
	if blockTTL > 0 {
		blockedUntil := now.Add(blockTTL)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	countKey := fmt.Sprintf("ratelimit:count:%s:%s", endpointType, identifier)
	count, err := client.Incr(ctx, countKey).Result()
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		if err := client.Expire(ctx, countKey, config.WindowSize).Err(); err != nil {
			return false, nil, err
		}
	}

	if count > int64(config.MaxRequests) {
		if err := client.Set(ctx, blockKey, "1", config.BlockTime).Err(); err != nil {
			return false, nil, err
		}
		blockedUntil := now.Add(config.BlockTime)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	resetTime := now.Add(config.WindowSize)
	if ttl, err := client.TTL(ctx, countKey).Result(); err == nil && ttl > 0 {
		resetTime = now.Add(ttl)
	}

	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

// IPRateLimit is the general limit applied to every request. Redis
// trouble lets the request through rather than taking the API down.
func (svc *RateLimitService) IPRateLimit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := clientIP(c)

		allowed, info, err := svc.IsAllowed(c.Context(), ip, "api_general")
		if err != nil {
			log.Printf("Rate limit check error for IP %s: %v", ip, err)
			return c.Next()
		}

		setRateLimitHeaders(c, info)
		if !allowed {
			return tooManyRequests(c, "Too many requests from this IP address", info)
		}

		return c.Next()
	}
}

// LoginRateLimit throttles login calls per player, falling back to the
// caller's IP when the path has no player id.
func (svc *RateLimitService) LoginRateLimit() fiber.Handler {
	return svc.paramRateLimit("login", "Too many login attempts")
}

// LevelResultRateLimit throttles level submissions per player.
func (svc *RateLimitService) LevelResultRateLimit() fiber.Handler {
	return svc.paramRateLimit("level_result", "Too many level submissions")
}

func (svc *RateLimitService) paramRateLimit(endpointType, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := c.Params("id")
		if identifier == "" {
			identifier = clientIP(c)
		}

		allowed, info, err := svc.IsAllowed(c.Context(), identifier, endpointType)
		if err != nil {
			log.Printf("Rate limit check error for %s/%s: %v", endpointType, identifier, err)
			return c.Next()
		}

		setRateLimitHeaders(c, info)
		if !allowed {
			return tooManyRequests(c, message, info)
		}

		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info.ResetTime != nil {
		c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
	if info.Remaining >= 0 {
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	}
}

func tooManyRequests(c *fiber.Ctx, message string, info *dto.RateLimitInfo) error {
	if info.BlockedUntil != nil {
		c.Set("Retry-After", strconv.FormatInt(info.BlockedUntil.Unix(), 10))
	}
	return shared.ResponseJSON(c, fiber.StatusTooManyRequests, message, info)
}

func clientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	return c.IP()
}
