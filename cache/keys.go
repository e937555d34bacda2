package cache

import "time"

const (
	// Cached public product listing: products:all -> JSON array
	KeyProducts = "products:all"

	// Single product cache: products:{product_id}
	KeyProduct = "products:%s"

	// Per-user cart cache: carts:{user_id}
	KeyUserCart = "carts:%s"

	// Invalidation pattern covering listing + single-product keys.
	PatternProducts = "products:*"

	// Rate limit window counter: ratelimit:{policy}:{caller}
	KeyRateLimit = "ratelimit:%s:%s"
)

var (
	TTLProducts = 5 * time.Minute
	TTLCart     = 2 * time.Minute
)
