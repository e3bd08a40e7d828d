package utils

// Keys the auth middlewares store in the gin context.
const (
	CtxUserID       = "user_id"
	CtxRestaurantID = "restaurant_id"
	CtxRole         = "role"
	CtxToken        = "token"
	CtxTokenExpiry  = "token_expiry"
)
