package common

// AuthorizationHeaderName is the gRPC metadata key that carries the bearer
// token on protected calls.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization metadata value.
const BearerPrefix = "Bearer "
