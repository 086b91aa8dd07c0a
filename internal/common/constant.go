package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on requests.
const AccessTokenHeaderName = "access_token"

// SessionCookieName is the HTTP cookie holding the session token.
const SessionCookieName = "jwt"

// SecurityAnswerCount is the number of security answers every account holds.
const SecurityAnswerCount = 3
