// Package auth provides token providers for authenticating remote API
// calls: a static personal-access-token provider and a GitHub-App JWT
// provider that signs short-lived RS256 app tokens.
package auth
