package config

import (
	"flag"
	"os"
	"time"

	"github.com/brightclass/authcore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-i string   token issuer
//	-u string   token audience
//	-g string   signing algorithm ("RS256" or "HS256")
//	-k string   private key PEM path (issuer-side only)
//	-p string   public key PEM path
//	-s string   HS256 shared secret (non-production)
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-w int      verification leeway, seconds
//	-b string   revocation backend ("memory", "redis", "postgres")
//	-e string   redis address
//	-d string   PostgreSQL DSN
//	-f bool     revoke the whole family on refresh-token reuse
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted afterwards.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-u", "-g", "-k", "-p", "-s", "-t", "-r", "-w", "-b", "-e", "-d", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")
	fs.StringVar(&config.Audience, "u", config.Audience, "token audience")
	fs.StringVar(&config.Algorithm, "g", config.Algorithm, "signing algorithm (RS256|HS256)")
	fs.StringVar(&config.PrivateKeyPath, "k", config.PrivateKeyPath, "private key PEM path")
	fs.StringVar(&config.PublicKeyPath, "p", config.PublicKeyPath, "public key PEM path")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "HS256 secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")
	leewaySeconds := fs.Int("w", int(config.Leeway.Seconds()), "verification leeway (in seconds)")

	fs.StringVar(&config.RevocationBackend, "b", config.RevocationBackend, "revocation backend (memory|redis|postgres)")
	fs.StringVar(&config.RedisAddr, "e", config.RedisAddr, "redis address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.BoolVar(&config.RevokeFamilyOnReuse, "f", config.RevokeFamilyOnReuse, "revoke whole family on refresh token reuse")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	config.Leeway = time.Duration(*leewaySeconds) * time.Second
}
