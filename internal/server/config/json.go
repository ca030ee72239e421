package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/brightclass/authcore/internal/flagx"
	"github.com/brightclass/authcore/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. Duration
// fields use timex.Duration so both "1h" strings and integer nanoseconds
// parse. After unmarshalling, its fields are copied into the runtime
// Config.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	Issuer                       string         `json:"issuer"`
	Audience                     string         `json:"audience"`
	Algorithm                    string         `json:"algorithm"`
	PrivateKeyPath               string         `json:"private_key_path"`
	PublicKeyPath                string         `json:"public_key_path"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	Leeway                       timex.Duration `json:"leeway"`
	RevocationBackend            string         `json:"revocation_backend"`
	RedisAddr                    string         `json:"redis_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RevokeFamilyOnReuse          bool           `json:"revoke_family_on_reuse"`
}

// parseJson loads configuration values from the JSON file named by the
// -c or -config flags into the provided Config. When neither flag is set,
// nothing is loaded. An unreadable or malformed file panics: a deployment
// that points at a broken config file should not come up.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrGRPC = c.EndpointAddrGRPC
	config.Issuer = c.Issuer
	config.Audience = c.Audience
	config.Algorithm = c.Algorithm
	config.PrivateKeyPath = c.PrivateKeyPath
	config.PublicKeyPath = c.PublicKeyPath
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.Leeway = time.Duration(c.Leeway.Duration)
	config.RevocationBackend = c.RevocationBackend
	config.RedisAddr = c.RedisAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.RevokeFamilyOnReuse = c.RevokeFamilyOnReuse
}
