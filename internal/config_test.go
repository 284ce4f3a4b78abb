package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)

	// Given only the required variables
	environ := env.EnvSet{
		"BADGER_FILEPATH": "/tmp/inbox",
		"AUTH_SECRET":     "a_test_secret_that_is_long_enough_1234",
	}

	// When the configuration is read
	var config Config
	err := env.Unmarshal(environ, &config)

	// Then the defaults apply
	req.NoError(err)
	req.Equal("0.0.0.0:50051", config.Address())
	req.Equal(20, config.DefaultPageSize)
	req.Equal(200*time.Millisecond, config.SinkTimeout)
	req.Equal(24*time.Hour, config.AuthTokenDuration)
	req.Empty(config.CensoredDir)
}

func TestConfig_MissingSecret(t *testing.T) {
	req := require.New(t)

	var config Config
	err := env.Unmarshal(env.EnvSet{"BADGER_FILEPATH": "/tmp/inbox"}, &config)

	req.Error(err)
}

func TestCharacterRune(t *testing.T) {
	req := require.New(t)

	r, err := CharacterRune("#")
	req.NoError(err)
	req.Equal('#', r)

	_, err = CharacterRune("**")
	req.Error(err)
	_, err = CharacterRune("")
	req.Error(err)
}
