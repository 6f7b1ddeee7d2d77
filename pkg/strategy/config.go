package strategy

import (
	"time"

	"github.com/spf13/viper"
)

const defaultPollDelaySeconds = 30

// DefaultDelay is the inter-poll delay used whenever the server does not
// suggest one, and at strategy construction. Configurable through
// poll.default_delay_seconds.
func DefaultDelay() time.Duration {
	if viper.IsSet("poll.default_delay_seconds") {
		return time.Duration(viper.GetInt("poll.default_delay_seconds")) * time.Second
	}
	return defaultPollDelaySeconds * time.Second
}
